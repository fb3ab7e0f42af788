package models

import (
	"math"
	"time"
)

// Quote is the normalized current quote for a symbol.
type Quote struct {
	Symbol     string
	Last       *float64
	PrevClose  *float64
	AsOfMarket string
}

// Candle is one intraday bar. Time is zero when the upstream datetime
// could not be parsed.
type Candle struct {
	Time     time.Time
	Datetime string
	Open     *float64
	High     *float64
	Low      *float64
	Close    *float64
	Volume   *float64
}

// Series is a window of candles in upstream order.
type Series struct {
	Symbol   string
	Interval string
	Candles  []Candle
}

// Finite returns a pointer to v, or nil when v is NaN or infinite.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// IsFinite reports whether p holds a finite number.
func IsFinite(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}
