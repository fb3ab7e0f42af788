// Package signals derives highs, performance and reversal confirmation from
// quote and candle data. Every function is pure.
package signals

import (
	"fmt"
	"sort"

	"MCMTracker/internal/domain/models"

	"github.com/shopspring/decimal"
)

const placeholder = "—"

// HighResult is the window high plus the close of the newest candle.
type HighResult struct {
	High      *float64
	LastClose *float64
}

// ComputeHigh returns the maximum finite high across candles in any order.
// LastClose is taken from the newest candle after sorting a copy by time
// descending; candles with a zero time sort last.
func ComputeHigh(candles []models.Candle) HighResult {
	var res HighResult
	for _, c := range candles {
		if !models.IsFinite(c.High) {
			continue
		}
		if res.High == nil || *c.High > *res.High {
			h := *c.High
			res.High = &h
		}
	}

	if len(candles) == 0 {
		return res
	}
	sorted := make([]models.Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Time, sorted[j].Time
		if ti.IsZero() != tj.IsZero() {
			return !ti.IsZero()
		}
		return ti.After(tj)
	})
	if models.IsFinite(sorted[0].Close) {
		lc := *sorted[0].Close
		res.LastClose = &lc
	}
	return res
}

// PerfHigh is (high - baseline) / baseline as a fraction. It is nil unless
// both inputs are finite and baseline is non-zero.
func PerfHigh(high, baseline *float64) *float64 {
	if !models.IsFinite(high) || !models.IsFinite(baseline) || *baseline == 0 {
		return nil
	}
	return models.Finite((*high - *baseline) / *baseline)
}

// Reversal is confirmed when high >= baseline and last > baseline.
func Reversal(high, last, baseline *float64) models.Reversal {
	okHigh := models.IsFinite(high) && models.IsFinite(baseline) && *high >= *baseline
	okLast := models.IsFinite(last) && models.IsFinite(baseline) && *last > *baseline

	need := formatPrice(baseline)
	return models.Reversal{
		Confirmed: okHigh && okLast,
		Detail:    fmt.Sprintf("Need High ≥ %s AND Last > %s", need, need),
	}
}

// RTHWindow evaluates the regular-hours window.
func RTHWindow(candles []models.Candle, last, baseline *float64) models.WindowSignals {
	return window(candles, last, baseline)
}

// ETHWindow evaluates the extended-hours window. Callers currently pass the
// same intraday series as RTHWindow.
func ETHWindow(candles []models.Candle, last, baseline *float64) models.ETHSignals {
	return models.ETHSignals{
		Available:     true,
		WindowSignals: window(candles, last, baseline),
	}
}

func window(candles []models.Candle, last, baseline *float64) models.WindowSignals {
	hr := ComputeHigh(candles)
	return models.WindowSignals{
		High:     hr.High,
		PerfHigh: PerfHigh(hr.High, baseline),
		Reversal: Reversal(hr.High, last, baseline),
	}
}

func formatPrice(p *float64) string {
	if !models.IsFinite(p) {
		return placeholder
	}
	return decimal.NewFromFloat(*p).StringFixed(2)
}
