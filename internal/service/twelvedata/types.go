package twelvedata

import (
	"bytes"
	"encoding/json"

	"MCMTracker/internal/domain/models"
	xutil "MCMTracker/pkg/util"
)

// flexFloat accepts a JSON number, a numeric string, "" or null.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.v = nil
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			f.v = nil
			return nil
		}
	}
	n, ok := xutil.ParseFloat(s)
	if !ok {
		f.v = nil
		return nil
	}
	f.v = models.Finite(n)
	return nil
}

// Ptr returns the parsed value or nil.
func (f flexFloat) Ptr() *float64 { return f.v }

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(b)
	return nil
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type quoteResponse struct {
	errorEnvelope
	Symbol        string     `json:"symbol"`
	Datetime      flexString `json:"datetime"`
	Timestamp     flexString `json:"timestamp"`
	Price         flexFloat  `json:"price"`
	Close         flexFloat  `json:"close"`
	Last          flexFloat  `json:"last"`
	PreviousClose flexFloat  `json:"previous_close"`
	PrevClose     flexFloat  `json:"prev_close"`
}

type candleValue struct {
	Datetime string    `json:"datetime"`
	Open     flexFloat `json:"open"`
	High     flexFloat `json:"high"`
	Low      flexFloat `json:"low"`
	Close    flexFloat `json:"close"`
	Volume   flexFloat `json:"volume"`
}

type seriesMeta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Timezone string `json:"exchange_timezone"`
}

type timeSeriesResponse struct {
	errorEnvelope
	Meta   seriesMeta    `json:"meta"`
	Values []candleValue `json:"values"`
}

func firstFinite(vs ...flexFloat) *float64 {
	for _, v := range vs {
		if p := v.Ptr(); p != nil {
			return p
		}
	}
	return nil
}
