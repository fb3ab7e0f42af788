package signals

import (
	"math"
	"testing"
	"time"

	"MCMTracker/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(v float64) *float64 { return &v }

func candle(at string, high, close float64) models.Candle {
	ts, _ := time.Parse("2006-01-02 15:04", at)
	return models.Candle{Time: ts, Datetime: at, High: p(high), Close: p(close)}
}

func TestComputeHigh_OrderIndependent(t *testing.T) {
	desc := []models.Candle{
		candle("2025-03-14 10:10", 101, 100.5),
		candle("2025-03-14 10:05", 103, 102),
		candle("2025-03-14 10:00", 99, 98),
	}
	asc := []models.Candle{desc[2], desc[1], desc[0]}

	for _, in := range [][]models.Candle{desc, asc} {
		res := ComputeHigh(in)
		require.NotNil(t, res.High)
		assert.Equal(t, 103.0, *res.High)
		require.NotNil(t, res.LastClose)
		assert.Equal(t, 100.5, *res.LastClose)
	}

	// input untouched
	assert.Equal(t, "2025-03-14 10:00", asc[0].Datetime)
}

func TestComputeHigh_SkipsNonFinite(t *testing.T) {
	res := ComputeHigh([]models.Candle{
		{Datetime: "x", High: nil},
		{Datetime: "y", High: p(math.NaN())},
	})
	assert.Nil(t, res.High)
	assert.Nil(t, res.LastClose)

	res = ComputeHigh(nil)
	assert.Nil(t, res.High)
}

func TestPerfHigh(t *testing.T) {
	got := PerfHigh(p(110), p(100))
	require.NotNil(t, got)
	assert.Equal(t, (110.0-100.0)/100.0, *got)

	assert.Nil(t, PerfHigh(p(110), p(0)))
	assert.Nil(t, PerfHigh(p(110), nil))
	assert.Nil(t, PerfHigh(nil, p(100)))
	assert.Nil(t, PerfHigh(p(math.Inf(1)), p(100)))
	assert.Nil(t, PerfHigh(p(110), p(math.NaN())))
}

func TestReversal_Boundaries(t *testing.T) {
	r := Reversal(p(100), p(100.01), p(100))
	assert.True(t, r.Confirmed)
	assert.Equal(t, "Need High ≥ 100.00 AND Last > 100.00", r.Detail)

	assert.False(t, Reversal(p(99.99), p(100.01), p(100)).Confirmed)
	assert.False(t, Reversal(p(100), p(100), p(100)).Confirmed)

	r = Reversal(p(120), p(120), nil)
	assert.False(t, r.Confirmed)
	assert.Equal(t, "Need High ≥ — AND Last > —", r.Detail)
}

func TestReversal_TwoDecimalFormatting(t *testing.T) {
	assert.Equal(t, "Need High ≥ 430.12 AND Last > 430.12", Reversal(nil, nil, p(430.12)).Detail)
	assert.Equal(t, "Need High ≥ 0.01 AND Last > 0.01", Reversal(nil, nil, p(0.005)).Detail)
}

func TestWindows_AreIndependentValues(t *testing.T) {
	candles := []models.Candle{candle("2025-03-14 10:00", 105, 104)}
	rth := RTHWindow(candles, p(104), p(100))
	eth := ETHWindow(candles, p(104), p(100))

	assert.True(t, eth.Available)
	assert.Equal(t, *rth.High, *eth.High)
	assert.True(t, rth.Reversal.Confirmed)
	assert.InDelta(t, 0.05, *rth.PerfHigh, 1e-12)

	*rth.High = 0
	assert.Equal(t, 105.0, *eth.High)
}
