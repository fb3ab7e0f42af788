package twelvedata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return New(Config{APIKey: "k", BaseURL: srv.URL, Location: ny}, nil)
}

func TestQuote_FieldPrecedence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "MSFT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "k", r.URL.Query().Get("apikey"))
		_, _ = w.Write([]byte(`{"symbol":"MSFT","datetime":"2025-03-14","close":"431.50","previous_close":"430.12","prev_close":"1"}`))
	})

	q, err := c.Quote(context.Background(), "MSFT")
	require.NoError(t, err)
	require.NotNil(t, q.Last)
	assert.Equal(t, 431.50, *q.Last)
	require.NotNil(t, q.PrevClose)
	assert.Equal(t, 430.12, *q.PrevClose)
	assert.Equal(t, "2025-03-14", q.AsOfMarket)
}

func TestQuote_PriceWinsAndBadNumbersAreNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price":"432","close":"431","previous_close":"abc","prev_close":"","timestamp":1741982400}`))
	})

	q, err := c.Quote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 432.0, *q.Last)
	assert.Nil(t, q.PrevClose)
	assert.Equal(t, "1741982400", q.AsOfMarket)
}

func TestQuote_ErrorStatusCarriesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":404,"message":"symbol not found"}`))
	})

	_, err := c.Quote(context.Background(), "NOPE")
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "symbol not found", ue.Error())
}

func TestQuote_FallbackMessages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/quote" {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
			return
		}
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Quote(context.Background(), "MSFT")
	assert.EqualError(t, err, "quote_error")

	_, err = c.TimeSeries(context.Background(), "MSFT")
	assert.EqualError(t, err, "timeseries_error")
}

func TestTimeSeries_ParsesCandles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/time_series", r.URL.Path)
		assert.Equal(t, "5min", r.URL.Query().Get("interval"))
		assert.Equal(t, "300", r.URL.Query().Get("outputsize"))
		_, _ = w.Write([]byte(`{
			"meta":{"symbol":"MSFT","interval":"5min","exchange_timezone":"America/New_York"},
			"values":[
				{"datetime":"2025-03-14 15:55:00","open":"430","high":"433.5","low":"429","close":"432","volume":"1000"},
				{"datetime":"2025-03-14 15:50:00","open":"429","high":"431","low":"428","close":"430","volume":"900"}
			],
			"status":"ok"}`))
	})

	s, err := c.TimeSeries(context.Background(), "MSFT")
	require.NoError(t, err)
	require.Len(t, s.Candles, 2)
	assert.Equal(t, 433.5, *s.Candles[0].High)
	assert.Equal(t, time.Date(2025, 3, 14, 19, 55, 0, 0, time.UTC), s.Candles[0].Time.UTC())
	assert.True(t, s.Candles[0].Time.After(s.Candles[1].Time))
}

func TestConfigured(t *testing.T) {
	assert.False(t, New(Config{}, nil).Configured())
	assert.True(t, New(Config{APIKey: "x"}, nil).Configured())
}
