// Package twelvedata fetches quotes and intraday candles from the
// TwelveData REST API.
package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	xhttp "MCMTracker/pkg/http"
	xutil "MCMTracker/pkg/util"
)

const (
	quoteFallback  = "quote_error"
	seriesFallback = "timeseries_error"
)

// UpstreamError carries the provider's message for a failed call.
type UpstreamError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string { return e.Message }

// Config holds client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Interval   string
	OutputSize int
	Location   *time.Location
}

// Client implements repository.QuoteProvider over TwelveData.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	metrics drepo.Metrics
}

// New creates a TwelveData client. metrics may be nil.
func New(cfg Config, metrics drepo.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twelvedata.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.Interval == "" {
		cfg.Interval = "5min"
	}
	if cfg.OutputSize <= 0 {
		cfg.OutputSize = 300
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Client{
		cfg:     cfg,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		metrics: metrics,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// Quote fetches the current quote. Last prefers price, then close, then
// last; previous close prefers previous_close, then prev_close.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp quoteResponse
	if err := c.get(ctx, "quote", url.Values{"symbol": {symbol}}, &resp, quoteFallback); err != nil {
		return nil, err
	}

	asOf := string(resp.Datetime)
	if asOf == "" {
		asOf = string(resp.Timestamp)
	}
	return &models.Quote{
		Symbol:     symbol,
		Last:       firstFinite(resp.Price, resp.Close, resp.Last),
		PrevClose:  firstFinite(resp.PreviousClose, resp.PrevClose),
		AsOfMarket: asOf,
	}, nil
}

// TimeSeries fetches the most recent intraday candles.
func (c *Client) TimeSeries(ctx context.Context, symbol string) (*models.Series, error) {
	params := url.Values{
		"symbol":     {symbol},
		"interval":   {c.cfg.Interval},
		"outputsize": {strconv.Itoa(c.cfg.OutputSize)},
	}
	var resp timeSeriesResponse
	if err := c.get(ctx, "time_series", params, &resp, seriesFallback); err != nil {
		return nil, err
	}

	loc := c.cfg.Location
	if resp.Meta.Timezone != "" {
		if l, err := time.LoadLocation(resp.Meta.Timezone); err == nil {
			loc = l
		}
	}

	candles := make([]models.Candle, 0, len(resp.Values))
	for _, v := range resp.Values {
		ts, _ := xutil.ParseTimeIn(v.Datetime, loc)
		candles = append(candles, models.Candle{
			Time:     ts,
			Datetime: v.Datetime,
			Open:     v.Open.Ptr(),
			High:     v.High.Ptr(),
			Low:      v.Low.Ptr(),
			Close:    v.Close.Ptr(),
			Volume:   v.Volume.Ptr(),
		})
	}
	return &models.Series{Symbol: symbol, Interval: c.cfg.Interval, Candles: candles}, nil
}

// get performs one call. Any failure becomes an *UpstreamError whose
// message is the provider's message or fallback.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest interface{}, fallback string) error {
	start := time.Now()
	err := c.fetch(ctx, endpoint, params, dest, fallback)
	if c.metrics != nil {
		c.metrics.RecordUpstream(endpoint, time.Since(start), err)
	}
	return err
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, dest interface{}, fallback string) error {
	params.Set("apikey", c.cfg.APIKey)

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.cfg.BaseURL + "/" + endpoint,
		QueryParams: params,
	}, &body)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return &UpstreamError{Endpoint: endpoint, Status: se.StatusCode, Message: messageOr(se.Body, fallback)}
		}
		return &UpstreamError{Endpoint: endpoint, Message: fallback}
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: fallback}
	}
	if env.Status == "error" {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		return &UpstreamError{Endpoint: endpoint, Status: env.Code, Message: msg}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: fallback}
	}
	return nil
}

func messageOr(body []byte, fallback string) string {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}
