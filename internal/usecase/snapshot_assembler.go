package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	domsvc "MCMTracker/internal/domain/service"
	"MCMTracker/internal/service/signals"
	applogger "MCMTracker/pkg/logger"
)

const snapshotSource = "twelvedata"

// AssemblerConfig holds snapshot assembly settings.
type AssemblerConfig struct {
	RTHCadence    time.Duration
	ETHCadence    time.Duration
	Grace         time.Duration
	SymbolTimeout time.Duration
	Note          string
}

// SnapshotResult is an encoded snapshot plus how it was obtained.
type SnapshotResult struct {
	Body    []byte
	Key     string
	Cached  bool
	Session models.Session
}

// SnapshotAssembler serves snapshots from the bucket cache and builds them
// on a miss.
type SnapshotAssembler struct {
	cfg       AssemblerConfig
	resolver  domsvc.SessionResolver
	provider  drepo.QuoteProvider
	baselines drepo.BaselineStore
	cache     drepo.SnapshotCache
	publisher drepo.SnapshotPublisher
	metrics   drepo.Metrics
	basket    *models.Basket
	log       *applogger.Logger
	now       func() time.Time
}

func NewSnapshotAssembler(
	cfg AssemblerConfig,
	resolver domsvc.SessionResolver,
	provider drepo.QuoteProvider,
	baselines drepo.BaselineStore,
	cache drepo.SnapshotCache,
	publisher drepo.SnapshotPublisher,
	metrics drepo.Metrics,
	basket *models.Basket,
	l *applogger.Logger,
) *SnapshotAssembler {
	if cfg.Grace < 0 {
		cfg.Grace = 0
	}
	if cfg.SymbolTimeout <= 0 {
		cfg.SymbolTimeout = 20 * time.Second
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &SnapshotAssembler{
		cfg:       cfg,
		resolver:  resolver,
		provider:  provider,
		baselines: baselines,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		basket:    basket,
		log:       l,
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (a *SnapshotAssembler) WithClock(now func() time.Time) *SnapshotAssembler {
	a.now = now
	return a
}

// Assemble returns the snapshot for symbols in the current cadence bucket.
// A cached body is returned byte for byte.
func (a *SnapshotAssembler) Assemble(ctx context.Context, symbols []string) (*SnapshotResult, error) {
	if a.provider == nil || !a.provider.Configured() {
		return nil, fmt.Errorf("%w: missing TWELVEDATA_API_KEY", models.ErrConfiguration)
	}
	if a.cache == nil || a.baselines == nil {
		return nil, fmt.Errorf("%w: missing store binding", models.ErrConfiguration)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", models.ErrValidation)
	}

	now := a.now()
	sess := a.resolver.Resolve(now)
	key := SnapshotKey(sess, symbols, now)

	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		a.metrics.RecordError("cache_read")
		return nil, err
	}
	a.metrics.RecordCacheLookup(string(sess.Label), cached != nil)
	if cached != nil {
		return &SnapshotResult{Body: cached, Key: key, Cached: true, Session: sess}, nil
	}

	start := time.Now()
	snap, err := a.build(ctx, sess, symbols, now)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := a.cache.Put(ctx, key, body, sess.Cadence+a.cfg.Grace); err != nil {
		a.metrics.RecordError("cache_write")
		return nil, err
	}
	a.metrics.RecordBuild(string(sess.Label), time.Since(start))
	a.log.Debug("snapshot built",
		applogger.String("key", key),
		applogger.Int("symbols", len(symbols)),
		applogger.Duration("took", time.Since(start)),
	)

	a.publish(ctx, key, sess, symbols, now)
	return &SnapshotResult{Body: body, Key: key, Session: sess}, nil
}

// Snapshot assembles and decodes the snapshot.
func (a *SnapshotAssembler) Snapshot(ctx context.Context, symbols []string) (*models.Snapshot, *SnapshotResult, error) {
	res, err := a.Assemble(ctx, symbols)
	if err != nil {
		return nil, nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(res.Body, &snap); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", res.Key, err)
	}
	return &snap, res, nil
}

type symbolResult struct {
	symbol string
	entry  *models.SymbolSnapshot
	err    error
}

func (a *SnapshotAssembler) build(ctx context.Context, sess models.Session, symbols []string, now time.Time) (*models.Snapshot, error) {
	meta := models.SnapshotMeta{
		AsOfLocal:  now.Local().Format(time.RFC3339),
		AsOfMarket: sess.MarketStamp(),
		Session:    sess.Label,
		CadenceRTH: models.CadenceLabel(a.cfg.RTHCadence),
		CadenceETH: models.CadenceLabel(a.cfg.ETHCadence),
		Note:       a.cfg.Note,
		Source:     snapshotSource,
	}
	snap := models.NewSnapshot(meta, symbols)

	ch := make(chan symbolResult, len(symbols))
	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			entry, err := a.buildSymbol(ctx, sess, sym, meta)
			ch <- symbolResult{symbol: sym, entry: entry, err: err}
		}(sym)
	}
	go func() { wg.Wait(); close(ch) }()

	var firstErr error
	for r := range ch {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		snap.Entries[r.symbol] = r.entry
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return snap, nil
}

// buildSymbol fetches and evaluates one symbol. Upstream failures are
// folded into the entry; only store failures are returned as errors.
func (a *SnapshotAssembler) buildSymbol(ctx context.Context, sess models.Session, sym string, meta models.SnapshotMeta) (*models.SymbolSnapshot, error) {
	fctx, cancel := context.WithTimeout(ctx, a.cfg.SymbolTimeout)
	defer cancel()

	var (
		quote     *models.Quote
		series    *models.Series
		quoteErr  error
		seriesErr error
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quote, quoteErr = a.provider.Quote(fctx, sym)
	}()
	go func() {
		defer wg.Done()
		series, seriesErr = a.provider.TimeSeries(fctx, sym)
	}()
	wg.Wait()

	if quoteErr != nil && seriesErr != nil {
		return &models.SymbolSnapshot{
			Symbol: sym,
			Error:  fmt.Sprintf("%s; %s", quoteErr.Error(), seriesErr.Error()),
		}, nil
	}
	// the symbol budget covers fetch and evaluation
	if fctx.Err() != nil {
		return timedOut(sym, fctx.Err(), quoteErr, seriesErr), nil
	}

	var prevClose, quoteLast *float64
	asOfMarket := meta.AsOfMarket
	if quote != nil {
		prevClose = quote.PrevClose
		quoteLast = quote.Last
		if quote.AsOfMarket != "" {
			asOfMarket = quote.AsOfMarket
		}
	}

	baseline, created, err := a.baselines.GetOrBootstrap(fctx, sym, prevClose, sess.Info.Date)
	if err != nil {
		if fctx.Err() != nil && ctx.Err() == nil {
			return timedOut(sym, fctx.Err(), quoteErr, seriesErr), nil
		}
		return nil, err
	}
	if created {
		a.metrics.RecordBootstrap(sym)
	}

	var candles []models.Candle
	if series != nil {
		candles = series.Candles
	}
	last := quoteLast
	if !models.IsFinite(last) {
		last = signals.ComputeHigh(candles).LastClose
	}

	entry := &models.SymbolSnapshot{
		Symbol:     sym,
		Name:       a.basket.Name(sym),
		Baseline:   baseline,
		Last:       last,
		AsOfMarket: asOfMarket,
		AsOfLocal:  meta.AsOfLocal,
		Meta: models.SymbolMeta{
			PreviousClose:        prevClose,
			BaselineBootstrapped: created,
		},
		RTH: signals.RTHWindow(candles, last, baseline),
		ETH: signals.ETHWindow(candles, last, baseline),
	}
	if quoteErr != nil {
		entry.Meta.QuoteError = quoteErr.Error()
	}
	if seriesErr != nil {
		entry.Meta.SeriesError = seriesErr.Error()
	}
	return entry, nil
}

func timedOut(sym string, deadline error, errs ...error) *models.SymbolSnapshot {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, deadline.Error())
	}
	return &models.SymbolSnapshot{Symbol: sym, Error: strings.Join(msgs, "; ")}
}

func (a *SnapshotAssembler) publish(ctx context.Context, key string, sess models.Session, symbols []string, now time.Time) {
	if a.publisher == nil {
		return
	}
	evt := &models.SnapshotBuilt{
		Key:     key,
		Session: sess.Label,
		Symbols: symbols,
		BuiltAt: now.UnixMilli(),
	}
	if err := a.publisher.PublishSnapshotBuilt(ctx, evt); err != nil {
		a.metrics.RecordError("publish")
		a.log.Warn("publish snapshot event failed",
			applogger.String("key", key),
			applogger.Error(err),
		)
	}
}
