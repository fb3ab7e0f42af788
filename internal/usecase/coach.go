package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	domsvc "MCMTracker/internal/domain/service"
	applogger "MCMTracker/pkg/logger"
)

const (
	coachSystemPrompt = "You are a concise market behavior coach."

	minCoachInterval     = 5 * time.Minute
	maxCoachInterval     = 180 * time.Minute
	defaultCoachInterval = 30 * time.Minute
	defaultCoachLines    = 10
)

var bulletPrefix = regexp.MustCompile(`^[-•]\s*`)

// CoachConfig holds coach settings.
type CoachConfig struct {
	MaxLines int
}

// Coach produces and stores the narrative summary of a snapshot.
type Coach struct {
	cfg        CoachConfig
	snapshots  *SnapshotAssembler
	summarizer domsvc.Summarizer
	store      drepo.CoachStore
	log        *applogger.Logger
	now        func() time.Time
}

func NewCoach(cfg CoachConfig, snapshots *SnapshotAssembler, summarizer domsvc.Summarizer, store drepo.CoachStore, l *applogger.Logger) *Coach {
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = defaultCoachLines
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Coach{
		cfg:        cfg,
		snapshots:  snapshots,
		summarizer: summarizer,
		store:      store,
		log:        l,
		now:        time.Now,
	}
}

// WithClock overrides the time source.
func (c *Coach) WithClock(now func() time.Time) *Coach {
	c.now = now
	return c
}

// Latest returns the stored summary, or nil when none exists.
func (c *Coach) Latest(ctx context.Context) (*models.CoachResult, error) {
	if c.store == nil {
		return nil, fmt.Errorf("%w: missing store binding", models.ErrConfiguration)
	}
	return c.store.Latest(ctx)
}

// ClampInterval bounds a refresh interval to [5m, 180m]. Zero means the
// default of 30m.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return defaultCoachInterval
	case d < minCoachInterval:
		return minCoachInterval
	case d > maxCoachInterval:
		return maxCoachInterval
	}
	return d
}

// Refresh returns the stored summary when the last run is younger than
// minInterval and otherwise regenerates it from a current snapshot.
func (c *Coach) Refresh(ctx context.Context, symbols []string, minInterval time.Duration) (*models.CoachRefresh, error) {
	if c.store == nil {
		return nil, fmt.Errorf("%w: missing store binding", models.ErrConfiguration)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: missing symbols", models.ErrValidation)
	}
	if c.summarizer == nil || !c.summarizer.Configured() {
		return nil, fmt.Errorf("%w: missing OpenAI API key (OPENAI_API_KEY)", models.ErrConfiguration)
	}
	minInterval = ClampInterval(minInterval)

	lastRun, err := c.store.LastRun(ctx)
	if err != nil {
		return nil, err
	}
	cached, err := c.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	now := c.now()
	if cached != nil && !lastRun.IsZero() && now.Sub(lastRun) < minInterval {
		return &models.CoachRefresh{OK: true, Fresh: true, Coach: cached}, nil
	}

	snap, _, err := c.snapshots.Snapshot(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("coach snapshot: %w", err)
	}

	text, err := c.summarizer.Summarize(ctx, coachSystemPrompt, BuildCoachPrompt(snap, symbols))
	if err != nil {
		return nil, fmt.Errorf("coach summarize: %w", err)
	}

	result := &models.CoachResult{
		AsOfLocal:  now.Local().Format(time.RFC3339),
		AsOfMarket: snap.Meta.AsOfMarket,
		Session:    snap.Meta.Session,
		Symbols:    symbols,
		Model:      c.summarizer.Model(),
		Text:       CoachLines(text, c.cfg.MaxLines),
	}
	if err := c.store.Save(ctx, result, now); err != nil {
		return nil, err
	}
	c.log.Info("coach refreshed",
		applogger.Strings("symbols", symbols),
		applogger.Int("lines", len(result.Text)),
	)
	return &models.CoachRefresh{OK: true, Fresh: false, Stored: true, Coach: result}, nil
}

// CoachLines splits summarizer output into at most max lines with bullet
// markers removed.
func CoachLines(text string, max int) []string {
	out := make([]string, 0, max)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == max {
			break
		}
	}
	return out
}

// BuildCoachPrompt renders the snapshot rows for the summarizer.
func BuildCoachPrompt(snap *models.Snapshot, symbols []string) string {
	rows := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		e := snap.Entry(sym)
		if e == nil || e.Failed() {
			rows = append(rows, sym+": (no data)")
			continue
		}
		rows = append(rows, strings.Join([]string{
			sym + ":",
			"baseline=" + promptNum(e.Baseline),
			"last=" + promptNum(e.Last),
			fmt.Sprintf("RTH(high=%s, perfHigh=%s, confirmed=%t)",
				promptNum(e.RTH.High), promptNum(e.RTH.PerfHigh), e.RTH.Reversal.Confirmed),
			fmt.Sprintf("ETH(high=%s, perfHigh=%s, confirmed=%t)",
				promptNum(e.ETH.High), promptNum(e.ETH.PerfHigh), e.ETH.Reversal.Confirmed),
		}, " "))
	}

	asOf := firstNonEmpty(snap.Meta.AsOfLocal, snap.Meta.AsOfMarket, "—")
	session := firstNonEmpty(string(snap.Meta.Session), "—")

	var b strings.Builder
	b.WriteString("You are the MCM (Making Cash Money) Coach. This is an experimental market behavior tracker.\n")
	b.WriteString("Goal: teach retail users how panic selloffs and rebounds tend to unfold; classify whether we are in (1) Panic Mean Reversion, (2) Stabilization/Range, (3) Economic Repricing risk-off.\n\n")
	b.WriteString("Write 5–8 concise bullet points:\n")
	b.WriteString("- 2 bullets on what the data shows now (leaders vs laggards, breadth, confirmations)\n")
	b.WriteString("- 1 bullet on what would confirm continuation\n")
	b.WriteString("- 1 bullet on what would invalidate / signal repricing risk\n")
	b.WriteString("- 1 bullet on what to watch next 30–60 minutes\n\n")
	b.WriteString("Use plain language. Do not give financial advice. Do not tell users to buy/sell.\n\n")
	fmt.Fprintf(&b, "As-of: %s  Session: %s\n\n", asOf, session)
	b.WriteString("Data:\n")
	b.WriteString(strings.Join(rows, "\n"))
	return b.String()
}

func promptNum(p *float64) string {
	if !models.IsFinite(p) {
		return "—"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
