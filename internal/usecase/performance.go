package usecase

import (
	"context"

	"MCMTracker/internal/domain/models"
)

var cohortLabels = map[string]string{
	"liquidity_leader": "Liquidity Leader",
	"reflex_bounce":    "Reflex Bounce",
	"macro_sensitive":  "Macro Sensitive",
}

// CohortLabel returns the display label for a cohort.
func CohortLabel(cohort string) string {
	if l, ok := cohortLabels[cohort]; ok {
		return l
	}
	if cohort == "" {
		return "—"
	}
	return cohort
}

// ComputePerformance derives per-symbol and basket performance from a
// snapshot. Error entries and symbols missing from the snapshot are
// skipped.
func ComputePerformance(snap *models.Snapshot, symbols []string, basket *models.Basket) *models.PerformanceView {
	view := &models.PerformanceView{
		AsOf:    firstNonEmpty(snap.Meta.AsOfLocal, snap.Meta.AsOfMarket, "—"),
		Session: snap.Meta.Session,
		Rows:    make([]models.PerformanceRow, 0, len(symbols)),
	}

	var todaySum, cumSum float64
	for _, sym := range symbols {
		e := snap.Entry(sym)
		if e == nil || e.Failed() {
			continue
		}

		member, _ := basket.Member(sym)
		row := models.PerformanceRow{
			Symbol:       sym,
			Name:         basket.Name(sym),
			Cohort:       member.Cohort,
			CohortLabel:  CohortLabel(member.Cohort),
			Baseline:     e.Baseline,
			PrevClose:    e.Meta.PreviousClose,
			Last:         e.Last,
			RTHConfirmed: e.RTH.Reversal.Confirmed,
		}
		row.TodayUSD, row.TodayPct = change(e.Last, e.Meta.PreviousClose)
		row.CumUSD, row.CumPct = change(e.Last, e.Baseline)
		row.Tone = tone(row.CumPct)

		if row.TodayPct != nil {
			todaySum += *row.TodayPct
			view.BreadthToday.Total++
			if *row.TodayPct > 0 {
				view.BreadthToday.Positive++
			}
		}
		if row.CumPct != nil {
			cumSum += *row.CumPct
			view.BreadthCum.Total++
			if *row.CumPct > 0 {
				view.BreadthCum.Positive++
			}
		}
		view.Rows = append(view.Rows, row)
	}

	if view.BreadthToday.Total > 0 {
		view.BasketTodayPct = models.Finite(todaySum / float64(view.BreadthToday.Total))
	}
	if view.BreadthCum.Total > 0 {
		view.BasketCumPct = models.Finite(cumSum / float64(view.BreadthCum.Total))
	}
	return view
}

// change returns last-ref and (last-ref)/ref. The fraction is nil when ref
// is zero.
func change(last, ref *float64) (usd, pct *float64) {
	if !models.IsFinite(last) || !models.IsFinite(ref) {
		return nil, nil
	}
	usd = models.Finite(*last - *ref)
	if *ref != 0 && usd != nil {
		pct = models.Finite(*usd / *ref)
	}
	return usd, pct
}

func tone(pct *float64) string {
	switch {
	case pct == nil || *pct == 0:
		return "flat"
	case *pct > 0:
		return "pos"
	default:
		return "neg"
	}
}

// Performance serves the basket performance view.
type Performance struct {
	snapshots *SnapshotAssembler
	basket    *models.Basket
}

func NewPerformance(snapshots *SnapshotAssembler, basket *models.Basket) *Performance {
	return &Performance{snapshots: snapshots, basket: basket}
}

// View assembles the snapshot for symbols and computes performance. An
// empty list means the whole basket.
func (p *Performance) View(ctx context.Context, symbols []string) (*models.PerformanceView, *SnapshotResult, error) {
	if len(symbols) == 0 {
		symbols = p.basket.Symbols()
	}
	snap, res, err := p.snapshots.Snapshot(ctx, symbols)
	if err != nil {
		return nil, nil, err
	}
	return ComputePerformance(snap, symbols, p.basket), res, nil
}
