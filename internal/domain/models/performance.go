package models

// PerformanceRow is one symbol's performance against its previous close
// and its baseline. Percentages are fractions.
type PerformanceRow struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Cohort       string   `json:"cohort"`
	CohortLabel  string   `json:"cohort_label"`
	Baseline     *float64 `json:"baseline"`
	PrevClose    *float64 `json:"prev_close"`
	Last         *float64 `json:"last"`
	TodayUSD     *float64 `json:"today_usd"`
	TodayPct     *float64 `json:"today_pct"`
	CumUSD       *float64 `json:"cum_usd"`
	CumPct       *float64 `json:"cum_pct"`
	RTHConfirmed bool     `json:"rth_confirmed"`
	Tone         string   `json:"tone"`
}

// Breadth counts symbols with a positive return out of those with data.
type Breadth struct {
	Positive int `json:"positive"`
	Total    int `json:"total"`
}

// PerformanceView is the basket-level performance summary.
type PerformanceView struct {
	AsOf           string           `json:"asof"`
	Session        SessionLabel     `json:"session"`
	BasketTodayPct *float64         `json:"basket_today_pct"`
	BasketCumPct   *float64         `json:"basket_cum_pct"`
	BreadthToday   Breadth          `json:"breadth_today"`
	BreadthCum     Breadth          `json:"breadth_cum"`
	Rows           []PerformanceRow `json:"rows"`
}
