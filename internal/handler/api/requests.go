package api

// SnapshotRequest is the query of GET /api/snapshot. Long lists are
// truncated by ParseSymbols rather than rejected.
type SnapshotRequest struct {
	Symbols string `query:"symbols" validate:"required"`
}

// BasketRequest is a query whose symbols default to the configured basket.
type BasketRequest struct {
	Symbols string `query:"symbols"`
}

// CoachRefreshRequest is the query of GET /api/coach/refresh. Mins is the
// minimum age in minutes before the summary is regenerated.
type CoachRefreshRequest struct {
	Symbols string `query:"symbols"`
	Mins    int    `query:"mins" default:"30" validate:"gte=0,lte=1440"`
}
