package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"MCMTracker/internal/domain/models"
	"MCMTracker/internal/service/metrics"
	"MCMTracker/internal/service/ratelimit"
	"MCMTracker/internal/usecase"
	xhttp "MCMTracker/pkg/http"
	applogger "MCMTracker/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// HeaderSnapshotCache reports whether the snapshot came from the bucket cache.
const HeaderSnapshotCache = "X-Snapshot-Cache"

// Config holds handler settings.
type Config struct {
	MaxSymbols     int
	StreamInterval time.Duration
}

// Handler serves the snapshot, performance, coach and stream endpoints.
type Handler struct {
	cfg         Config
	log         *applogger.Logger
	snapshots   *usecase.SnapshotAssembler
	performance *usecase.Performance
	coach       *usecase.Coach
	limiter     *ratelimit.Limiter
	basket      *models.Basket
	upgrader    websocket.Upgrader
}

var _ xhttp.Handler = (*Handler)(nil)

func NewHandler(
	cfg Config,
	l *applogger.Logger,
	snapshots *usecase.SnapshotAssembler,
	performance *usecase.Performance,
	coach *usecase.Coach,
	limiter *ratelimit.Limiter,
	basket *models.Basket,
) *Handler {
	if cfg.MaxSymbols <= 0 {
		cfg.MaxSymbols = models.MaxSymbols
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = 30 * time.Second
	}
	if l == nil {
		l = applogger.Nop()
	}
	metrics.Register()
	return &Handler{
		cfg:         cfg,
		log:         l,
		snapshots:   snapshots,
		performance: performance,
		coach:       coach,
		limiter:     limiter,
		basket:      basket,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/snapshot", h.Snapshot)
	g.GET("/snapshot/ws", h.Stream)
	g.GET("/performance", h.Performance)
	g.GET("/coach/latest", h.CoachLatest)
	g.GET("/coach/refresh", h.CoachRefresh)
}

// Snapshot serves GET /api/snapshot?symbols=MSFT,CRM.
func (h *Handler) Snapshot(c echo.Context) error {
	start := time.Now()
	req := &SnapshotRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, "snapshot", err)
	}
	symbols, err := models.ParseSymbols(req.Symbols, h.cfg.MaxSymbols)
	if err != nil {
		return h.fail(c, "snapshot", err)
	}

	res, err := h.snapshots.Assemble(c.Request().Context(), symbols)
	if err != nil {
		return h.fail(c, "snapshot", err)
	}

	c.Response().Header().Set(HeaderSnapshotCache, cacheLabel(res.Cached))
	observe("snapshot", cacheLabel(res.Cached), start)
	return xhttp.JSONBlobResponse(c, http.StatusOK, res.Body)
}

// Performance serves GET /api/performance.
func (h *Handler) Performance(c echo.Context) error {
	start := time.Now()
	req := &BasketRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, "performance", err)
	}
	symbols, err := h.symbolsOrBasket(req.Symbols)
	if err != nil {
		return h.fail(c, "performance", err)
	}

	view, res, err := h.performance.View(c.Request().Context(), symbols)
	if err != nil {
		return h.fail(c, "performance", err)
	}

	c.Response().Header().Set(HeaderSnapshotCache, cacheLabel(res.Cached))
	observe("performance", cacheLabel(res.Cached), start)
	return xhttp.SuccessResponse(c, view)
}

// CoachLatest serves GET /api/coach/latest. The body is null when no
// summary has been produced yet.
func (h *Handler) CoachLatest(c echo.Context) error {
	start := time.Now()
	latest, err := h.coach.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "coach_latest", err)
	}
	observe("coach_latest", "none", start)
	return xhttp.SuccessResponse(c, latest)
}

// CoachRefresh serves GET /api/coach/refresh?symbols=&mins=.
func (h *Handler) CoachRefresh(c echo.Context) error {
	start := time.Now()
	req := &CoachRefreshRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, "coach_refresh", err)
	}
	symbols, err := h.symbolsOrBasket(req.Symbols)
	if err != nil {
		return h.fail(c, "coach_refresh", err)
	}

	res, err := h.coach.Refresh(c.Request().Context(), symbols, time.Duration(req.Mins)*time.Minute)
	if err != nil {
		return h.fail(c, "coach_refresh", err)
	}
	observe("coach_refresh", strconv.FormatBool(res.Fresh), start)
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			return h.fail(c, strings.TrimPrefix(c.Path(), "/api/"), xhttp.TooManyRequestsError("rate limit exceeded"))
		}
		return next(c)
	}
}

func (h *Handler) symbolsOrBasket(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		if syms := h.basket.Symbols(); len(syms) > 0 {
			if len(syms) > h.cfg.MaxSymbols {
				syms = syms[:h.cfg.MaxSymbols]
			}
			return syms, nil
		}
	}
	return models.ParseSymbols(raw, h.cfg.MaxSymbols)
}

func (h *Handler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	metrics.EndpointErrors.WithLabelValues(endpoint, strconv.Itoa(appErr.Status)).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			applogger.String("endpoint", endpoint),
			applogger.Int("status", appErr.Status),
			applogger.Error(err),
		)
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func observe(endpoint, cache string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint, cache).Observe(time.Since(start).Seconds())
}

func cacheLabel(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}
