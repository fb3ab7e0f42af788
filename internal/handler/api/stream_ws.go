package api

import (
	"context"
	"encoding/json"
	"time"

	"MCMTracker/internal/service/metrics"
	xhttp "MCMTracker/pkg/http"
	applogger "MCMTracker/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const streamWriteWait = 10 * time.Second

// Stream serves GET /api/snapshot/ws. The first snapshot is assembled
// before the upgrade so configuration and input errors still get an HTTP
// status. Every push goes through the assembler and is usually a cache hit.
func (h *Handler) Stream(c echo.Context) error {
	req := &BasketRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, "stream", err)
	}
	symbols, err := h.symbolsOrBasket(req.Symbols)
	if err != nil {
		return h.fail(c, "stream", err)
	}

	first, err := h.snapshots.Assemble(c.Request().Context(), symbols)
	if err != nil {
		return h.fail(c, "stream", err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already replied
		h.log.Debug("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go readUntilClosed(conn, cancel)

	if err := writeFrame(conn, first.Body); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.cfg.StreamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, err := h.snapshots.Assemble(ctx, symbols)
			var body []byte
			if err != nil {
				appErr := toAppError(err)
				body, _ = json.Marshal(xhttp.ErrorBody{Error: appErr.Message})
				h.log.Warn("stream snapshot failed", applogger.Error(err))
			} else {
				body = res.Body
			}
			if err := writeFrame(conn, body); err != nil {
				return nil
			}
		}
	}
}

// readUntilClosed drains client frames so control messages are processed
// and cancels once the peer goes away.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(4096)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, body []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteMessage(websocket.TextMessage, body)
}
