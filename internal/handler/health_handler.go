package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hitoshi/todoapi/internal/middleware"
)

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	startedAt time.Time
	now       func() time.Time
}

// NewHealthHandler はHealthHandlerを生成する。稼働時間はstartedAtから数える。
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		startedAt: startedAt,
		now:       time.Now,
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// Health は稼働状態を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	uptime := int64(now.Sub(h.startedAt) / time.Second)

	middleware.WriteSuccess(w, http.StatusOK, healthResponse{
		Status:    "OK",
		Uptime:    fmt.Sprintf("%d seconds", uptime),
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}, "")
}
