package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/todoapi/internal/middleware"
)

// 遅延レスポンスのデフォルト値と上限（ミリ秒）
const (
	DefaultDelayMs = 2000
	MaxDelayMs     = 10000
)

// ErrorHandler はクライアント検証用に固定のエラーや遅延を返すHTTPハンドラー。
type ErrorHandler struct {
	wait func(ctx context.Context, d time.Duration) error
}

// NewErrorHandler はErrorHandlerを生成する。
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{wait: sleepContext}
}

// Simulate は指定ステータスの固定エラーを返すハンドラーを生成する。
// GET /errors/{400,401,403,404,500}
func (h *ErrorHandler) Simulate(statusCode int) http.HandlerFunc {
	message := fmt.Sprintf("%s - This is a simulated %d error", http.StatusText(statusCode), statusCode)
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, statusCode, message)
	}
}

type delayResponse struct {
	Message string `json:"message"`
	DelayMs int    `json:"delayMs"`
}

// Delay は指定ミリ秒待ってから応答する。
// msが数値でないか1未満の場合はDefaultDelayMs、上限はMaxDelayMs。
// 待機中にクライアントが切断した場合は何も書き込まずに戻る。
// GET /errors/delay?ms=
func (h *ErrorHandler) Delay(w http.ResponseWriter, r *http.Request) {
	ms, err := strconv.Atoi(r.URL.Query().Get("ms"))
	if err != nil || ms < 1 {
		ms = DefaultDelayMs
	}
	if ms > MaxDelayMs {
		ms = MaxDelayMs
	}

	if err := h.wait(r.Context(), time.Duration(ms)*time.Millisecond); err != nil {
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, delayResponse{
		Message: fmt.Sprintf("Response delayed by %dms", ms),
		DelayMs: ms,
	}, "")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
