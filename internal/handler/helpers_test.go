package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/todoapi/internal/middleware"
	"github.com/hitoshi/todoapi/internal/model"
)

// envelope はレスポンスボディの検証用構造体。
// dataは後段で個別の型にデコードする。
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

// errorString はerrorフィールドを文字列として取り出す。
func (e envelope) errorString(t *testing.T) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(e.Error, &s); err != nil {
		t.Fatalf("error field is not a string: %s", e.Error)
	}
	return s
}

func (e envelope) decodeData(t *testing.T, dst any) {
	t.Helper()
	if err := json.Unmarshal(e.Data, dst); err != nil {
		t.Fatalf("failed to decode data: %v (raw: %s)", err, e.Data)
	}
}

// withPrincipal はリクエストに認証済み主体とトークンを注入する。
func withPrincipal(r *http.Request, userID int64) *http.Request {
	ctx := middleware.ContextWithPrincipal(r.Context(), model.Principal{UserID: userID, Email: "tester@example.com"})
	ctx = middleware.ContextWithToken(ctx, "test-token")
	return r.WithContext(ctx)
}

// withURLParam はchiのURLパラメータをリクエストに注入する。
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(contextWithRouteContext(r, rctx))
}

func contextWithRouteContext(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

func strPtr(s string) *string { return &s }
