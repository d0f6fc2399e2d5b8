package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

var requestIDContextKey = contextKey("request_id")

// NewRequestMetadataMiddleware はリクエストごとにUUID v4のリクエストIDを採番し、
// X-Request-IDとX-App-Versionをレスポンスヘッダーに付与するミドルウェアを返す。
// リクエストIDはコンテキストにも格納され、ログ出力に使われる。
func NewRequestMetadataMiddleware(appVersion string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			w.Header().Set("X-Request-ID", requestID)
			w.Header().Set("X-App-Version", appVersion)

			ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext はコンテキストからリクエストIDを取得する。
// 未設定の場合は空文字列を返す。
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
