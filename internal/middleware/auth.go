package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/token"
)

const bearerPrefix = "Bearer "

// 認証ゲートが返すメッセージ
const (
	MsgNoToken          = "No token provided"
	MsgTokenInvalidated = "Token has been invalidated"
	MsgInvalidToken     = "Invalid token"
	MsgTokenExpired     = "Token expired"
	MsgAuthFailed       = "Authentication failed"
)

// 拒否理由（メトリクスのラベル値）
const (
	RejectMissingToken = "missing_token"
	RejectRevoked      = "revoked"
	RejectMalformed    = "malformed"
	RejectExpired      = "expired"
	RejectOther        = "other"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	principalContextKey = contextKey("principal")
	tokenContextKey     = contextKey("token")
)

// TokenVerifier はトークンの署名と有効期限を検証する。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// RevocationChecker はトークンが失効済みかを判定する。
type RevocationChecker interface {
	IsRevoked(tokenString string) bool
}

// RejectionRecorder は認証拒否を理由別に記録する。
type RejectionRecorder interface {
	RecordAuthRejection(reason string)
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証するミドルウェアを返す。
//
// 判定順序:
//  1. ヘッダーがない、または"Bearer "で始まらない → 401 "No token provided"
//  2. 失効済み → 401 "Token has been invalidated"
//  3. 検証失敗 → 401 "Invalid token" / "Token expired" / "Authentication failed"
//
// 検証に成功した場合、主体とトークンをリクエストコンテキストに注入して次に進む。
// recorderはnilでもよい。
func NewAuthMiddleware(verifier TokenVerifier, revocations RevocationChecker, recorder RejectionRecorder) func(next http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, r *http.Request, reason, message string) {
		if recorder != nil {
			recorder.RecordAuthRejection(reason)
		}
		slog.Warn("authentication rejected",
			slog.String("reason", reason),
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestIDFromContext(r.Context())),
		)
		WriteError(w, http.StatusUnauthorized, message)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				reject(w, r, RejectMissingToken, MsgNoToken)
				return
			}
			raw := strings.TrimPrefix(header, bearerPrefix)

			if revocations.IsRevoked(raw) {
				reject(w, r, RejectRevoked, MsgTokenInvalidated)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrExpired):
					reject(w, r, RejectExpired, MsgTokenExpired)
				case errors.Is(err, token.ErrMalformed):
					reject(w, r, RejectMalformed, MsgInvalidToken)
				default:
					reject(w, r, RejectOther, MsgAuthFailed)
				}
				return
			}

			ctx := ContextWithPrincipal(r.Context(), model.Principal{
				UserID: claims.UserID,
				Email:  claims.Email,
			})
			ctx = ContextWithToken(ctx, raw)
			recordPrincipal(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認証済みの主体を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(model.Principal)
	if !ok || p.UserID == 0 {
		return model.Principal{}, false
	}
	return p, true
}

// ContextWithPrincipal はコンテキストに主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// TokenFromContext はリクエストに提示された生のトークンを取得する。
func TokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(tokenContextKey).(string)
	return raw, ok && raw != ""
}

// ContextWithToken はコンテキストに生のトークンを注入する。
func ContextWithToken(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, tokenContextKey, raw)
}
