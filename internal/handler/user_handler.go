package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/todoapi/internal/middleware"
	"github.com/hitoshi/todoapi/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, in model.ProfileInput) (*model.User, error)
	// DeleteAccount はユーザーと所有する全タスクを削除し、提示中のトークンを失効させる。
	DeleteAccount(ctx context.Context, userID int64, token string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

type profileRequest struct {
	Name string `json:"name"`
}

// userResponse はプロフィール応答のユーザー情報。パスワードハッシュは含めない。
type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

// GetProfile は自分のプロフィールを返す。
// GET /users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(r.Context(), p.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, userEnvelope{User: toUserResponse(user)}, "")
}

// UpdateProfile は表示名を更新する。
// PUT /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), p.UserID, model.ProfileInput{Name: req.Name})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, userEnvelope{User: toUserResponse(user)}, "Profile updated successfully")
}

// DeleteAccount は退会処理を実行する。
// DELETE /users/me
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	raw, _ := middleware.TokenFromContext(r.Context())

	if err := h.service.DeleteAccount(r.Context(), p.UserID, raw); err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, nil, "Account deleted successfully")
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
