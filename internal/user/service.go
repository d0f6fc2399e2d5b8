// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/repository"
)

// SessionTerminator は提示中のトークンを失効させるインターフェース。
type SessionTerminator interface {
	Logout(ctx context.Context, token string) error
}

// Service はユーザー管理のサービス層。
// プロフィールの取得・更新と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo   repository.UserRepository
	terminator SessionTerminator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	terminator SessionTerminator,
) *Service {
	return &Service{
		userRepo:   userRepo,
		terminator: terminator,
	}
}

// GetProfile はユーザーのプロフィールを返す。
func (s *Service) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateProfile は表示名を更新する。メールアドレスとパスワードは変更できない。
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in model.ProfileInput) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateName(ctx, userID, in.Name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NewUserNotFoundError()
	}
	if err != nil {
		return nil, fmt.Errorf("表示名の更新に失敗しました: %w", err)
	}
	return user, nil
}

// DeleteAccount はユーザーを削除する（todosはCASCADE削除）。
// 削除後、リクエストに使われたトークンも失効させる。
func (s *Service) DeleteAccount(ctx context.Context, userID int64, token string) error {
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	if s.terminator != nil && token != "" {
		if err := s.terminator.Logout(ctx, token); err != nil {
			slog.Warn("退会後のトークン失効に失敗しました",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	slog.Info("退会処理が完了しました",
		slog.Int64("user_id", userID),
	)
	return nil
}
