// Package auth はユーザー登録・ログイン・ログアウトを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/password"
	"github.com/hitoshi/todoapi/internal/repository"
)

// TokenIssuer はログイン用トークンを発行する。
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
	ExpiresAt(token string) (time.Time, error)
}

// Revoker はトークンを失効させる。
type Revoker interface {
	Revoke(token string, expiresAt time.Time)
}

// Result は登録・ログイン成功時の結果を表す。
type Result struct {
	User  *model.User
	Token string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   password.Hasher
	issuer   TokenIssuer
	revoker  Revoker
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	hasher password.Hasher,
	issuer TokenIssuer,
	revoker Revoker,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		revoker:  revoker,
	}
}

// Register はユーザーを登録し、トークンを発行する。
// メールアドレスが登録済みの場合はDuplicateエラーを返し、usersへの書き込みは行わない。
func (s *Service) Register(ctx context.Context, in model.RegisterInput) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError()
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: digest,
		Name:         in.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェック後の同時登録
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered", slog.Int64("user_id", user.ID))
	return &Result{User: user, Token: token}, nil
}

// Login はメールアドレスとパスワードを検証し、トークンを発行する。
// 未登録とパスワード不一致は同一のエラーを返す。
func (s *Service) Login(ctx context.Context, in model.LoginInput) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return &Result{User: user, Token: token}, nil
}

// Logout は提示されたトークンを失効させる。冪等。
// トークンの期限は失効レジストリの掃除に使うため、読み取れない場合はゼロ値で登録する。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}

	expiresAt, err := s.issuer.ExpiresAt(token)
	if err != nil {
		expiresAt = time.Time{}
	}
	s.revoker.Revoke(token, expiresAt)

	slog.InfoContext(ctx, "user logged out")
	return nil
}
