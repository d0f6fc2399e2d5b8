// Package todo はタスク管理のドメインロジックと所有者チェックを提供する。
//
// 単一タスクを対象とする操作は、所有者条件付きで取得した後に
// 所有者IDを再確認してから処理を行う。
package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/repository"
	"github.com/hitoshi/todoapi/internal/security"
)

// ページング条件のデフォルト値と上限
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// マークアップを含む入力に対するメッセージ
const (
	MsgTitleMarkup       = "Title must not contain HTML markup"
	MsgDescriptionMarkup = "Description must not contain HTML markup"
)

// ListParams は一覧取得のクエリパラメータを文字列のまま保持する。
// Completedはパラメータ自体が存在しない場合にnilとなる。
type ListParams struct {
	Completed *string
	Search    string
	Page      string
	Limit     string
}

// Filter はクエリパラメータを正規化してTodoFilterに変換する。
// completedは"true"の場合のみtrue、それ以外の値はfalseとして扱う。
// page/limitは数値でないか1未満の場合デフォルト値を使い、limitはMaxLimitで打ち切る。
func (p ListParams) Filter() model.TodoFilter {
	f := model.TodoFilter{
		Search: p.Search,
		Page:   parsePositiveInt(p.Page, DefaultPage),
		Limit:  parsePositiveInt(p.Limit, DefaultLimit),
	}
	if p.Completed != nil {
		completed := *p.Completed == "true"
		f.Completed = &completed
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

func parsePositiveInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return defaultVal
	}
	return n
}

// Service はタスク管理のサービス層。
type Service struct {
	repo   repository.TodoRepository
	markup security.MarkupDetector
}

// NewService はServiceの新しいインスタンスを生成する。
// markupがnilの場合はマークアップ検査を行わない。
func NewService(repo repository.TodoRepository, markup security.MarkupDetector) *Service {
	return &Service{
		repo:   repo,
		markup: markup,
	}
}

// Create はuserIDを所有者とするタスクを作成する。
// 所有者は常に認証済みユーザーから設定され、入力から受け取ることはない。
func (s *Service) Create(ctx context.Context, userID int64, in model.TodoInput) (*model.Todo, error) {
	if err := s.validate(in, in.ValidateCreate()); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		UserID:      userID,
		Title:       *in.Title,
		Description: in.Description,
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// List はuserIDが所有するタスクの一覧とページ情報を返す。
func (s *Service) List(ctx context.Context, userID int64, filter model.TodoFilter) (*model.TodoPage, error) {
	if filter.Page < 1 {
		filter.Page = DefaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}

	todos, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	if todos == nil {
		todos = []*model.Todo{}
	}

	return &model.TodoPage{
		Todos:      todos,
		Pagination: model.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// Get はuserIDが所有するタスクを1件返す。
func (s *Service) Get(ctx context.Context, userID, todoID int64) (*model.Todo, error) {
	return s.findOwned(ctx, userID, todoID)
}

// Update はタスクを部分更新する。指定されなかったフィールドは変更しない。
func (s *Service) Update(ctx context.Context, userID, todoID int64, in model.TodoInput) (*model.Todo, error) {
	if err := s.validate(in, in.ValidateUpdate()); err != nil {
		return nil, err
	}

	todo, err := s.findOwned(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	patch := in.Patch()
	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = patch.Description
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}

	if err := s.save(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Complete はタスクを完了済みにする。完了済みのタスクに対しても成功する。
func (s *Service) Complete(ctx context.Context, userID, todoID int64) (*model.Todo, error) {
	todo, err := s.findOwned(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}

	todo.Completed = true
	if err := s.save(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Delete はタスクを削除する。
func (s *Service) Delete(ctx context.Context, userID, todoID int64) error {
	todo, err := s.findOwned(ctx, userID, todoID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, todo.ID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewTodoNotFoundError()
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	slog.Info("todo deleted",
		slog.Int64("user_id", userID),
		slog.Int64("todo_id", todoID),
	)
	return nil
}

// findOwned は所有者条件付きでタスクを取得し、所有者IDを再確認する。
// 他ユーザー所有のタスクは存在しない場合と同じNotFoundになる。
func (s *Service) findOwned(ctx context.Context, userID, todoID int64) (*model.Todo, error) {
	todo, err := s.repo.FindByIDAndOwner(ctx, todoID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError()
	}
	if todo.UserID != userID {
		slog.Warn("owner mismatch on scoped fetch",
			slog.Int64("user_id", userID),
			slog.Int64("todo_id", todoID),
			slog.Int64("owner_id", todo.UserID),
		)
		return nil, model.NewTodoForbiddenError()
	}
	return todo, nil
}

func (s *Service) save(ctx context.Context, todo *model.Todo) error {
	if err := s.repo.Update(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewTodoNotFoundError()
		}
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// validate は入力検証の結果に、タイトルと説明のマークアップ検査の結果を加える。
// 入力は書き換えない。
func (s *Service) validate(in model.TodoInput, err error) error {
	if s.markup == nil {
		return err
	}
	var fields []model.FieldError
	if in.Title != nil && s.markup.ContainsMarkup(*in.Title) {
		fields = append(fields, model.FieldError{Field: "title", Message: MsgTitleMarkup})
	}
	if in.Description != nil && s.markup.ContainsMarkup(*in.Description) {
		fields = append(fields, model.FieldError{Field: "description", Message: MsgDescriptionMarkup})
	}
	return model.AppendFieldErrors(err, fields...)
}
