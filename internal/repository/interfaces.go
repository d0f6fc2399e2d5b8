// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/todoapi/internal/model"
)

var (
	// ErrDuplicateEmail はメールアドレスの一意制約違反を示す。
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNotFound は更新・削除対象の行が存在しないことを示す。
	ErrNotFound = errors.New("record not found")
	// ErrOwnerNotFound はタスクの所有者となるユーザーが存在しないことを示す。
	ErrOwnerNotFound = errors.New("owner not found")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// メールアドレスは大文字小文字を区別して比較する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDとタイムスタンプをuserに設定する。
	// メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateName は表示名を更新し、更新後のユーザーを返す。
	// 対象が存在しない場合はErrNotFoundを返す。
	UpdateName(ctx context.Context, id int64, name string) (*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するtodosはCASCADE削除される。対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id int64) error
}

// TodoRepository はタスクデータの永続化インターフェース。
// 単一行を対象とする操作はすべて所有者IDを条件に含める。
type TodoRepository interface {
	// Create はタスクを作成し、採番されたIDとタイムスタンプをtodoに設定する。
	// 所有者が削除済みの場合はErrOwnerNotFoundを返す。
	Create(ctx context.Context, todo *model.Todo) error

	// FindByIDAndOwner はIDと所有者IDの両方に一致するタスクを取得する。
	// 存在しない場合も他ユーザー所有の場合もnilを返す。
	FindByIDAndOwner(ctx context.Context, id, userID int64) (*model.Todo, error)

	// List は所有者のタスク一覧と、絞り込み条件に一致する総件数を返す。
	// created_at降順（同時刻はid降順）で並べる。
	List(ctx context.Context, userID int64, filter model.TodoFilter) ([]*model.Todo, int, error)

	// Update はタイトル・説明・完了フラグを更新し、updated_atをtodoに反映する。
	// 所有者IDは更新しない。対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, todo *model.Todo) error

	// Delete はIDと所有者IDに一致するタスクを削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id, userID int64) error
}
