package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/todoapi/internal/model"
)

var todoColumns = []string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}

// likeEscaper はLIKEパターンのメタ文字をエスケープする。
// PostgreSQLのLIKEはデフォルトでバックスラッシュをエスケープ文字として扱う。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresTodoRepo はPostgreSQLを使用したタスクリポジトリ。
// 一覧取得の動的な絞り込み条件はsquirrelで組み立てる。
type PostgresTodoRepo struct {
	db   *sqlx.DB
	psql sq.StatementBuilderType
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sqlx.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create はタスクを作成する。所有者の外部キー違反はErrOwnerNotFoundに変換する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	query, args, err := r.psql.Insert("todos").
		Columns("user_id", "title", "description", "completed").
		Values(todo.UserID, todo.Title, todo.Description, todo.Completed).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
		// 退会済みユーザーの未失効トークンによる作成
		if isForeignKeyViolation(err) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

// FindByIDAndOwner はIDと所有者IDの両方に一致するタスクを取得する。
// 所有者条件はWHERE句に含め、取得後のフィルタには頼らない。
func (r *PostgresTodoRepo) FindByIDAndOwner(ctx context.Context, id, userID int64) (*model.Todo, error) {
	query, args, err := r.psql.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	todo := &model.Todo{}
	err = r.db.GetContext(ctx, todo, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}

// List は所有者のタスク一覧と総件数を返す。
// 所有者条件は必須で、完了フラグ・タイトル部分一致は指定時のみ追加する。
func (r *PostgresTodoRepo) List(ctx context.Context, userID int64, filter model.TodoFilter) ([]*model.Todo, int, error) {
	conds := sq.And{sq.Eq{"user_id": userID}}
	if filter.Completed != nil {
		conds = append(conds, sq.Eq{"completed": *filter.Completed})
	}
	if filter.Search != "" {
		conds = append(conds, sq.Like{"title": "%" + likeEscaper.Replace(filter.Search) + "%"})
	}

	countQuery, countArgs, err := r.psql.Select("COUNT(*)").From("todos").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	query, args, err := r.psql.Select(todoColumns...).
		From("todos").
		Where(conds).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	todos := []*model.Todo{}
	if err := r.db.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, total, nil
}

// Update はタスクのタイトル・説明・完了フラグを更新する。
func (r *PostgresTodoRepo) Update(ctx context.Context, todo *model.Todo) error {
	query, args, err := r.psql.Update("todos").
		Set("title", todo.Title).
		Set("description", todo.Description).
		Set("completed", todo.Completed).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": todo.ID}).
		Where(sq.Eq{"user_id": todo.UserID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&todo.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// Delete はIDと所有者IDに一致するタスクを削除する。
func (r *PostgresTodoRepo) Delete(ctx context.Context, id, userID int64) error {
	query, args, err := r.psql.Delete("todos").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
