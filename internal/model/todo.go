package model

import "time"

// Todo はユーザーが所有するタスクを表す。
// UserIDは作成時に認証済みユーザーから設定され、以後変更されない。
type Todo struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Completed   bool      `db:"completed"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// TodoFilter は一覧取得時の絞り込み条件を表す。
// 所有者条件はリポジトリで常に付与されるため、ここには含めない。
type TodoFilter struct {
	Completed *bool  // nilの場合は完了状態で絞り込まない
	Search    string // タイトルの部分一致。空文字列の場合は絞り込まない
	Page      int    // 1始まり
	Limit     int
}

// Offset はページ番号とページサイズからオフセットを算出する。
func (f TodoFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// TodoPatch は部分更新の入力を表す。nilフィールドは変更しない。
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Pagination は一覧レスポンスのページ情報。
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination は総件数とページ条件からPaginationを生成する。
// totalPagesは ceil(total/limit) で算出する。
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// TodoPage は一覧取得の結果を表す。
type TodoPage struct {
	Todos      []*Todo
	Pagination Pagination
}
