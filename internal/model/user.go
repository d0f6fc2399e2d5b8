// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptダイジェストであり、APIレスポンスには含めない。
type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password"`
	Name         string    `db:"name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Principal は認証ゲートで検証済みのリクエスト主体を表す。
// トークンのクレームから復元され、ストア参照なしで得られる。
type Principal struct {
	UserID int64
	Email  string
}
