package database

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// SeedPassword はシードユーザー共通の平文パスワード。
const SeedPassword = "password123"

// PasswordHasher はシードユーザーのパスワードダイジェストを生成する。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

type seedUser struct {
	email string
	name  string
}

type seedTodo struct {
	owner       int // seedUsersのインデックス
	title       string
	description *string
	completed   bool
}

var seedUsers = []seedUser{
	{email: "tester1@example.com", name: "Tester One"},
	{email: "tester2@example.com", name: "Tester Two"},
	{email: "tester3@example.com", name: "Tester Three"},
}

func strPtr(s string) *string { return &s }

var seedTodos = []seedTodo{
	{0, "Complete API testing workshop", strPtr("Learn about different testing scenarios and HTTP methods"), false},
	{0, "Write test cases for authentication", strPtr("Cover positive and negative scenarios for login and registration"), true},
	{0, "Test pagination endpoints", nil, false},
	{0, "Validate error responses", strPtr("Check that all error endpoints return proper status codes and messages"), true},
	{1, "Review API documentation", strPtr("Go through the README and understand all available endpoints"), false},
	{1, "Test boundary conditions", strPtr("Test maximum length for title and description fields to ensure validation works correctly"), false},
	{1, "Verify JWT token expiration", strPtr("Test what happens when using an expired token"), true},
	{2, "Test cross-user authorization", strPtr("Ensure users cannot access or modify todos belonging to other users"), false},
	{2, "Practice filtering and search", strPtr("Test the completed filter and title search functionality"), false},
	{2, "Short todo", strPtr("A"), true},
}

// SeedResult は投入したデータの件数を表す。
type SeedResult struct {
	Emails []string
	Todos  int
}

// Seed は既存データを削除し、テスト用ユーザー3名とサンプルタスクを投入する。
// 全件を1トランザクションで投入し、途中で失敗した場合は何も残さない。
func Seed(ctx context.Context, db *sqlx.DB, hasher PasswordHasher) (*SeedResult, error) {
	digest, err := hasher.Hash(SeedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE todos, users RESTART IDENTITY CASCADE`); err != nil {
		return nil, fmt.Errorf("failed to truncate tables: %w", err)
	}

	result := &SeedResult{}
	userIDs := make([]int64, len(seedUsers))
	for i, u := range seedUsers {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO users (email, password, name) VALUES ($1, $2, $3) RETURNING id`,
			u.email, digest, u.name,
		).Scan(&userIDs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to insert seed user %s: %w", u.email, err)
		}
		result.Emails = append(result.Emails, u.email)
	}

	insert := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert("todos").
		Columns("user_id", "title", "description", "completed")
	for _, td := range seedTodos {
		insert = insert.Values(userIDs[td.owner], td.title, td.description, td.completed)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build seed insert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert seed todos: %w", err)
	}
	result.Todos = len(seedTodos)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return result, nil
}
