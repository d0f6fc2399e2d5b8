// Package password はパスワードの一方向ハッシュ化と照合を提供する。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost はbcryptのデフォルトコスト。
const DefaultCost = 10

// Hasher はパスワードハッシュ化のインターフェース。
// 照合はVerifyでのみ行い、ダイジェスト同士の比較はしない。
type Hasher interface {
	// Hash は平文パスワードからダイジェストを生成する。
	// ソルトがランダムなため、同じ入力でも毎回異なるダイジェストになる。
	Hash(plaintext string) (string, error)
	// Verify は平文パスワードがダイジェストと一致するかを返す。
	// ダイジェストが不正な形式の場合もfalseを返す。
	Verify(plaintext, digest string) bool
}

// BcryptHasher はbcryptによるHasherの実装。
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// costが範囲外の場合はDefaultCostを使用する。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash は平文パスワードをbcryptでハッシュ化する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードとbcryptダイジェストを照合する。
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)
