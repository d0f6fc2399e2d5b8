// Package revocation はログアウト等で明示的に失効させたトークンを管理する。
//
// レジストリはプロセス内メモリのみに保持され、再起動で空になる。
// 再起動前に失効させた未期限切れトークンは再起動後に再び受理されるが、
// トークン自体が24時間で期限切れになるため許容するリスクとして扱う。
package revocation

import (
	"sync"
	"time"
)

// Registry は失効済みトークンの集合。
// 複数のゴルーチンから同時にRevoke/IsRevokedを呼び出せる。
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]time.Time // token -> トークン自身の有効期限（不明な場合はゼロ値）
}

// NewRegistry は空のRegistryを生成する。
func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[string]time.Time),
	}
}

// Revoke はトークンを失効済みとして登録する。冪等。
// expiresAtはトークン自身の有効期限で、Sweepでの削除判定に使う。
// 既に登録済みの場合は何もしない。
func (r *Registry) Revoke(token string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token]; exists {
		return
	}
	r.tokens[token] = expiresAt
}

// IsRevoked はトークンが失効済みかどうかを返す。
func (r *Registry) IsRevoked(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tokens[token]
	return exists
}

// Len は登録済みのエントリ数を返す。メトリクスおよびテスト用。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// Sweep は有効期限がnowより前のエントリを削除し、削除件数を返す。
// 期限切れのトークンは検証段階で拒否されるため、削除しても再受理されない。
// 有効期限が不明（ゼロ値）のエントリは削除しない。
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, exp := range r.tokens {
		if exp.IsZero() {
			continue
		}
		if exp.Before(now) {
			delete(r.tokens, token)
			removed++
		}
	}
	return removed
}

// Reset は全エントリを削除する。テスト用。
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = make(map[string]time.Time)
}
