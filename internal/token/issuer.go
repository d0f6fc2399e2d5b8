// Package token は署名付きベアラートークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTで、ユーザーID・メールアドレス・有効期限を
// クレームとして持つ。検証はストアを参照せずに行う。失効（ログアウト）の確認は
// このパッケージの責務ではなく、認証ゲートがrevocation.Registryと組み合わせて行う。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL はトークンの有効期間。発行時刻からの固定ポリシー。
const DefaultTTL = 24 * time.Hour

var (
	// ErrMalformed はトークンの解析または署名検証に失敗したことを示す。
	ErrMalformed = errors.New("token is malformed")
	// ErrExpired は署名は正しいが有効期限を過ぎていることを示す。
	ErrExpired = errors.New("token is expired")
	// ErrEmptySecret は署名鍵が空であることを示す。
	ErrEmptySecret = errors.New("signing secret is empty")
)

// Claims はトークンに埋め込むクレーム。
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer はトークンの発行と検証を行う。
// 署名鍵は起動時に一度だけ設定され、プロセス中に変更されない。
// 複数のゴルーチンから同時に利用できる。
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option はIssuerの設定を変更する関数。
type Option func(*Issuer)

// WithClock は現在時刻の取得関数を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer はIssuerを生成する。secretが空の場合はErrEmptySecretを返す。
func NewIssuer(secret []byte, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	keyCopy := make([]byte, len(secret))
	copy(keyCopy, secret)

	i := &Issuer{
		secret: keyCopy,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}

	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return i.now() }),
	)

	return i, nil
}

// Issue はユーザーIDとメールアドレスを束縛したトークンを発行する。
// 有効期限は発行時刻 + DefaultTTL。
func (i *Issuer) Issue(userID int64, email string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 署名不正・解析不能・ユーザーID欠落はErrMalformed、期限切れはErrExpiredを返す。
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := i.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !tok.Valid || claims.UserID == 0 {
		return nil, ErrMalformed
	}
	return claims, nil
}

// ExpiresAt は署名を検証せずにトークンの有効期限を読み取る。
// 失効レジストリのコンパクション用途に限って使用する。
func (i *Issuer) ExpiresAt(tokenString string) (time.Time, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrMalformed)
	}
	return claims.ExpiresAt.Time, nil
}
