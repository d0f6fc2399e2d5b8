package model

import (
	"fmt"
	"strings"
)

// ErrorKind はクライアントに返すエラーの分類を表す。
// HTTPステータスコードへの変換はhandler層で行う。
type ErrorKind string

// 定義済みエラー分類
const (
	KindValidation     ErrorKind = "validation"
	KindDuplicate      ErrorKind = "duplicate"
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindNotFound       ErrorKind = "not_found"
	KindInternal       ErrorKind = "internal"
)

// FieldError はフィールド単位のバリデーションエラーを表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError は統一エラーフォーマットを表す。
// Kindがvalidationの場合のみFieldsを持つ。
type APIError struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("[%s] %s (%s)", e.Kind, e.Message, strings.Join(parts, ", "))
}

// 定義済みメッセージ
const (
	MsgValidationFailed   = "Validation failed"
	MsgInvalidBody        = "Invalid request body"
	MsgEmailRegistered    = "Email already registered"
	MsgInvalidCredentials = "Invalid email or password"
	MsgTodoNotFound       = "Todo not found"
	MsgTodoForbidden      = "You don't have permission to access this todo"
	MsgUserNotFound       = "User not found"
	MsgInternal           = "Internal server error"
)

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
func NewValidationError(fields ...FieldError) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: MsgValidationFailed,
		Fields:  fields,
	}
}

// NewInvalidBodyError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidBodyError() *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: MsgInvalidBody,
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
// どの制約に衝突したかは利用者に明かさない。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Kind:    KindDuplicate,
		Message: MsgEmailRegistered,
	}
}

// NewAuthenticationError は認証失敗エラーを生成する。
func NewAuthenticationError(message string) *APIError {
	return &APIError{
		Kind:    KindAuthentication,
		Message: message,
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー未登録とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return NewAuthenticationError(MsgInvalidCredentials)
}

// NewTodoNotFoundError はタスク未検出エラーを生成する。
// 存在しない場合と他ユーザー所有の場合を区別しない。
func NewTodoNotFoundError() *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: MsgTodoNotFound,
	}
}

// NewTodoForbiddenError は所有者不一致エラーを生成する。
func NewTodoForbiddenError() *APIError {
	return &APIError{
		Kind:    KindAuthorization,
		Message: MsgTodoForbidden,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: MsgUserNotFound,
	}
}
