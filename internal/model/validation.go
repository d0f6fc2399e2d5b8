package model

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// 入力値の上限・下限
const (
	MinPasswordLength    = 8
	MaxEmailLength       = 255
	MaxNameLength        = 255
	MaxTitleLength       = 100
	MaxDescriptionLength = 500

	// MaxPasswordBytes はbcryptが受け付ける平文の最大バイト数。
	MaxPasswordBytes = 72
)

// validate は入力構造体のvalidateタグを検証する。
// フィールド名はjsonタグの名前で報告する。
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank は空白のみの文字列を拒否する
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// maxbytes は文字数ではなくバイト数で上限を判定する
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// fieldMessages は"フィールド名.タグ"ごとの利用者向けメッセージ。
var fieldMessages = map[string]string{
	"email.required":    "Email is required",
	"email.email":       "Email must be a valid email address",
	"email.max":         "Email must be 255 characters or less",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 8 characters",
	"password.maxbytes": "Password must be at most 72 bytes",
	"name.required":     "Name is required",
	"name.notblank":     "Name is required",
	"name.max":          "Name must be 255 characters or less",
	"title.required":    "Title is required",
	"title.notblank":    "Title is required",
	"title.max":         "Title must be 100 characters or less",
	"description.max":   "Description must be 500 characters or less",
}

// RegisterInput はユーザー登録の入力を表す。
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Name     string `json:"name" validate:"required,notblank,max=255"`
}

// Validate は登録入力を検証する。
// 違反がある場合は全フィールド分のFieldErrorを含むAPIErrorを返す。
func (in RegisterInput) Validate() error {
	return validateStruct(in)
}

// LoginInput はログインの入力を表す。
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate はログイン入力を検証する。
func (in LoginInput) Validate() error {
	return validateStruct(in)
}

// TodoInput はタスク作成・更新の入力を表す。
// 所有者はクライアントから受け取らないため、フィールドを持たない。
type TodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// todoCreateRules は作成時の検証規則。タイトルは必須。
type todoCreateRules struct {
	Title       *string `json:"title" validate:"required,notblank,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
}

// todoUpdateRules は更新時の検証規則。指定されたフィールドのみ検証する。
type todoUpdateRules struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
}

// ValidateCreate は作成時の入力を検証する。
func (in TodoInput) ValidateCreate() error {
	return validateStruct(todoCreateRules{Title: in.Title, Description: in.Description})
}

// ValidateUpdate は更新時の入力を検証する。全フィールド任意だが、
// タイトルを指定する場合は空にできない。
func (in TodoInput) ValidateUpdate() error {
	return validateStruct(todoUpdateRules{Title: in.Title, Description: in.Description})
}

// Patch は入力をTodoPatchに変換する。
func (in TodoInput) Patch() TodoPatch {
	return TodoPatch{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	}
}

// ProfileInput はプロフィール更新の入力を表す。
type ProfileInput struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// Validate はプロフィール更新入力を検証する。
func (in ProfileInput) Validate() error {
	return validateStruct(in)
}

// validateStruct はvalidatorの検証結果をFieldErrorの並びに変換する。
// 同一フィールドで複数の規則に違反した場合も、報告は最初の1件のみ。
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return NewValidationError(fields...)
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fe.Field() + " is invalid"
}

// AppendFieldErrors はerrがバリデーションエラーの場合、そのFieldErrorの後ろにextraを連結する。
// errがnilの場合はextraのみからなるバリデーションエラーを返す。extraが空ならerrをそのまま返す。
func AppendFieldErrors(err error, extra ...FieldError) error {
	if len(extra) == 0 {
		return err
	}
	if err == nil {
		return NewValidationError(extra...)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind == KindValidation && len(apiErr.Fields) > 0 {
		fields := append(append([]FieldError{}, apiErr.Fields...), extra...)
		return NewValidationError(fields...)
	}
	return err
}
