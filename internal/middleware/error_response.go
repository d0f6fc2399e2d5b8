package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todoapi/internal/model"
)

// SuccessBody は成功レスポンスの統一フォーマット。
// dataはnullの場合も省略しない。
type SuccessBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorBody はエラーレスポンスの統一フォーマット。
// errorは通常は文字列、バリデーションエラーの場合はFieldErrorの配列になる。
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   any    `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON はJSONレスポンスを書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteSuccess は成功レスポンスを書き込む。messageが空の場合は省略される。
func WriteSuccess(w http.ResponseWriter, statusCode int, data any, message string) {
	WriteJSON(w, statusCode, SuccessBody{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// WriteError は文字列エラーのレスポンスを書き込む。
func WriteError(w http.ResponseWriter, statusCode int, errMessage string) {
	WriteJSON(w, statusCode, ErrorBody{
		Success: false,
		Error:   errMessage,
	})
}

// WriteAPIError はAPIErrorを統一エラーフォーマットで書き込む。
// フィールドエラーを持つ場合はerrorに配列、messageに概要を設定する。
func WriteAPIError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	if len(apiErr.Fields) > 0 {
		WriteJSON(w, statusCode, ErrorBody{
			Success: false,
			Error:   apiErr.Fields,
			Message: apiErr.Message,
		})
		return
	}
	WriteError(w, statusCode, apiErr.Message)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、利用者には一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, model.MsgInternal)
}
