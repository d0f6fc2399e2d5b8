package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/todoapi/internal/middleware"
	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/todo"
)

// TodoServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
// 単一タスクの操作は常に認証済みユーザーIDと組で呼び出す。
type TodoServiceInterface interface {
	Create(ctx context.Context, userID int64, in model.TodoInput) (*model.Todo, error)
	List(ctx context.Context, userID int64, filter model.TodoFilter) (*model.TodoPage, error)
	Get(ctx context.Context, userID, todoID int64) (*model.Todo, error)
	Update(ctx context.Context, userID, todoID int64, in model.TodoInput) (*model.Todo, error)
	Complete(ctx context.Context, userID, todoID int64) (*model.Todo, error)
	Delete(ctx context.Context, userID, todoID int64) error
}

// TodoHandler はタスク管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{
		service: service,
	}
}

// todoRequest は作成・更新のリクエストボディ。
// userIdを送られても受け取らない。
type todoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (req todoRequest) input() model.TodoInput {
	return model.TodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
}

// todoResponse はタスクのJSON表現。descriptionは未設定の場合null。
type todoResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type todoEnvelope struct {
	Todo todoResponse `json:"todo"`
}

type todoListResponse struct {
	Todos      []todoResponse   `json:"todos"`
	Pagination model.Pagination `json:"pagination"`
}

// CreateTodo はタスクを作成する。所有者は認証済みユーザー。
// POST /todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), p.UserID, req.input())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusCreated, todoEnvelope{Todo: toTodoResponse(created)}, "Todo created successfully")
}

// ListTodos は自分のタスク一覧を返す。
// GET /todos?completed=&search=&page=&limit=
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := todo.ListParams{
		Search: query.Get("search"),
		Page:   query.Get("page"),
		Limit:  query.Get("limit"),
	}
	if query.Has("completed") {
		completed := query.Get("completed")
		params.Completed = &completed
	}

	page, err := h.service.List(r.Context(), p.UserID, params.Filter())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	todos := make([]todoResponse, 0, len(page.Todos))
	for _, t := range page.Todos {
		todos = append(todos, toTodoResponse(t))
	}

	middleware.WriteSuccess(w, http.StatusOK, todoListResponse{
		Todos:      todos,
		Pagination: page.Pagination,
	}, "")
}

// GetTodo は自分のタスクを1件返す。
// GET /todos/{id}
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	todoID, err := todoIDParam(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	found, err := h.service.Get(r.Context(), p.UserID, todoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, todoEnvelope{Todo: toTodoResponse(found)}, "")
}

// UpdateTodo は自分のタスクを部分更新する。
// PUT /todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	todoID, err := todoIDParam(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), p.UserID, todoID, req.input())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, todoEnvelope{Todo: toTodoResponse(updated)}, "Todo updated successfully")
}

// CompleteTodo は自分のタスクを完了にする。
// PATCH /todos/{id}/complete
func (h *TodoHandler) CompleteTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	todoID, err := todoIDParam(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	completed, err := h.service.Complete(r.Context(), p.UserID, todoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, todoEnvelope{Todo: toTodoResponse(completed)}, "Todo marked as completed")
}

// DeleteTodo は自分のタスクを削除する。
// DELETE /todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	todoID, err := todoIDParam(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), p.UserID, todoID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, nil, "Todo deleted successfully")
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
