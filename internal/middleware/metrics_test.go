package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordedRequest struct {
	method string
	status int
}

// mockHTTPRecorder はHTTPMetricsRecorderのテスト用モック。
type mockHTTPRecorder struct {
	calls []recordedRequest
}

func (m *mockHTTPRecorder) RecordHTTPRequest(method string, statusCode int, _ time.Duration) {
	m.calls = append(m.calls, recordedRequest{method: method, status: statusCode})
}

func TestMetricsMiddleware_RecordsStatus(t *testing.T) {
	recorder := &mockHTTPRecorder{}
	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/todos/9", nil))

	if len(recorder.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(recorder.calls))
	}
	if recorder.calls[0].method != http.MethodDelete {
		t.Errorf("method = %q, want %q", recorder.calls[0].method, http.MethodDelete)
	}
	if recorder.calls[0].status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", recorder.calls[0].status, http.StatusNotFound)
	}
}

func TestMetricsMiddleware_ImplicitOK(t *testing.T) {
	recorder := &mockHTTPRecorder{}
	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if recorder.calls[0].status != http.StatusOK {
		t.Errorf("status = %d, want %d", recorder.calls[0].status, http.StatusOK)
	}
}
