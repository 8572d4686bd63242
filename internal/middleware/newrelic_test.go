package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRelic_NilAppPassesThrough(t *testing.T) {
	t.Parallel()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	NewRelic(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drivers", nil))

	if !called || rec.Code != http.StatusTeapot {
		t.Errorf("called = %v, status = %d", called, rec.Code)
	}
}
