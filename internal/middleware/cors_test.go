package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"route_registry/internal/middleware"
)

func TestEnableCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/routes", nil)
		req.Header.Set("Origin", "http://localhost:4200")
		w := httptest.NewRecorder()

		middleware.EnableCORS(next, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:4200", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})

	t.Run("allow list filters origins", func(t *testing.T) {
		allowed := []string{"http://localhost:4200"}

		req := httptest.NewRequest(http.MethodGet, "/api/routes", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		middleware.EnableCORS(next, allowed).ServeHTTP(w, req)

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

		req.Header.Set("Origin", "http://localhost:4200")
		w = httptest.NewRecorder()
		middleware.EnableCORS(next, allowed).ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:4200", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Location", w.Header().Get("Access-Control-Expose-Headers"))
	})
}
