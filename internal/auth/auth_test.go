package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	h := Middleware("s3cret")(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"probe is public", "/healthz", "", http.StatusOK},
		{"metrics are public", "/metrics", "", http.StatusOK},
		{"missing header", "/api/v1/eclipses", "", http.StatusUnauthorized},
		{"wrong scheme", "/api/v1/eclipses", "Basic s3cret", http.StatusUnauthorized},
		{"bare token", "/api/v1/eclipses", "s3cret", http.StatusUnauthorized},
		{"wrong token", "/api/v1/moon", "Bearer guess", http.StatusUnauthorized},
		{"valid token", "/api/v1/moon", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if w.Code == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate")
			}
		})
	}
}

func TestMiddlewareDisabled(t *testing.T) {
	h := Middleware("")(okHandler())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/eclipses", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d with auth disabled, want 200", w.Code)
	}
}
