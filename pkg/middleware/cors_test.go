package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	CORS(cfg)(okHandler()).ServeHTTP(rr, req)
	return rr
}

func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	rr := serveCORS(CORSConfig{Environment: "development"}, http.MethodGet, "https://anywhere.test")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_Production(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"https://shop.example.com", "https://admin.example.com"},
		Environment:    "production",
	}

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
		wantVary   string
	}{
		{"allowed", "https://shop.example.com", "https://shop.example.com", "Origin"},
		{"second allowed", "https://admin.example.com", "https://admin.example.com", "Origin"},
		{"rejected", "https://evil.test", "", ""},
		{"no origin", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveCORS(cfg, http.MethodGet, tt.origin)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, rr.Header().Get("Vary"))
		})
	}
}

func TestCORS_WildcardInListAllowsAll(t *testing.T) {
	rr := serveCORS(CORSConfig{AllowedOrigins: []string{"*"}, Environment: "production"},
		http.MethodGet, "https://other.test")
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightReturns204(t *testing.T) {
	rr := serveCORS(DefaultCORSConfig(), http.MethodOptions, "https://shop.example.com")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestCORS_DefaultsIncludeSessionHeader(t *testing.T) {
	rr := serveCORS(CORSConfig{Environment: "production"}, http.MethodGet, "")

	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), SessionIDHeader)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_CredentialsAndExposedHeaders(t *testing.T) {
	rr := serveCORS(CORSConfig{
		Environment:      "production",
		ExposedHeaders:   []string{CorrelationIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}, http.MethodGet, "")

	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, CorrelationIDHeader, rr.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
}
