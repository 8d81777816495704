package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCORS(t *testing.T, opts Options, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/api/v1/students", nil)
	if origin != "" {
		c.Request.Header.Set("Origin", origin)
	}
	New(opts)(c)
	return w
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	w := runCORS(t, Options{AllowedOrigins: []string{"https://app.school.com"}}, http.MethodGet, "https://app.school.com")

	assert.Equal(t, "https://app.school.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORSSkipsUnknownOrigin(t *testing.T) {
	w := runCORS(t, Options{AllowedOrigins: []string{"https://app.school.com"}}, http.MethodGet, "https://evil.example")

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardWhenUnconfigured(t *testing.T) {
	w := runCORS(t, Options{}, http.MethodGet, "")

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	w := runCORS(t, Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		MaxAge:         time.Minute,
	}, http.MethodOptions, "https://app.school.com")

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "60", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSDefaultHeaderList(t *testing.T) {
	w := runCORS(t, Options{}, http.MethodGet, "")

	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
}
