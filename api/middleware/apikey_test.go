package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/recruitstack/recruitstack/internal/utils"
)

func TestAPIKeyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(APIKeyMiddleware(APIKeyConfig{ValidAPIKey: "secret-key"}))
	router.Use(CustomContextMiddleware("test"))
	router.GET("/v1/ping", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetAppSourceFromContext(c.Request.Context()))
	})

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{name: "missing key", wantStatus: http.StatusUnauthorized},
		{name: "invalid key", key: "wrong", wantStatus: http.StatusUnauthorized},
		{name: "valid key", key: " secret-key ", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "test", w.Body.String())
			}
		})
	}
}

func TestAPIKeyMiddleware_EmptyConfiguredKeyRejectsAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(APIKeyMiddleware(APIKeyConfig{}))
	router.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set(APIKeyHeader, "anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
