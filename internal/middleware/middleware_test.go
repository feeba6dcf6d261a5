// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNegotiateLanguage(t *testing.T) {
	require.NoError(t, i18n.Initialize("fr"))

	cases := map[string]string{
		"":               "fr",
		"en-US,en;q=0.9": "en",
		"de-DE,en;q=0.8": "en",
		"fr_FR":          "fr",
		"zh-TW,zh;q=0.9": "fr",
		" , ;q=0.1, EN":  "en",
	}
	for header, want := range cases {
		assert.Equal(t, want, negotiateLanguage(header), header)
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	require.NoError(t, i18n.Initialize("fr"))
	limiter := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"), "buckets are per client")
}

func TestAuthRequired(t *testing.T) {
	require.NoError(t, i18n.Initialize("fr"))
	utils.SetJWTSecret("test-secret")

	r := gin.New()
	r.Use(I18nMiddleware(), AuthRequired())
	r.GET("/me", func(c *gin.Context) {
		userID, ok := utils.GetUserIDFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, userID.String())
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer not-a-jwt").Code)

	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, "owner@example.com", 1)
	require.NoError(t, err)

	w := call("Bearer " + token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestExtractResource(t *testing.T) {
	id := uuid.New().String()
	assert.Equal(t, "contracts", extractResourceType("/v1/contracts/"+id+"/sign"))
	assert.Equal(t, id, extractResourceID("/v1/contracts/"+id+"/sign"))
	assert.Equal(t, "health", extractResourceType("/health"))
	assert.Equal(t, "", extractResourceID("/health"))
}
