package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartaitools/internal/utils"
)

func resetVisitors() {
	mu.Lock()
	ipVisitors = make(map[string]*visitor)
	userVisitors = make(map[string]*visitor)
	mu.Unlock()
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitKeysAuthenticatedCallerByUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	resetVisitors()

	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(userID)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.RemoteAddr = "10.0.0.9:51234"
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	RateLimit(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, userVisitors, userID.Hex())
	assert.NotContains(t, ipVisitors, "10.0.0.9")
}

func TestRateLimitKeysAnonymousCallerByIP(t *testing.T) {
	resetVisitors()

	req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
	req.RemoteAddr = "10.0.0.7:43210"

	rr := httptest.NewRecorder()
	RateLimit(okHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, ipVisitors, "10.0.0.7")
	assert.Empty(t, userVisitors)
}

func TestRateLimitThrottlesAfterBurst(t *testing.T) {
	resetVisitors()

	handler := RateLimit(okHandler())

	var last int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/prompts", nil)
		req.RemoteAddr = "10.0.0.8:43210"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		last = rr.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}
