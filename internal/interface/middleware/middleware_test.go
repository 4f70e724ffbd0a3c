package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/observability"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]*entity.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*entity.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperror.Unauthenticated("invalid or expired token")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), ErrorHandler(helpers.NopLogger(), observability.NewMetrics()))
	r.GET("/t", handlers...)
	return r
}

func do(r http.Handler, header string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthBearer(t *testing.T) {
	guard := &entity.User{ID: 3, Role: entity.RoleGuard, IsActive: true}
	r := newEngine(Auth(stubAuth{"good": guard}), func(c *gin.Context) {
		assert.Equal(t, int64(3), c.GetInt64(CtxUserID))
		assert.Equal(t, "guard", c.GetString(CtxUserRole))
		assert.Equal(t, int64(3), Actor(c).ID)
		c.Status(http.StatusNoContent)
	})

	for _, h := range []string{"Bearer good", "bearer good", "BEARER  good"} {
		w, _ := do(r, h)
		assert.Equal(t, http.StatusNoContent, w.Code, h)
	}

	for _, h := range []string{"", "good", "Basic good", "Bearer ", "Bearer bad"} {
		w, body := do(r, h)
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.Equal(t, false, body["success"])
	}
}

func TestRequireRoles(t *testing.T) {
	resident := &entity.User{ID: 7, Role: entity.RoleResident, IsActive: true}
	r := newEngine(Auth(stubAuth{"r": resident}), RequireRoles(entity.RoleGuard, entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w, body := do(r, "Bearer r")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]any)["kind"])
}

func TestErrorHandlerMasksUnknownErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused to 10.0.0.5"))
	})

	w, body := do(r, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.NotEmpty(t, body["request_id"])
	assert.Equal(t, w.Header().Get(HeaderRequestID), body["request_id"])
}

func TestErrorHandlerValidationDetails(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.Validation("invalid", map[string]string{"email": "is required"}))
	})

	w, body := do(r, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION", errBody["kind"])
	assert.Equal(t, "is required", errBody["details"].(map[string]any)["email"])
}

func TestRealIPPriority(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	var got string
	r.GET("/t", func(c *gin.Context) { got = c.GetString("real_ip") })

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.9", got)

	req.Header.Set("CF-Connecting-IP", "198.51.100.4")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.4", got)
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := newEngine(RateLimit(nil, 1, 0, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w, _ := do(r, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(HeaderRequestID, "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", w.Header().Get(HeaderRequestID))
}

func TestRateLimitKeys(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	c.Set(CtxRealIP, "203.0.113.9")

	assert.Equal(t, "ip:203.0.113.9", KeyByIP()(c))
	assert.Equal(t, "anon:ip:203.0.113.9", KeyByUserID()(c))
	assert.Equal(t, "route:/api/auth/login:ip:203.0.113.9", KeyByIPAndPath()(c))

	c.Set(CtxUserID, int64(12))
	assert.Equal(t, "user:12", KeyByUserID()(c))

	assert.False(t, AllowPrivateIP()(c))
	c.Set(CtxRealIP, "10.1.2.3")
	assert.True(t, AllowPrivateIP()(c))
}
