package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func runMiddleware(config JWTConfig, req *http.Request, next echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = JWTMiddleware(config)(next)(c)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	config := JWTConfig{Secret: testSecret, Logger: zap.NewNop()}

	t.Run("valid token reaches the handler with user set", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":   "user-1",
			"email": "seller@example.com",
			"role":  "seller",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/api/seller/payout-account", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := runMiddleware(config, req, func(c echo.Context) error {
			user := GetUser(c)
			assert.NotNil(t, user)
			assert.Equal(t, "user-1", user.UserID)
			assert.Equal(t, "seller", user.Role)
			return c.NoContent(http.StatusOK)
		})

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/payments/initialize", nil)
		rec := runMiddleware(config, req, unreachableHandler(t))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/payments/initialize", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := runMiddleware(config, req, unreachableHandler(t))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{"sub": "user-1"})
		req := httptest.NewRequest(http.MethodGet, "/api/payments/initialize", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := runMiddleware(config, req, unreachableHandler(t))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/api/payments/initialize", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := runMiddleware(config, req, unreachableHandler(t))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing subject claim", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{"email": "x@example.com"})
		req := httptest.NewRequest(http.MethodGet, "/api/payments/initialize", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := runMiddleware(config, req, unreachableHandler(t))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("skip path bypasses validation", func(t *testing.T) {
		skipConfig := JWTConfig{Secret: testSecret, Logger: zap.NewNop(), SkipPaths: []string{"/health"}}
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := runMiddleware(skipConfig, req, func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	logger := zap.NewNop()

	setUser := func(role string) echo.Context {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set(userContextKey, &AuthUser{UserID: "user-1", Role: role})
		return c
	}

	t.Run("allows a matching role", func(t *testing.T) {
		c := setUser("admin")
		err := RequireRole(logger, "admin")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, c.Response().Status)
	})

	t.Run("allows any of several roles", func(t *testing.T) {
		c := setUser("seller")
		err := RequireRole(logger, "seller", "admin")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, c.Response().Status)
	})

	t.Run("rejects a non-matching role", func(t *testing.T) {
		c := setUser("buyer")
		err := RequireRole(logger, "admin")(unreachableHandler(t))(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, c.Response().Status)
	})

	t.Run("rejects when unauthenticated", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		err := RequireRole(logger, "admin")(unreachableHandler(t))(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, c.Response().Status)
	})
}

func unreachableHandler(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatal("handler should not have been reached")
		return nil
	}
}
