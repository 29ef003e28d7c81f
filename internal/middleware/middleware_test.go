package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smartplay/internal/config"
	"github.com/iliyamo/smartplay/internal/utils"
)

func serve(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, any) {
	t.Helper()
	e := echo.New()
	var seen any
	e.GET("/v1/me", func(c echo.Context) error {
		seen = c.Get(UserIDKey)
		return c.NoContent(http.StatusOK)
	}, mw)
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 7, 5)
	require.NoError(t, err)

	rec, seen := serve(t, JWTAuth("secret"), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), seen)

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"empty bearer": "Bearer ",
		"bad token":    "Bearer abc.def.ghi",
	} {
		t.Run(name, func(t *testing.T) {
			rec, seen := serve(t, JWTAuth("secret"), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, seen)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	rec, _ = serve(t, JWTAuth("other-secret"), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenBucket_PassThroughWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	for i := 0; i < 3; i++ {
		rec, _ := serve(t, NewTokenBucket(cfg, nil, nil), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/abc", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/chat/:videoId")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	assert.Equal(t, "rl:user:anon:route:POST /v1/chat/:videoId", buildRateKey(cfg, c))

	c.Set(UserIDKey, uint64(42))
	assert.Equal(t, "rl:user:42:route:POST /v1/chat/:videoId", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(cfg, c))

	cfg.KeyStrategy = ""
	assert.Equal(t, "rl:ip:10.0.0.1:user:42:route:POST /v1/chat/:videoId", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(3), asInt64("3"))
	assert.Equal(t, int64(0), asInt64(nil))
}
