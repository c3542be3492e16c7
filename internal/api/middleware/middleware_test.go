package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"controle-motoristas/config"
	"controle-motoristas/pkg/jwt"
	"controle-motoristas/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{JWTSecret: "0123456789abcdef0123", AccessTokenTTL: time.Hour})
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, c.GetString("user_id")) }

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth / AdminOnly ──

func TestJWTAuth(t *testing.T) {
	mgr := newJWT()
	token, err := mgr.GenerateAccessToken("mgr-1", jwt.RoleManager, "Marcos")
	if err != nil {
		t.Fatalf("生成 token 失败: %v", err)
	}

	r := gin.New()
	r.GET("/p", JWTAuth(mgr), okHandler)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"缺少 token", "Bearer ", http.StatusUnauthorized},
		{"scheme 不区分大小写", "bearer " + token, http.StatusOK},
		{"无效 token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"有效 token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := do(r, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && w.Body.String() != "mgr-1" {
				t.Errorf("user_id 未注入上下文: %q", w.Body.String())
			}
		})
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	expired := jwt.NewManager(&config.AuthConfig{JWTSecret: "0123456789abcdef0123", AccessTokenTTL: -time.Minute})
	token, _ := expired.GenerateAccessToken("mgr-1", jwt.RoleManager, "Marcos")

	r := gin.New()
	r.GET("/p", JWTAuth(newJWT()), okHandler)

	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(r, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "过期") {
		t.Errorf("过期 token 应提示重新登录: %s", w.Body.String())
	}
}

func TestAdminOnly(t *testing.T) {
	mgr := newJWT()
	adminToken, _ := mgr.GenerateAccessToken("admin-1", jwt.RoleAdmin, "Ana")
	managerToken, _ := mgr.GenerateAccessToken("mgr-1", jwt.RoleManager, "Marcos")

	r := gin.New()
	r.DELETE("/records/:id", JWTAuth(mgr), AdminOnly(), okHandler)
	r.POST("/roster/import", AdminOnly(), okHandler)

	req := httptest.NewRequest("DELETE", "/records/r1", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	if w := do(r, req); w.Code != http.StatusForbidden {
		t.Errorf("manager expected 403, got %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/records/r1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	if w := do(r, req); w.Code != http.StatusOK {
		t.Errorf("admin expected 200, got %d", w.Code)
	}

	// 未经过 JWTAuth
	if w := do(r, httptest.NewRequest("POST", "/roster/import", nil)); w.Code != http.StatusUnauthorized {
		t.Errorf("未认证 expected 401, got %d", w.Code)
	}
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("连接 miniredis 失败: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.POST("/records/reconcile", func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-User"))
		c.Next()
	}, RateLimit(rdb, 2, time.Minute, zap.NewNop()), okHandler)

	send := func(user string) int {
		req := httptest.NewRequest("POST", "/records/reconcile", nil)
		req.Header.Set("X-User", user)
		return do(r, req).Code
	}

	if send("u1") != 200 || send("u1") != 200 {
		t.Fatal("窗口内前两次请求应通过")
	}
	if code := send("u1"); code != http.StatusTooManyRequests {
		t.Errorf("第三次请求 expected 429, got %d", code)
	}
	if code := send("u2"); code != 200 {
		t.Errorf("其他用户不受影响，got %d", code)
	}
	if !mr.Exists("rate_limit:u1:/records/reconcile") {
		t.Error("限流键格式不符合预期")
	}
}

func TestRateLimit_NilClientPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/p", RateLimit(nil, 1, time.Minute, zap.NewNop()), okHandler)

	for i := 0; i < 3; i++ {
		if w := do(r, httptest.NewRequest("GET", "/p", nil)); w.Code != http.StatusOK {
			t.Fatalf("无 Redis 时应放行，got %d", w.Code)
		}
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/p", BodyLimit(16), okHandler)

	w := do(r, httptest.NewRequest("POST", "/p", strings.NewReader(strings.Repeat("x", 32))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = do(r, httptest.NewRequest("POST", "/p", strings.NewReader("small")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ── RequestID / CORS / SecurityHeaders ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/p", RequestID(), func(c *gin.Context) { c.String(200, GetRequestID(c)) })

	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := do(r, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Error("应沿用请求头中的 Request-ID")
	}

	for _, bad := range []string{strings.Repeat("a", requestIDMaxLen+1), "abc\nforged=1", "a b"} {
		req = httptest.NewRequest("GET", "/p", nil)
		req.Header.Set("X-Request-ID", bad)
		w = do(r, req)
		if got := w.Header().Get("X-Request-ID"); got == bad || len(got) != 36 {
			t.Errorf("不合法的 Request-ID %q 应被替换为 UUID，got %q", bad, got)
		}
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{
		AllowOrigins:  []string{"http://localhost:5173/"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        time.Hour,
	}))
	r.GET("/p", okHandler)

	req := httptest.NewRequest("OPTIONS", "/p", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := do(r, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("允许的来源应回显")
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization, X-Request-ID" {
		t.Errorf("允许的请求头应来自配置，got %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("max-age expected 3600, got %q", got)
	}

	req = httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = do(r, req)
	if w.Header().Get("Access-Control-Expose-Headers") != "Content-Disposition" {
		t.Error("导出文件名响应头应暴露给前端")
	}

	req = httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = do(r, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("未允许的来源不应回显")
	}

	req = httptest.NewRequest("OPTIONS", "/p", nil)
	req.Header.Set("Origin", "http://evil.example")
	if w = do(r, req); w.Code != http.StatusForbidden {
		t.Errorf("未允许来源的预检 expected 403, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/p", SecurityHeaders(), okHandler)

	w := do(r, httptest.NewRequest("GET", "/p", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("缺少安全响应头")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("响应不应被缓存")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("明文请求不应下发 HSTS")
	}

	req := httptest.NewRequest("GET", "/p", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	if w = do(r, req); w.Header().Get("Strict-Transport-Security") != hstsValue {
		t.Error("经 TLS 代理的请求应下发 HSTS")
	}
}

// ── Logger ──

func TestLogger_RouteTemplateAndIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.PUT("/edits/:record_id", func(c *gin.Context) {
		c.Set(CtxUserID, "mgr-1")
		c.Set(CtxRole, jwt.RoleManager)
		c.Status(http.StatusConflict)
	})
	r.GET("/health", okHandler)

	req := httptest.NewRequest("PUT", "/edits/rec-42", nil)
	req.Header.Set("X-Request-ID", "req-1")
	do(r, req)

	entries := logs.FilterMessage("客户端错误").All()
	if len(entries) != 1 {
		t.Fatalf("409 应记为客户端错误，实际日志: %+v", logs.All())
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/edits/:record_id" || fields["record_id"] != "rec-42" {
		t.Errorf("应按路由模板记录并带出记录 ID: %v", fields)
	}
	if fields["request_id"] != "req-1" || fields["user_id"] != "mgr-1" || fields["role"] != jwt.RoleManager {
		t.Errorf("缺少追踪或身份字段: %v", fields)
	}

	do(r, httptest.NewRequest("GET", "/health", nil))
	health := logs.FilterField(zap.String("route", "/health")).All()
	if len(health) != 1 || health[0].Level != zapcore.DebugLevel {
		t.Errorf("探活请求应只记 debug: %+v", health)
	}
}
