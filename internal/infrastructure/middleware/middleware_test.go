package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwt.Init("middleware-test", 15, 168)
	engine := gin.New()
	engine.GET("/me", JWTAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return engine
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	engine := newEngine()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != errorx.CodeUnauthorized {
		t.Fatalf("code = %d", body.Code)
	}
}

func TestJWTAuthRejectsRefreshToken(t *testing.T) {
	engine := newEngine()
	refresh, _, err := jwt.GenerateRefreshToken("U1")
	if err != nil {
		t.Fatalf("refresh token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthAcceptsHeaderAndQuery(t *testing.T) {
	engine := newEngine()
	access, err := jwt.GenerateAccessToken("U1")
	if err != nil {
		t.Fatalf("access token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "U1" {
		t.Fatalf("header auth: status=%d body=%q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+access, nil))
	if w.Code != http.StatusOK || w.Body.String() != "U1" {
		t.Fatalf("query auth: status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
	engine := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
