package logger

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"campus_chat_server/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestInitWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{LogPath: dir, Level: "debug"}
	if err := Init(cfg, "release"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	zap.L().Info("hello")
	_ = zap.L().Sync()

	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	cfg := &config.LogConfig{LogPath: t.TempDir(), Level: "loud"}
	if err := Init(cfg, "release"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinRecovery(false))
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestIsBrokenPipeError(t *testing.T) {
	opErr := &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}
	if !isBrokenPipeError(opErr) {
		t.Fatal("EPIPE should be detected")
	}
	if isBrokenPipeError(errors.New("other")) {
		t.Fatal("unrelated error detected as broken pipe")
	}
}
