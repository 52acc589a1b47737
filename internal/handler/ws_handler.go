package handler

import (
	"campus_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 请求处理器
type WsHandler struct {
	gateway *chat.Gateway
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(gateway *chat.Gateway) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect 升级为 WebSocket 连接
// GET /wss?token=xxx
// 用户身份来自鉴权中间件，不再信任客户端传入的 ID
func (h *WsHandler) Connect(c *gin.Context) {
	userId := currentUserID(c)
	if err := h.gateway.Serve(c.Writer, c.Request, userId); err != nil {
		// Upgrade 失败时 gorilla 已经写好了错误响应
		zap.L().Warn("ws升级失败", zap.String("user_id", userId), zap.Error(err))
	}
}
