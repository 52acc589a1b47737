package handler

import (
	"strings"

	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// maxPresenceQuery 单次查询的用户数上限
const maxPresenceQuery = 200

// PresenceHandler 在线状态请求处理器
type PresenceHandler struct {
	presenceSvc service.PresenceService
}

// NewPresenceHandler 创建在线状态处理器实例
func NewPresenceHandler(presenceSvc service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceSvc: presenceSvc}
}

// OnlineUsers 过滤出在线的用户
// GET /presence?userIds=a,b,c
func (h *PresenceHandler) OnlineUsers(c *gin.Context) {
	var req request.PresenceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, id := range strings.Split(req.UserIds, ",") {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; id == "" || dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == maxPresenceQuery {
			break
		}
	}
	online := h.presenceSvc.OnlineUsers(c.Request.Context(), ids)
	HandleSuccess(c, respond.PresenceRespond{Online: online})
}
