package handler

import (
	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 会话与消息请求处理器
type ConversationHandler struct {
	conversationSvc service.ConversationService
}

// NewConversationHandler 创建会话处理器实例
func NewConversationHandler(conversationSvc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationSvc: conversationSvc}
}

// ResolveDirect 打开/创建私聊
// POST /conversations/direct
// 请求体: request.CreateDirectConversationRequest
// 响应: respond.ConversationRespond
func (h *ConversationHandler) ResolveDirect(c *gin.Context) {
	var req request.CreateDirectConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.ResolveDirect(c.Request.Context(), currentUserID(c), req.OtherUserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CreateGroup 创建群聊
// POST /conversations/group
// 请求体: request.CreateGroupConversationRequest
// 响应: respond.ConversationRespond
func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.CreateGroup(c.Request.Context(), currentUserID(c), req.Name, req.MemberIds)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ResolveMentorship 打开/创建导师会话
// POST /conversations/mentorship
// 请求体: request.CreateMentorshipConversationRequest
func (h *ConversationHandler) ResolveMentorship(c *gin.Context) {
	var req request.CreateMentorshipConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.ResolveMentorship(c.Request.Context(), currentUserID(c), req.MentorId, req.MenteeId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListConversations 当前用户的会话列表
// GET /conversations?kind=direct|group|mentorship
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	var req request.ListConversationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.ListConversations(c.Request.Context(), currentUserID(c), req.Kind)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendMessage 发送消息，落库后广播给房间
// POST /conversations/:id/messages
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.conversationSvc.AppendMessage(c.Request.Context(), c.Param("id"), currentUserID(c), req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMessages 会话历史消息
// GET /conversations/:id/messages
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	data, err := h.conversationSvc.ListMessages(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
