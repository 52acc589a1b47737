// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数，通过构造函数注入 Service 依赖
package handler

import (
	"campus_chat_server/internal/service"
	"campus_chat_server/internal/service/chat"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth         *AuthHandler
	Conversation *ConversationHandler
	Mentorship   *MentorshipHandler
	Presence     *PresenceHandler
	Ws           *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, gateway *chat.Gateway) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		Conversation: NewConversationHandler(svc.Conversation),
		Mentorship:   NewMentorshipHandler(svc.Mentorship),
		Presence:     NewPresenceHandler(svc.Presence),
		Ws:           NewWsHandler(gateway),
	}
}
