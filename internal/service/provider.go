// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"campus_chat_server/internal/dao/repository"
	myredis "campus_chat_server/internal/dao/redis"
	"campus_chat_server/internal/service/auth"
	"campus_chat_server/internal/service/chat"
	"campus_chat_server/internal/service/conversation"
	"campus_chat_server/internal/service/mentorship"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Auth         AuthService
	Conversation ConversationService
	Mentorship   MentorshipService
	Presence     PresenceService
}

// NewServices 创建并注入所有 Service 实例
// 会话服务把消息事件发布到 chatServer 的代理，导师服务复用会话服务解析导师会话
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, chatServer *chat.ChatServer) *Services {
	conversationSvc := conversation.NewConversationService(repos, cache, chatServer.Broker)
	return &Services{
		Auth:         auth.NewAuthService(repos, cache),
		Conversation: conversationSvc,
		Mentorship:   mentorship.NewMentorshipService(repos, conversationSvc),
		Presence:     chatServer.Presence,
	}
}
