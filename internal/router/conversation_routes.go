package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterConversationRoutes 注册会话与消息路由（需要认证）
func (rt *Router) RegisterConversationRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Conversation
	conversationGroup := rg.Group("/conversations")
	{
		conversationGroup.GET("", h.ListConversations)             // 会话列表
		conversationGroup.POST("/direct", h.ResolveDirect)         // 打开/创建私聊
		conversationGroup.POST("/group", h.CreateGroup)            // 创建群聊
		conversationGroup.POST("/mentorship", h.ResolveMentorship) // 打开/创建导师会话
		conversationGroup.GET("/:id/messages", h.ListMessages)     // 历史消息
		conversationGroup.POST("/:id/messages", h.SendMessage)     // 发送消息
	}
}
