// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"campus_chat_server/internal/handler"
	"campus_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合，按模块注册路由组
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 登录和刷新是公开接口，其余接口都要经过 JWT 鉴权
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r)

	authed := r.Group("/", middleware.JWTAuth())
	rt.RegisterConversationRoutes(authed)
	rt.RegisterMentorshipRoutes(authed)
	rt.RegisterPresenceRoutes(authed)
	rt.RegisterWebSocketRoutes(authed)
}
