package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由（公开）
func (rt *Router) RegisterAuthRoutes(r *gin.Engine) {
	r.POST("/login", rt.handlers.Auth.Login)

	authGroup := r.Group("/auth")
	{
		// 使用 Refresh Token 换取新的 Access Token
		authGroup.POST("/refresh", rt.handlers.Auth.RefreshToken)
	}
}
