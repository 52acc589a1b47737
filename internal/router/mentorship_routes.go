package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMentorshipRoutes 注册导师相关路由（需要认证）
func (rt *Router) RegisterMentorshipRoutes(rg *gin.RouterGroup) {
	mentorshipGroup := rg.Group("/mentorship")
	{
		mentorshipGroup.GET("/mentors", rt.handlers.Mentorship.ListMentors)
		mentorshipGroup.POST("/assign", rt.handlers.Mentorship.AssignMentor)
		mentorshipGroup.GET("/mentees", rt.handlers.Mentorship.ListMentees)
	}
}

// RegisterPresenceRoutes 注册在线状态路由（需要认证）
func (rt *Router) RegisterPresenceRoutes(rg *gin.RouterGroup) {
	rg.GET("/presence", rt.handlers.Presence.OnlineUsers)
}
