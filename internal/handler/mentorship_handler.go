package handler

import (
	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MentorshipHandler 导师请求处理器
type MentorshipHandler struct {
	mentorshipSvc service.MentorshipService
}

// NewMentorshipHandler 创建导师处理器实例
func NewMentorshipHandler(mentorshipSvc service.MentorshipService) *MentorshipHandler {
	return &MentorshipHandler{mentorshipSvc: mentorshipSvc}
}

// ListMentors GET /mentorship/mentors
func (h *MentorshipHandler) ListMentors(c *gin.Context) {
	data, err := h.mentorshipSvc.ListAvailableMentors(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AssignMentor 当前用户作为学员选择导师
// POST /mentorship/assign
// 请求体: request.AssignMentorRequest
func (h *MentorshipHandler) AssignMentor(c *gin.Context) {
	var req request.AssignMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.mentorshipSvc.AssignMentor(c.Request.Context(), currentUserID(c), req.MentorId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMentees GET /mentorship/mentees
func (h *MentorshipHandler) ListMentees(c *gin.Context) {
	data, err := h.mentorshipSvc.ListMentees(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
