package request

// AssignMentorRequest 学员选择导师
// 使用位置:
//   - internal/handler/mentorship_handler.go: AssignMentor
type AssignMentorRequest struct {
	MentorId string `json:"mentorId" binding:"required"`
}

// PresenceRequest 查询在线状态，userIds 以逗号分隔
type PresenceRequest struct {
	UserIds string `form:"userIds" binding:"required"`
}
