package request

// CreateDirectConversationRequest 打开/创建私聊
// 使用位置:
//   - internal/handler/conversation_handler.go: ResolveDirect
type CreateDirectConversationRequest struct {
	OtherUserId string `json:"otherUserId" binding:"required"`
}

// CreateGroupConversationRequest 创建群聊，创建者自动加入并成为管理员
type CreateGroupConversationRequest struct {
	Name      string   `json:"name" binding:"required,max=64"`
	MemberIds []string `json:"memberIds" binding:"required,min=1,dive,required"`
}

// CreateMentorshipConversationRequest 打开/创建导师会话，角色固定
type CreateMentorshipConversationRequest struct {
	MentorId string `json:"mentorId" binding:"required"`
	MenteeId string `json:"menteeId" binding:"required"`
}

// ListConversationsRequest 会话列表，kind 为空时返回全部类型
type ListConversationsRequest struct {
	Kind string `form:"kind" binding:"omitempty,oneof=direct group mentorship"`
}

// SendMessageRequest 发送消息
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
