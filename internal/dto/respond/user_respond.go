package respond

import "time"

// UserBriefRespond 用户展示字段
type UserBriefRespond struct {
	UserId     string `json:"userId"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	ProfileImg string `json:"profileImg"`
}

// MentorRespond 可辅导导师列表项
type MentorRespond struct {
	UserBriefRespond
	UserRole    string `json:"userRole"`
	CollegeName string `json:"collegeName"`
	Course      string `json:"course"`
	BatchYear   int    `json:"batchYear"`
}

// MenteeRespond 导师名下的学员，附带导师会话 ID
type MenteeRespond struct {
	UserBriefRespond
	ConversationId string    `json:"conversationId"`
	LastUpdatedAt  time.Time `json:"lastUpdatedAt"`
}

// AssignMentorRespond 分配导师结果
type AssignMentorRespond struct {
	Mentor         UserBriefRespond `json:"mentor"`
	ConversationId string           `json:"conversationId"`
}

// PresenceRespond 在线用户
type PresenceRespond struct {
	Online []string `json:"online"`
}
