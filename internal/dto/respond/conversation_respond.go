package respond

import "time"

// ParticipantRespond 会话参与者
type ParticipantRespond struct {
	UserBriefRespond
	Role string `json:"role"`
}

// ConversationRespond 会话详情
// 使用位置:
//   - internal/service/conversation/resolver.go: ResolveDirect, ResolveMentorship, CreateGroup
type ConversationRespond struct {
	ConversationId string               `json:"conversationId"`
	Kind           string               `json:"kind"`
	Name           string               `json:"name,omitempty"`
	AdminId        string               `json:"adminId,omitempty"`
	Participants   []ParticipantRespond `json:"participants"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// ConversationSummaryRespond 会话列表项
// 双人会话携带对方信息，群聊携带群名和人数
type ConversationSummaryRespond struct {
	ConversationId   string            `json:"conversationId"`
	Kind             string            `json:"kind"`
	Name             string            `json:"name,omitempty"`
	Role             string            `json:"role"`
	MemberCount      int               `json:"memberCount"`
	OtherParticipant *UserBriefRespond `json:"otherParticipant,omitempty"`
	LastUpdatedAt    time.Time         `json:"lastUpdatedAt"`
}
