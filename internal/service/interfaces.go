// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
package service

import (
	"context"

	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/dto/respond"
)

// AuthService 认证业务接口
type AuthService interface {
	// Login 用户名密码登录
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 用 Refresh Token 换新的 Access Token
	RefreshToken(ctx context.Context, refreshToken string) (*respond.RefreshTokenRespond, error)
}

// ConversationService 会话与消息业务接口
type ConversationService interface {
	// ResolveDirect 查找或创建私聊
	ResolveDirect(ctx context.Context, requesterId, otherUserId string) (*respond.ConversationRespond, error)
	// ResolveMentorship 查找或创建导师会话，角色固定
	ResolveMentorship(ctx context.Context, requesterId, mentorId, menteeId string) (*respond.ConversationRespond, error)
	// CreateGroup 创建群聊，创建者为管理员
	CreateGroup(ctx context.Context, creatorId, name string, memberIds []string) (*respond.ConversationRespond, error)
	// AppendMessage 发送消息，落库成功后广播
	AppendMessage(ctx context.Context, conversationId, senderId, content string) (*respond.MessageRespond, error)
	// ListMessages 会话历史消息，时间升序
	ListMessages(ctx context.Context, conversationId, requesterId string) ([]respond.MessageRespond, error)
	// ListConversations 用户参与的会话，最近更新在前
	ListConversations(ctx context.Context, userId, kind string) ([]respond.ConversationSummaryRespond, error)
	// CheckParticipant 校验用户是否为会话成员
	CheckParticipant(ctx context.Context, conversationId, userId string) error
}

// MentorshipService 导师业务接口
type MentorshipService interface {
	// ListAvailableMentors 可选导师列表
	ListAvailableMentors(ctx context.Context, requesterId string) ([]respond.MentorRespond, error)
	// AssignMentor 学员选择导师
	AssignMentor(ctx context.Context, menteeId, mentorId string) (*respond.AssignMentorRespond, error)
	// ListMentees 导师名下的学员
	ListMentees(ctx context.Context, mentorId string) ([]respond.MenteeRespond, error)
}

// PresenceService 在线状态查询接口，chat.PresenceRegistry 实现了它
type PresenceService interface {
	OnlineUsers(ctx context.Context, userIds []string) []string
}
