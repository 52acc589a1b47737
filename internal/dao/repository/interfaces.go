// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// mysql / mongo / memory 三种存储后端各自实现这些接口
package repository

import (
	"context"

	"campus_chat_server/internal/model"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户目录访问接口
// 用户资料由外部服务维护，消息子系统只读，Create 仅用于初始化数据
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户，不存在返回 CodeNotFound
	FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户，不存在的 UUID 直接忽略
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error)
	// FindByUsername 根据用户名查找用户（登录）
	FindByUsername(ctx context.Context, username string) (*model.UserInfo, error)
	// FindAvailableMentors 查找愿意提供辅导的正常用户
	FindAvailableMentors(ctx context.Context) ([]model.UserInfo, error)
	// Create 创建用户
	Create(ctx context.Context, user *model.UserInfo) error
}

// ConversationRepository 会话数据访问接口
// 返回的 Conversation 均已加载 Members
type ConversationRepository interface {
	// FindByUuid 根据会话 UUID 查找，不存在返回 CodeNotFound
	FindByUuid(ctx context.Context, uuid string) (*model.Conversation, error)
	// FindByPairKey 根据类型和规范参与者键查找双人会话
	FindByPairKey(ctx context.Context, kind int8, pairKey string) (*model.Conversation, error)
	// Create 原子地创建会话及其成员
	// 与已有会话的 (kind, pair_key) 冲突时返回 CodeConflict
	Create(ctx context.Context, conversation *model.Conversation) error
	// FindByUserId 查找用户参与的会话，kind 为 nil 时不过滤类型，按 updated_at 倒序
	FindByUserId(ctx context.Context, userId string, kind *int8) ([]model.Conversation, error)
}

// MessageRepository 消息数据访问接口
// 消息只追加，不修改、不删除
type MessageRepository interface {
	// Append 写入消息，并在同一原子操作中把会话 updated_at 推进到消息时间
	Append(ctx context.Context, message *model.Message) error
	// FindByConversationId 按写入顺序返回会话全部消息
	// 排序依据存储层的单调 ID（自增主键或雪花 ID），不依赖 created_at
	FindByConversationId(ctx context.Context, conversationUuid string) ([]model.Message, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	User         UserRepository
	Conversation ConversationRepository
	Message      MessageRepository
}
