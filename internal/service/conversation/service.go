// Package conversation 实现会话解析与消息存储
// 私聊、导师会话按规范参与者键查找或创建，群聊每次新建；
// 消息只追加，写入成功后再发布 messageCreated 事件
package conversation

import (
	"context"
	"time"

	"campus_chat_server/internal/dao/repository"
	myredis "campus_chat_server/internal/dao/redis"
	"campus_chat_server/internal/service/chat"
	"campus_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Publisher 消息事件发布者，chat.MessageBroker 实现了它
type Publisher interface {
	Publish(ctx context.Context, event chat.MessageCreatedEvent) error
}

// conversationService 会话业务逻辑实现
type conversationService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService // 用户资料缓存，可为 nil
	publisher Publisher                 // 可为 nil，此时只落库不广播
	now       func() time.Time
}

// NewConversationService 构造函数，注入 Repository、缓存和事件发布者
func NewConversationService(repos *repository.Repositories, cache myredis.AsyncCacheService, publisher Publisher) *conversationService {
	return &conversationService{
		repos:     repos,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

// serverBusy 记录存储层错误并统一返回服务繁忙
func serverBusy(err error, msg string, fields ...zap.Field) error {
	zap.L().Error(msg, append(fields, zap.Error(err))...)
	return errorx.ErrServerBusy
}
