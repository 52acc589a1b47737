package chat

import (
	"context"
	"errors"
)

// ErrBrokerClosed 代理已关闭
var ErrBrokerClosed = errors.New("message broker closed")

// MessageBroker 定义消息代理接口
// 支持两种实现：ChannelBroker (单机), KafkaBroker (多实例)
type MessageBroker interface {
	// Publish 发布 messageCreated 事件
	Publish(ctx context.Context, event MessageCreatedEvent) error
	// Start 启动消费循环，阻塞直到 ctx 取消或 Close
	Start(ctx context.Context)
	// Close 关闭代理资源
	Close()
}
