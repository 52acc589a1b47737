package chat

import (
	"context"
	"sync"
	"sync/atomic"

	"campus_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// ChannelBroker 单机模式的消息代理
// 一个消费循环串行处理转发通道，同一房间的投递顺序与发布顺序一致
type ChannelBroker struct {
	hub *Hub
	// Transmit 消息转发通道
	Transmit chan MessageCreatedEvent

	done    chan struct{}
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once
}

// NewChannelBroker 创建单机消息代理
func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{
		hub:      hub,
		Transmit: make(chan MessageCreatedEvent, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Publish 放入转发通道，通道满时阻塞直到 ctx 取消
func (b *ChannelBroker) Publish(ctx context.Context, event MessageCreatedEvent) error {
	select {
	case <-b.done:
		return ErrBrokerClosed
	default:
	}

	select {
	case b.Transmit <- event:
		return nil
	case <-b.done:
		return ErrBrokerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start 消费循环
// 关闭时把通道中剩余的事件投递完再退出
func (b *ChannelBroker) Start(ctx context.Context) {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	defer close(b.stopped)
	zap.L().Info("channel broker started")

	for {
		select {
		case ev := <-b.Transmit:
			deliver(b.hub, ev)
		case <-ctx.Done():
			return
		case <-b.done:
			for {
				select {
				case ev := <-b.Transmit:
					deliver(b.hub, ev)
				default:
					return
				}
			}
		}
	}
}

// Close 停止消费循环
func (b *ChannelBroker) Close() {
	b.once.Do(func() {
		close(b.done)
		if b.started.Load() {
			<-b.stopped
		}
	})
}

var _ MessageBroker = (*ChannelBroker)(nil)
