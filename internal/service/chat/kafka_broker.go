package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// EventLog 分区日志的最小抽象，mq.KafkaClient 实现了它
type EventLog interface {
	WriteMessage(ctx context.Context, key, value []byte) error
	ReadMessage(ctx context.Context) ([]byte, error)
	Close() error
}

// readRetryInterval 读取失败后的重试间隔
const readRetryInterval = time.Second

// KafkaBroker 多实例模式的消息代理
// 事件以会话 ID 为 key 写入 Kafka，同一会话落在同一分区，保证会话内有序；
// 每个实例使用独立的消费组，都能收到全量事件并推送给本机房间
type KafkaBroker struct {
	hub *Hub
	log EventLog

	stop    context.CancelFunc
	stopCtx context.Context
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once
}

// NewKafkaBroker 创建 Kafka 消息代理
func NewKafkaBroker(hub *Hub, log EventLog) *KafkaBroker {
	stopCtx, stop := context.WithCancel(context.Background())
	return &KafkaBroker{
		hub:     hub,
		log:     log,
		stop:    stop,
		stopCtx: stopCtx,
		stopped: make(chan struct{}),
	}
}

// Publish 写入 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, event MessageCreatedEvent) error {
	if b.stopCtx.Err() != nil {
		return ErrBrokerClosed
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.log.WriteMessage(ctx, []byte(event.ConversationId), data)
}

// Start 消费循环
func (b *KafkaBroker) Start(ctx context.Context) {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	defer close(b.stopped)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-b.stopCtx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	zap.L().Info("kafka broker started")
	for {
		data, err := b.log.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			zap.L().Error("读取 kafka 消息失败", zap.Error(err))
			select {
			case <-time.After(readRetryInterval):
				continue
			case <-ctx.Done():
				return
			}
		}

		var ev MessageCreatedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			zap.L().Error("kafka 消息格式错误", zap.Error(err))
			continue
		}
		deliver(b.hub, ev)
	}
}

// Close 停止消费并关闭 Kafka 连接
func (b *KafkaBroker) Close() {
	b.once.Do(func() {
		b.stop()
		if b.started.Load() {
			<-b.stopped
		}
		if err := b.log.Close(); err != nil {
			zap.L().Error("关闭 kafka 失败", zap.Error(err))
		}
	})
}

var _ MessageBroker = (*KafkaBroker)(nil)
