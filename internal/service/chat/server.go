package chat

import (
	"context"
	"sync"
	"time"

	"campus_chat_server/internal/config"
	myredis "campus_chat_server/internal/dao/redis"
	"campus_chat_server/internal/infrastructure/mq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 运行模式
const (
	ModeChannel = "channel"
	ModeKafka   = "kafka"
)

// ChatServer 实时投递层的聚合结构
// 封装 Hub、在线状态和消息代理，统一管理生命周期
type ChatServer struct {
	Hub      *Hub
	Presence *PresenceRegistry
	// Broker 根据配置是 ChannelBroker 或 KafkaBroker
	Broker MessageBroker

	mode string

	mu       sync.Mutex
	gateways []*Gateway
}

// 关闭时等待连接协程退出的上限
const gatewayDrainTimeout = 5 * time.Second

// ChatServerConfig 聊天服务器配置
type ChatServerConfig struct {
	Mode  string              // "channel" 或 "kafka"
	Kafka *config.KafkaConfig // 仅 kafka 模式使用
	Cache myredis.AsyncCacheService
}

// NewChatServer 根据配置选择 ChannelBroker 或 KafkaBroker
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	cs := &ChatServer{
		Hub:  NewHub(),
		mode: cfg.Mode,
	}
	cs.Presence = NewPresenceRegistry(cfg.Cache)

	if cfg.Mode == ModeKafka && cfg.Kafka != nil {
		groupID := cfg.Kafka.GroupPrefix + "_" + uuid.NewString()
		client := mq.NewKafkaClient(cfg.Kafka, groupID)
		if err := client.CreateTopic(); err != nil {
			zap.L().Warn("创建 kafka 主题失败", zap.String("topic", cfg.Kafka.ChatTopic), zap.Error(err))
		}
		cs.Broker = NewKafkaBroker(cs.Hub, client)
	} else {
		cs.mode = ModeChannel
		cs.Broker = NewChannelBroker(cs.Hub)
	}
	return cs
}

// Mode 实际运行模式
func (cs *ChatServer) Mode() string {
	return cs.mode
}

// Start 启动消费循环，阻塞直到 ctx 取消或 Close
func (cs *ChatServer) Start(ctx context.Context) {
	zap.L().Info("chat server starting", zap.String("mode", cs.mode))
	cs.Broker.Start(ctx)
}

// NewGateway 创建挂在本服务上的网关，Close 时会等待它的连接全部退出
func (cs *ChatServer) NewGateway(access ConversationAccess) *Gateway {
	gw := NewGateway(cs.Hub, cs.Presence, access)
	cs.mu.Lock()
	cs.gateways = append(cs.gateways, gw)
	cs.mu.Unlock()
	return gw
}

// Close 先停止代理把剩余事件投递完，再断开所有连接
// 返回时连接的读协程已经完成在线状态清理，调用方随后可以安全关闭缓存
func (cs *ChatServer) Close() {
	cs.mu.Lock()
	gateways := cs.gateways
	cs.mu.Unlock()

	for _, gw := range gateways {
		gw.Close()
	}
	cs.Broker.Close()
	cs.Hub.Close()
	for _, gw := range gateways {
		if !gw.Wait(gatewayDrainTimeout) {
			zap.L().Warn("等待ws连接退出超时", zap.Duration("timeout", gatewayDrainTimeout))
		}
	}
}
