// Package mq 封装 Kafka 底层连接 (Writer/Reader)
// 纯技术组件，不包含聊天业务逻辑
package mq

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"campus_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaClient Kafka 客户端
type KafkaClient struct {
	Producer *kafka.Writer // 生产者：负责写入消息
	Consumer *kafka.Reader // 消费者：负责读取消息
	conf     config.KafkaConfig
}

// NewKafkaClient 创建 Kafka 客户端
// groupID 每个实例唯一，保证每个实例都能收到全量事件
func NewKafkaClient(conf *config.KafkaConfig, groupID string) *KafkaClient {
	return &KafkaClient{
		Producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.ChatTopic,
			Balancer:               &kafka.Hash{}, // 同一 key（会话 ID）落在同一分区，保证会话内有序
			WriteTimeout:           conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
		Consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.ChatTopic,
			CommitInterval: conf.Timeout * time.Second,
			GroupID:        groupID,
			StartOffset:    kafka.LastOffset,
		}),
		conf: *conf,
	}
}

// CreateTopic 创建聊天主题，已存在时 Kafka 不会报错
func (k *KafkaClient) CreateTopic() error {
	conn, err := kafka.Dial("tcp", k.conf.HostPort)
	if err != nil {
		return fmt.Errorf("dial kafka: %w", err)
	}
	defer conn.Close()

	// 创建主题必须连到 controller
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller: %w", err)
	}
	ctrlConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial kafka controller: %w", err)
	}
	defer ctrlConn.Close()

	return ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             k.conf.ChatTopic,
		NumPartitions:     k.conf.Partition,
		ReplicationFactor: 1,
	})
}

// WriteMessage 写入一条消息
func (k *KafkaClient) WriteMessage(ctx context.Context, key, value []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// ReadMessage 阻塞读取下一条消息，消费组模式下自动提交 offset
func (k *KafkaClient) ReadMessage(ctx context.Context) ([]byte, error) {
	msg, err := k.Consumer.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("kafka message",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.ByteString("key", msg.Key),
	)
	return msg.Value, nil
}

// Close 关闭生产者和消费者
func (k *KafkaClient) Close() error {
	var firstErr error
	if err := k.Producer.Close(); err != nil {
		zap.L().Error("关闭 kafka producer 失败", zap.Error(err))
		firstErr = err
	}
	if err := k.Consumer.Close(); err != nil {
		zap.L().Error("关闭 kafka consumer 失败", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
