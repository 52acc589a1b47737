// Package mongo 提供基于 MongoDB 的 Repository 实现
// 会话成员内嵌在会话文档中，单文档写入即可保证会话与成员原子落库
package mongo

import (
	"context"
	"fmt"
	"time"

	"campus_chat_server/internal/config"
	"campus_chat_server/internal/dao/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection         = "users"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

// Init 连接 MongoDB、建立索引并返回 Repository 实例
// 返回的 client 由调用方在退出时 Disconnect
func Init(ctx context.Context, conf *config.MongoConfig) (*repository.Repositories, *mongo.Client, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(conf.Uri).
		SetConnectTimeout(conf.Timeout * time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, conf.Timeout*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(conf.Database)
	if err = EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	zap.L().Info("mongo 初始化完成", zap.String("database", conf.Database))
	return NewRepositories(db), client, nil
}

// EnsureIndexes 创建集合索引，重复执行无副作用
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "is_available_for_mentorship", Value: 1}, {Key: "status", Value: 1}}},
		},
		conversationsCollection: {
			// 只约束双人会话，群聊没有 pair_key
			{
				Keys: bson.D{{Key: "kind", Value: 1}, {Key: "pair_key", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("idx_kind_pair").
					SetPartialFilterExpression(bson.D{{Key: "pair_key", Value: bson.D{{Key: "$exists", Value: true}}}}),
			},
			{Keys: bson.D{{Key: "members.user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "_id", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
	}
	return nil
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *mongo.Database) *repository.Repositories {
	return &repository.Repositories{
		User:         &userRepository{coll: db.Collection(usersCollection)},
		Conversation: &conversationRepository{coll: db.Collection(conversationsCollection)},
		Message: &messageRepository{
			coll:          db.Collection(messagesCollection),
			conversations: db.Collection(conversationsCollection),
		},
	}
}
