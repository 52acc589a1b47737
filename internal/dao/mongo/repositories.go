package mongo

import (
	"context"
	"time"

	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/enum/user_info/user_status_enum"
	"campus_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// ==================== 用户 ====================

type userRepository struct {
	coll *mongo.Collection
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D, what string) (*model.UserInfo, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, wrapDBErrorf(err, "查询用户 %s", what)
	}
	u := doc.model()
	return &u, nil
}

func (r *userRepository) FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: uuid}}, "uuid="+uuid)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.UserInfo, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}}, "username="+username)
}

func (r *userRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: uuids}}}}, options.Find())
}

func (r *userRepository) FindAvailableMentors(ctx context.Context) ([]model.UserInfo, error) {
	filter := bson.D{
		{Key: "is_available_for_mentorship", Value: true},
		{Key: "status", Value: user_status_enum.NORMAL},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
}

func (r *userRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]model.UserInfo, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户列表")
	}
	var docs []userDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, wrapDBErrorf(err, "解析用户列表")
	}
	users := make([]model.UserInfo, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.UserInfo) error {
	if err := user.HashRawPassword(); err != nil {
		return errorx.Wrap(err, errorx.CodeDBError, "创建用户")
	}
	now := time.Now().Truncate(time.Millisecond)
	user.CreatedAt, user.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, newUserDoc(user)); err != nil {
		return wrapDBErrorf(err, "创建用户 uuid=%s", user.Uuid)
	}
	return nil
}

// ==================== 会话 ====================

type conversationRepository struct {
	coll *mongo.Collection
}

func (r *conversationRepository) findOne(ctx context.Context, filter bson.D, format string, args ...any) (*model.Conversation, error) {
	var doc conversationDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, wrapDBErrorf(err, format, args...)
	}
	c := doc.model()
	return &c, nil
}

func (r *conversationRepository) FindByUuid(ctx context.Context, uuid string) (*model.Conversation, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: uuid}}, "查询会话 uuid=%s", uuid)
}

func (r *conversationRepository) FindByPairKey(ctx context.Context, kind int8, pairKey string) (*model.Conversation, error) {
	filter := bson.D{{Key: "kind", Value: kind}, {Key: "pair_key", Value: pairKey}}
	return r.findOne(ctx, filter, "查询会话 kind=%d pair_key=%s", kind, pairKey)
}

// Create 单文档插入，idx_kind_pair 冲突时返回 CodeConflict
func (r *conversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	now := time.Now().Truncate(time.Millisecond)
	conversation.CreatedAt, conversation.UpdatedAt = now, now
	for i := range conversation.Members {
		conversation.Members[i].ConversationUuid = conversation.Uuid
	}
	if _, err := r.coll.InsertOne(ctx, newConversationDoc(conversation)); err != nil {
		return wrapDBErrorf(err, "创建会话 uuid=%s", conversation.Uuid)
	}
	return nil
}

func (r *conversationRepository) FindByUserId(ctx context.Context, userId string, kind *int8) ([]model.Conversation, error) {
	filter := bson.D{{Key: "members.user_id", Value: userId}}
	if kind != nil {
		filter = append(filter, bson.E{Key: "kind", Value: *kind})
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户会话 user_id=%s", userId)
	}
	var docs []conversationDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, wrapDBErrorf(err, "解析用户会话 user_id=%s", userId)
	}
	convs := make([]model.Conversation, 0, len(docs))
	for _, d := range docs {
		convs = append(convs, d.model())
	}
	return convs, nil
}

// ==================== 消息 ====================

// messageCollection 消息集合用到的操作，*mongo.Collection 满足
type messageCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
}

// conversationToucher 推进会话时间用到的操作
type conversationToucher interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

type messageRepository struct {
	coll          messageCollection
	conversations conversationToucher
}

// Append 插入消息后用 $max 推进会话 updated_at
// 单机 MongoDB 不支持多文档事务。插入成功即视为写入成功，
// updated_at 推进失败只记录日志，否则调用方会把已落库的消息当成失败重发
func (r *messageRepository) Append(ctx context.Context, message *model.Message) error {
	doc, err := newMessageDoc(message)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeDBError, "消息 ID 非法 uuid=%s", message.Uuid)
	}
	if _, err = r.coll.InsertOne(ctx, doc); err != nil {
		return wrapDBErrorf(err, "写入消息 conversation_id=%s", message.ConversationUuid)
	}

	_, err = r.conversations.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: message.ConversationUuid}},
		bson.D{{Key: "$max", Value: bson.D{{Key: "updated_at", Value: message.CreatedAt}}}},
	)
	if err != nil {
		zap.L().Warn("推进会话时间失败，消息已写入",
			zap.String("conversation_id", message.ConversationUuid),
			zap.String("message_id", message.Uuid),
			zap.Error(err),
		)
	}
	return nil
}

func (r *messageRepository) FindByConversationId(ctx context.Context, conversationUuid string) ([]model.Message, error) {
	// _id 是雪花 ID，按生成顺序递增
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "conversation_id", Value: conversationUuid}}, opts)
	if err != nil {
		return nil, wrapDBErrorf(err, "查询消息 conversation_id=%s", conversationUuid)
	}
	var docs []messageDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, wrapDBErrorf(err, "解析消息 conversation_id=%s", conversationUuid)
	}
	msgs := make([]model.Message, 0, len(docs))
	for _, d := range docs {
		msgs = append(msgs, d.model())
	}
	return msgs, nil
}
