package mysql

import (
	"context"

	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

// Append 写入消息并推进会话 updated_at
// updated_at 只前进不后退，乱序提交的事务不会把会话时间拨回去
func (r *messageRepository) Append(ctx context.Context, message *model.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("uuid = ? AND updated_at < ?", message.ConversationUuid, message.CreatedAt).
			UpdateColumn("updated_at", message.CreatedAt).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "写入消息 conversation_uuid=%s", message.ConversationUuid)
	}
	return nil
}

// FindByConversationId 按会话查找消息，按自增主键即写入顺序
// created_at 只用于展示，不参与排序
func (r *messageRepository) FindByConversationId(ctx context.Context, conversationUuid string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_uuid = ?", conversationUuid).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询消息 conversation_uuid=%s", conversationUuid)
	}
	return messages, nil
}
