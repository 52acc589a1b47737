package mysql

import (
	"context"

	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话 Repository
func NewConversationRepository(db *gorm.DB) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByUuid 按 UUID 查找会话（含成员）
func (r *conversationRepository) FindByUuid(ctx context.Context, uuid string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.WithContext(ctx).Preload("Members").First(&conv, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &conv, nil
}

// FindByPairKey 按 (kind, pair_key) 查找双人会话
func (r *conversationRepository) FindByPairKey(ctx context.Context, kind int8, pairKey string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).Preload("Members").
		First(&conv, "kind = ? AND pair_key = ?", kind, pairKey).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询会话 kind=%d pair_key=%s", kind, pairKey)
	}
	return &conv, nil
}

// Create 在事务中写入会话和成员
// 并发创建同一双人会话时，后到的一方命中 idx_kind_pair 返回 CodeConflict
func (r *conversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(conversation).Error; err != nil {
			return err
		}
		for i := range conversation.Members {
			conversation.Members[i].ConversationUuid = conversation.Uuid
		}
		if len(conversation.Members) == 0 {
			return nil
		}
		return tx.Create(&conversation.Members).Error
	})
	if err != nil {
		return wrapDBErrorf(err, "创建会话 uuid=%s", conversation.Uuid)
	}
	return nil
}

// FindByUserId 查找用户参与的会话，最近活跃在前
func (r *conversationRepository) FindByUserId(ctx context.Context, userId string, kind *int8) ([]model.Conversation, error) {
	query := r.db.WithContext(ctx).Model(&model.Conversation{}).
		Joins("JOIN conversation_member m ON m.conversation_uuid = conversation.uuid AND m.deleted_at IS NULL").
		Where("m.user_uuid = ?", userId)
	if kind != nil {
		query = query.Where("conversation.kind = ?", *kind)
	}

	var convs []model.Conversation
	err := query.Preload("Members").
		Order("conversation.updated_at DESC").
		Order("conversation.id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户会话 user_id=%s", userId)
	}
	return convs, nil
}
