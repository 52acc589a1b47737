package mysql

import (
	"context"

	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/enum/user_info/user_status_enum"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按 UUID 查找用户
func (r *userRepository) FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByUuids 按 UUID 列表查找用户
func (r *userRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var users []model.UserInfo
	if err := r.db.WithContext(ctx).Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// FindByUsername 按用户名查找用户
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// FindAvailableMentors 查找可辅导的用户
func (r *userRepository) FindAvailableMentors(ctx context.Context) ([]model.UserInfo, error) {
	var users []model.UserInfo
	err := r.db.WithContext(ctx).
		Where("is_available_for_mentorship = ? AND status = ?", true, user_status_enum.NORMAL).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, wrapDBError(err, "查询导师列表")
	}
	return users, nil
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.UserInfo) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}
