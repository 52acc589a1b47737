// Package model 定义数据库实体模型
// 本文件定义会话与会话成员
package model

import (
	"gorm.io/gorm"
)

// Conversation 会话模型，对应 conversation 表
// 私聊、群聊、导师会话共用一张表，Kind 区分
type Conversation struct {
	gorm.Model

	// Uuid 会话唯一标识，格式 C + 日期 + 随机串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:会话uuid"`

	// Kind 0=私聊, 1=群聊, 2=导师会话，见 conversation_kind_enum
	Kind int8 `gorm:"column:kind;not null;uniqueIndex:idx_kind_pair,priority:1;comment:会话类型"`

	// PairKey 双人会话的规范键，群聊为 NULL
	// 与 Kind 组成唯一索引，保证同一对用户只有一个私聊 / 导师会话
	PairKey *string `gorm:"column:pair_key;type:varchar(100);uniqueIndex:idx_kind_pair,priority:2;comment:规范参与者键"`

	// Name 群名，双人会话为空
	Name string `gorm:"column:name;type:varchar(64);comment:群名称"`

	// AdminId 群管理员（创建者）
	AdminId string `gorm:"column:admin_id;type:char(24);comment:群管理员uuid"`

	Members []ConversationMember `gorm:"foreignKey:ConversationUuid;references:Uuid"`
}

func (Conversation) TableName() string {
	return "conversation"
}

// HasMember 判断用户是否为会话成员
func (c *Conversation) HasMember(userId string) bool {
	return c.Member(userId) != nil
}

// Member 返回用户在会话中的成员记录，不存在返回 nil
func (c *Conversation) Member(userId string) *ConversationMember {
	for i := range c.Members {
		if c.Members[i].UserUuid == userId {
			return &c.Members[i]
		}
	}
	return nil
}

// ConversationMember 会话成员，对应 conversation_member 表
type ConversationMember struct {
	gorm.Model

	ConversationUuid string `gorm:"column:conversation_uuid;type:char(20);not null;uniqueIndex:idx_conv_user,priority:1;comment:会话uuid"`
	UserUuid         string `gorm:"column:user_uuid;type:char(24);not null;uniqueIndex:idx_conv_user,priority:2;index;comment:用户uuid"`

	// Role 1=成员, 2=管理员, 3=导师, 4=学员，见 member_role_enum
	Role int8 `gorm:"column:role;not null;comment:成员角色"`
}

func (ConversationMember) TableName() string {
	return "conversation_member"
}

// DirectPairKey 私聊规范键，与参数顺序无关
func DirectPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// MentorshipPairKey 导师会话规范键，角色固定，互换角色得到不同的键
func MentorshipPairKey(mentorId, menteeId string) string {
	return mentorId + ">" + menteeId
}
