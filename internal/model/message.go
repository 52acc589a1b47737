// Package model 定义数据库实体模型
// 本文件定义消息模型
package model

import (
	"time"
)

// Message 消息模型，对应 message 表
// 所有会话类型的消息都按行存储并引用会话 uuid，只追加，不修改、不删除
type Message struct {
	ID uint `gorm:"primarykey"`

	// Uuid 雪花 ID 的字符串形式
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(24);not null;comment:消息雪花ID"`

	ConversationUuid string `gorm:"column:conversation_uuid;type:char(20);not null;index:idx_conv_msg;comment:会话uuid"`

	SenderId string `gorm:"column:sender_id;type:char(24);not null;comment:发送者uuid"`

	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// CreatedAt 由服务端在写入前赋值（毫秒精度），gorm 不会覆盖非零值
	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null"`
}

func (Message) TableName() string {
	return "message"
}
