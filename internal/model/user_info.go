// Package model 定义数据库实体模型
// 本文件定义用户资料模型，消息子系统只读取其中的身份与展示字段
package model

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息模型，对应 user_info 表
// 由用户资料服务维护，这里只用于登录校验、参与者校验和展示字段补全
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(24);comment:用户唯一id"`

	Username string `gorm:"column:username;uniqueIndex;type:varchar(32);not null;comment:用户名"`
	FullName string `gorm:"column:full_name;type:varchar(64);not null;comment:姓名"`
	Email    string `gorm:"column:email;type:varchar(64);comment:邮箱"`

	// Password bcrypt 哈希，不存明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	ProfileImg  string `gorm:"column:profile_img;type:varchar(255);comment:头像"`
	CollegeName string `gorm:"column:college_name;type:varchar(100);comment:学校"`
	Course      string `gorm:"column:course;type:varchar(100);comment:专业"`
	BatchYear   int    `gorm:"column:batch_year;comment:入学年份"`

	// UserRole Student / Senior / Alumni，见 user_role_enum
	UserRole string `gorm:"column:user_role;type:varchar(16);not null;default:Student;comment:身份"`

	// IsAvailableForMentorship 是否接受辅导请求
	IsAvailableForMentorship bool `gorm:"column:is_available_for_mentorship;index;not null;default:false;comment:是否提供辅导"`

	// Status 0=正常, 1=禁用
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.正常，1.禁用"`

	// RawPassword 明文密码，只用于写入前加密
	RawPassword string `gorm:"-" json:"-"`
}

func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave 写入前把 RawPassword 加密到 Password
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	return u.HashRawPassword()
}

// HashRawPassword 将明文密码加密，非 gorm 的存储后端写入前手动调用
func (u *UserInfo) HashRawPassword() error {
	if u.RawPassword == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	u.RawPassword = ""
	return nil
}

// CheckPassword 校验登录密码
func (u *UserInfo) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}
