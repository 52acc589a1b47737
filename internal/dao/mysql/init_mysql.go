// Package mysql 提供基于 GORM + MySQL 的 Repository 实现
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"campus_chat_server/internal/config"
	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 构建 DSN 连接字符串
//  2. 使用 GORM 建立数据库连接（开启错误翻译，唯一约束冲突可识别）
//  3. 执行 AutoMigrate 自动迁移表结构
//  4. 创建并返回 Repository 实例
func Init(conf *config.MysqlConfig) (*repository.Repositories, *gorm.DB, error) {
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}

	if err = Migrate(db); err != nil {
		return nil, nil, err
	}

	zap.L().Info("mysql 初始化完成", zap.String("host", conf.Host), zap.String("db", conf.DatabaseName))
	return NewRepositories(db), db, nil
}

// Migrate 自动迁移表结构
// 不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.UserInfo{},           // 用户信息表
		&model.Conversation{},       // 会话表
		&model.ConversationMember{}, // 会话成员表
		&model.Message{},            // 消息表
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
