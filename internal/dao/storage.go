// Package dao 按配置选择存储后端，并在启动时导入初始用户
package dao

import (
	"context"
	"fmt"

	"campus_chat_server/internal/config"
	"campus_chat_server/internal/dao/memory"
	daomongo "campus_chat_server/internal/dao/mongo"
	daomysql "campus_chat_server/internal/dao/mysql"
	"campus_chat_server/internal/dao/repository"

	"go.uber.org/zap"
)

// 存储后端
const (
	DriverMysql  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Open 打开配置指定的存储后端，返回的关闭函数在退出时调用
func Open(ctx context.Context, conf *config.Config) (*repository.Repositories, func(context.Context), error) {
	switch conf.StorageConfig.Driver {
	case DriverMongo:
		repos, client, err := daomongo.Init(ctx, &conf.MongoConfig)
		if err != nil {
			return nil, nil, err
		}
		return repos, func(ctx context.Context) { _ = client.Disconnect(ctx) }, nil
	case DriverMemory:
		zap.L().Warn("使用内存存储，重启后数据丢失")
		return memory.NewRepositories(memory.NewStore()), func(context.Context) {}, nil
	case DriverMysql:
		repos, db, err := daomysql.Init(&conf.MysqlConfig)
		if err != nil {
			return nil, nil, err
		}
		return repos, func(context.Context) {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", conf.StorageConfig.Driver)
	}
}
