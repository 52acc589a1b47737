package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"campus_chat_server/internal/config"
	"campus_chat_server/internal/dao"
	"campus_chat_server/internal/dao/memory"
	myredis "campus_chat_server/internal/dao/redis"
	"campus_chat_server/internal/handler"
	"campus_chat_server/internal/https_server"
	"campus_chat_server/internal/infrastructure/logger"
	"campus_chat_server/internal/service"
	"campus_chat_server/internal/service/chat"
	"campus_chat_server/pkg/util/jwt"
	"campus_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	// 3. 初始化 ID 生成器和 JWT
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 初始化存储
	repos, closeStorage, err := dao.Open(ctx, conf)
	if err != nil {
		zap.L().Fatal("存储初始化失败", zap.String("driver", conf.StorageConfig.Driver), zap.Error(err))
	}
	zap.L().Info("存储初始化成功", zap.String("driver", conf.StorageConfig.Driver))

	if path := conf.StorageConfig.SeedFile; path != "" {
		seeds, err := dao.LoadSeedFile(path)
		if err != nil {
			zap.L().Warn("读取初始用户失败", zap.String("path", path), zap.Error(err))
		} else if n, err := dao.SeedUsers(ctx, repos.User, seeds); err != nil {
			zap.L().Error("导入初始用户失败", zap.Error(err))
		} else {
			zap.L().Info("初始用户导入完成", zap.Int("created", n))
		}
	}

	// 5. 初始化缓存，内存存储时不依赖 Redis
	var cache myredis.AsyncCacheService
	var redisCache *myredis.RedisCache
	if conf.StorageConfig.Driver == dao.DriverMemory {
		cache = memory.NewCache()
	} else {
		client, rc, err := myredis.Init(ctx, &conf.RedisConfig)
		if err != nil {
			zap.L().Fatal("Redis 初始化失败", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		redisCache = rc
		cache = rc
	}
	zap.L().Info("缓存初始化成功")

	// 6. 参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("校验翻译器初始化失败", zap.Error(err))
	}

	// 7. 初始化 ChatServer
	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Mode:  conf.KafkaConfig.MessageMode,
		Kafka: &conf.KafkaConfig,
		Cache: cache,
	})
	zap.L().Info("ChatServer 初始化成功", zap.String("mode", chatServer.Mode()))

	// 8. 依赖注入：Service -> Handler -> Gin
	svcs := service.NewServices(repos, cache, chatServer)
	gateway := chatServer.NewGateway(svcs.Conversation)
	engine := https_server.Init(&conf.MainConfig, handler.NewHandlers(svcs, gateway))

	// 9. 启动服务
	go chatServer.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("HTTP 服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 等待信号
	<-ctx.Done()
	zap.L().Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP 服务关闭失败", zap.Error(err))
	}

	// 连接协程退出时还会提交在线状态任务，必须先等它们结束再关缓存
	chatServer.Close()
	if redisCache != nil {
		redisCache.Close()
	}
	storageCtx, cancelStorage := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStorage()
	closeStorage(storageCtx)

	zap.L().Info("服务器已关闭")
}
