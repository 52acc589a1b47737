// Package https_server 组装 Gin 引擎：中间件、CORS 和业务路由
package https_server

import (
	"campus_chat_server/internal/config"
	"campus_chat_server/internal/handler"
	"campus_chat_server/internal/infrastructure/logger"
	"campus_chat_server/internal/infrastructure/middleware"
	"campus_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 创建 Gin 引擎并注册中间件和路由
// 不使用 gin.Default()，日志和恢复换成 zap 版本
func Init(conf *config.MainConfig, handlers *handler.Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 处理 SSL 时保持关闭
	if conf != nil && conf.EnableTls {
		engine.Use(middleware.TlsHandler(conf.Host, conf.Port))
	}

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
