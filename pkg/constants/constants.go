package constants

import "time"

const (
	CHANNEL_SIZE               = 100  // 广播通道大小
	CONN_SEND_BUFFER           = 128  // 单连接发送缓冲
	WS_READ_LIMIT              = 4096 // 单帧最大字节数
	MESSAGE_MAX_LENGTH         = 2000 // 单条消息最大字符数
	REDIS_TIMEOUT              = 1    // redis timeout (分钟)
	USER_CACHE_TIMEOUT         = 10   // 用户资料缓存 (分钟)
	REFRESH_TOKEN_EXPIRY_HOURS = 168  // Refresh Token 有效期（小时），168小时 = 7天
)

// WebSocket 心跳参数
const (
	WS_WRITE_WAIT  = 10 * time.Second
	WS_PONG_WAIT   = 90 * time.Second
	WS_PING_PERIOD = 30 * time.Second
)

// Redis key 前缀
const (
	USER_INFO_KEY_PREFIX  = "user_info_"
	USER_TOKEN_KEY_PREFIX = "user_token:"
	ONLINE_USERS_KEY      = "online_users"
)
