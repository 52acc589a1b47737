// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感项可由环境变量 / .env 覆盖
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// MainConfig 主配置
type MainConfig struct {
	AppName   string `toml:"appName"`   // 应用名称
	Host      string `toml:"host"`      // 监听地址，如 "0.0.0.0"
	Port      int    `toml:"port"`      // 监听端口，如 8000
	EnableTls bool   `toml:"enableTls"` // 是否开启 HTTP -> HTTPS 重定向
}

// StorageConfig 消息存储后端选择
type StorageConfig struct {
	Driver   string `toml:"driver"`   // "mysql" | "mongo" | "memory"
	SeedFile string `toml:"seedFile"` // 启动时导入的初始用户，为空则跳过
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// MongoConfig MongoDB 连接配置
type MongoConfig struct {
	Uri      string        `toml:"uri"`      // 如 mongodb://localhost:27017
	Database string        `toml:"database"` // 数据库名
	Timeout  time.Duration `toml:"timeout"`  // 连接超时（秒）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // debug, info, warn, error
}

// KafkaConfig Kafka 消息队列配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel"（单机）或 "kafka"（多实例广播）
	HostPort    string        `toml:"hostPort"`    // 如 "localhost:9092"
	ChatTopic   string        `toml:"chatTopic"`   // messageCreated 事件主题
	Partition   int           `toml:"partition"`   // 主题分区数，按会话 ID 哈希分区
	GroupPrefix string        `toml:"groupPrefix"` // 消费组前缀，每个实例追加自己的实例 ID
	Timeout     time.Duration `toml:"timeout"`     // 超时时间（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // 签名密钥
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 节点 ID，范围 0-1023
}

// Config 应用程序总配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	StorageConfig   `toml:"storageConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	MongoConfig     `toml:"mongoConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
}

// 环境变量覆盖项
const (
	EnvJWTSecret     = "CAMPUS_JWT_SECRET"
	EnvMysqlPassword = "CAMPUS_MYSQL_PASSWORD"
	EnvMongoUri      = "CAMPUS_MONGO_URI"
	EnvRedisPassword = "CAMPUS_REDIS_PASSWORD"
	EnvStorageDriver = "CAMPUS_STORAGE_DRIVER"
)

var (
	config     *Config
	configOnce sync.Once
)

// searchPaths 候选配置文件路径，本地配置优先
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// LoadConfig 依次尝试候选路径，找到第一个可用的配置文件即停止
func LoadConfig() (*Config, error) {
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	conf := new(Config)
	applyEnv(conf)
	applyDefaults(conf)
	return conf, fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFile 从指定路径加载配置，并叠加 .env / 环境变量和默认值
func LoadFile(path string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyEnv(conf)
	applyDefaults(conf)
	return conf, nil
}

// GetConfig 获取全局配置实例（单例）
// 首次调用时加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	configOnce.Do(func() {
		config, _ = LoadConfig()
	})
	return config
}

// applyEnv 先加载可选的 .env 文件，再用环境变量覆盖敏感项
func applyEnv(conf *Config) {
	_ = godotenv.Load()
	if v := os.Getenv(EnvJWTSecret); v != "" {
		conf.JWTConfig.Secret = v
	}
	if v := os.Getenv(EnvMysqlPassword); v != "" {
		conf.MysqlConfig.Password = v
	}
	if v := os.Getenv(EnvMongoUri); v != "" {
		conf.MongoConfig.Uri = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		conf.RedisConfig.Password = v
	}
	if v := os.Getenv(EnvStorageDriver); v != "" {
		conf.StorageConfig.Driver = v
	}
}

func applyDefaults(conf *Config) {
	if conf.MainConfig.AppName == "" {
		conf.MainConfig.AppName = "campus_chat_server"
	}
	if conf.MainConfig.Host == "" {
		conf.MainConfig.Host = "0.0.0.0"
	}
	if conf.MainConfig.Port == 0 {
		conf.MainConfig.Port = 8000
	}
	if conf.StorageConfig.Driver == "" {
		conf.StorageConfig.Driver = "mysql"
	}
	if conf.MongoConfig.Database == "" {
		conf.MongoConfig.Database = "campus_chat"
	}
	if conf.MongoConfig.Timeout == 0 {
		conf.MongoConfig.Timeout = 10
	}
	if conf.KafkaConfig.MessageMode == "" {
		conf.KafkaConfig.MessageMode = "channel"
	}
	if conf.KafkaConfig.ChatTopic == "" {
		conf.KafkaConfig.ChatTopic = "campus_chat_message"
	}
	if conf.KafkaConfig.Partition == 0 {
		conf.KafkaConfig.Partition = 3
	}
	if conf.KafkaConfig.GroupPrefix == "" {
		conf.KafkaConfig.GroupPrefix = "campus_chat"
	}
	if conf.KafkaConfig.Timeout == 0 {
		conf.KafkaConfig.Timeout = 1
	}
	if conf.JWTConfig.AccessTokenExpiry == 0 {
		conf.JWTConfig.AccessTokenExpiry = 15
	}
	if conf.JWTConfig.RefreshTokenExpiry == 0 {
		conf.JWTConfig.RefreshTokenExpiry = 168
	}
	if conf.LogConfig.LogPath == "" {
		conf.LogConfig.LogPath = "./logs"
	}
}
