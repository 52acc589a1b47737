package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
[mainConfig]
port = 9001

[storageConfig]
driver = "mongo"

[kafkaConfig]
messageMode = "kafka"
chatTopic = "t1"

[jwtConfig]
secret = "from-file"
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	conf, err := LoadFile(writeSample(t))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if conf.MainConfig.Port != 9001 {
		t.Fatalf("port = %d, want 9001", conf.MainConfig.Port)
	}
	if conf.MainConfig.Host != "0.0.0.0" {
		t.Fatalf("host default not applied: %q", conf.MainConfig.Host)
	}
	if conf.StorageConfig.Driver != "mongo" {
		t.Fatalf("driver = %q", conf.StorageConfig.Driver)
	}
	if conf.KafkaConfig.MessageMode != "kafka" || conf.KafkaConfig.ChatTopic != "t1" {
		t.Fatalf("kafka config = %+v", conf.KafkaConfig)
	}
	if conf.JWTConfig.AccessTokenExpiry != 15 || conf.JWTConfig.RefreshTokenExpiry != 168 {
		t.Fatalf("jwt defaults = %+v", conf.JWTConfig)
	}
}

func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv(EnvJWTSecret, "from-env")
	t.Setenv(EnvStorageDriver, "memory")

	conf, err := LoadFile(writeSample(t))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if conf.JWTConfig.Secret != "from-env" {
		t.Fatalf("secret = %q, want env override", conf.JWTConfig.Secret)
	}
	if conf.StorageConfig.Driver != "memory" {
		t.Fatalf("driver = %q, want env override", conf.StorageConfig.Driver)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
