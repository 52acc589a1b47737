//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"campus_chat_server/internal/config"
)

// go test -tags integration ./internal/dao/redis/...
func TestRedisCache(t *testing.T) {
	conf, err := config.LoadConfig()
	if err != nil {
		t.Skipf("配置文件不可用: %v", err)
	}
	ctx := context.Background()
	client, cache, err := Init(ctx, &conf.RedisConfig)
	if err != nil {
		t.Skipf("redis 不可用: %v", err)
	}
	defer client.Close()
	defer cache.Close()

	key := "it_key_" + time.Now().Format("150405.000")
	if err := cache.Set(ctx, key, "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	if v, _ := cache.Get(ctx, key); v != "v" {
		t.Fatalf("get=%q", v)
	}
	_ = client.Del(ctx, key).Err()
	if v, err := cache.Get(ctx, key); err != nil || v != "" {
		t.Fatalf("deleted key = %q, %v", v, err)
	}

	set := key + "_set"
	defer client.Del(ctx, set)
	_ = cache.AddToSet(ctx, set, "U1", "U2")
	if ok, _ := cache.IsSetMember(ctx, set, "U1"); !ok {
		t.Fatal("U1 missing")
	}
	_ = cache.RemoveFromSet(ctx, set, "U1")
	members, _ := cache.GetSetMembers(ctx, set)
	if len(members) != 1 || members[0] != "U2" {
		t.Fatalf("members=%v", members)
	}
}
