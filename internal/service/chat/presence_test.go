package chat

import (
	"context"
	"testing"

	"campus_chat_server/internal/dao/memory"
	"campus_chat_server/pkg/constants"
)

func TestPresenceLastWriterWins(t *testing.T) {
	p := NewPresenceRegistry(nil)
	p.Join("u1", "h1")
	p.Join("u1", "h2")

	if h, _ := p.Lookup("u1"); h != "h2" {
		t.Fatalf("Lookup = %s, want h2", h)
	}

	// 旧连接断开不影响新连接
	if _, removed := p.Disconnect("h1"); removed {
		t.Fatal("disconnecting a stale handle removed the user")
	}
	if !p.IsOnline(context.Background(), "u1") {
		t.Fatal("u1 should stay online")
	}

	user, removed := p.Disconnect("h2")
	if !removed || user != "u1" {
		t.Fatalf("Disconnect = (%s, %v), want (u1, true)", user, removed)
	}
	if p.IsOnline(context.Background(), "u1") {
		t.Fatal("u1 should be offline")
	}
}

func TestPresenceDisconnectUnknownHandle(t *testing.T) {
	p := NewPresenceRegistry(nil)
	if _, removed := p.Disconnect("nope"); removed {
		t.Fatal("unknown handle reported removal")
	}
}

func TestOnlineUsersDropsDuplicates(t *testing.T) {
	ctx := context.Background()
	p := NewPresenceRegistry(nil)
	p.Join("u1", "h1")
	p.Join("u2", "h2")

	// 全部命中本机
	online := p.OnlineUsers(ctx, []string{"u2", "u1", "u2", "u1"})
	if len(online) != 2 || online[0] != "u2" || online[1] != "u1" {
		t.Fatalf("OnlineUsers = %v, want [u2 u1]", online)
	}

	// 走 Redis 镜像的路径结果一致
	cache := memory.NewCache()
	mirrored := NewPresenceRegistry(cache)
	mirrored.Join("u1", "h1")
	_ = cache.AddToSet(ctx, constants.ONLINE_USERS_KEY, "r1", "r2")
	online = mirrored.OnlineUsers(ctx, []string{"u1", "r1", "u1", "r2", "r1"})
	if len(online) != 3 || online[0] != "u1" || online[1] != "r1" || online[2] != "r2" {
		t.Fatalf("OnlineUsers = %v, want [u1 r1 r2]", online)
	}
}

func TestPresenceMirrorsToCache(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCache()
	p := NewPresenceRegistry(cache)

	p.Join("u1", "h1")
	if ok, _ := cache.IsSetMember(ctx, constants.ONLINE_USERS_KEY, "u1"); !ok {
		t.Fatal("u1 not mirrored to online set")
	}

	// 其他实例登记的用户
	_ = cache.AddToSet(ctx, constants.ONLINE_USERS_KEY, "remote")
	online := p.OnlineUsers(ctx, []string{"u1", "remote", "ghost"})
	if len(online) != 2 {
		t.Fatalf("OnlineUsers = %v, want [u1 remote]", online)
	}
	// 只有一个用户需要查镜像，结果仍按入参顺序
	online = p.OnlineUsers(ctx, []string{"remote", "u1"})
	if len(online) != 2 || online[0] != "remote" || online[1] != "u1" {
		t.Fatalf("OnlineUsers = %v, want [remote u1]", online)
	}

	p.Disconnect("h1")
	if ok, _ := cache.IsSetMember(ctx, constants.ONLINE_USERS_KEY, "u1"); ok {
		t.Fatal("u1 still in online set after disconnect")
	}
}
