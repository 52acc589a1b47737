package chat

import (
	"context"
	"sync"

	myredis "campus_chat_server/internal/dao/redis"
	"campus_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// PresenceRegistry 记录每个用户当前由哪个连接代表
// 进程内状态，重启即清空；可选把在线用户同步到 Redis 集合供其他实例查询
type PresenceRegistry struct {
	mu       sync.RWMutex
	byUser   map[string]string // userId -> handle
	byHandle map[string]string // handle -> userId

	cache myredis.AsyncCacheService // 为 nil 时只做进程内记录
}

// NewPresenceRegistry cache 可为 nil
func NewPresenceRegistry(cache myredis.AsyncCacheService) *PresenceRegistry {
	return &PresenceRegistry{
		byUser:   make(map[string]string),
		byHandle: make(map[string]string),
		cache:    cache,
	}
}

// Join 后来者覆盖
func (p *PresenceRegistry) Join(userId, handle string) {
	p.mu.Lock()
	p.byUser[userId] = handle
	p.byHandle[handle] = userId
	p.mu.Unlock()
	p.mirror(userId)
}

// Disconnect 只有当用户的当前连接就是 handle 时才移除用户
// 返回被移除的用户 ID
func (p *PresenceRegistry) Disconnect(handle string) (string, bool) {
	p.mu.Lock()
	userId, ok := p.byHandle[handle]
	if !ok {
		p.mu.Unlock()
		return "", false
	}
	delete(p.byHandle, handle)
	removed := p.byUser[userId] == handle
	if removed {
		delete(p.byUser, userId)
	}
	p.mu.Unlock()

	if removed {
		p.mirror(userId)
	}
	return userId, removed
}

// Lookup 返回用户当前连接句柄
func (p *PresenceRegistry) Lookup(userId string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	handle, ok := p.byUser[userId]
	return handle, ok
}

// IsOnline 本机没有时再查 Redis 镜像
func (p *PresenceRegistry) IsOnline(ctx context.Context, userId string) bool {
	if _, ok := p.Lookup(userId); ok {
		return true
	}
	if p.cache == nil {
		return false
	}
	ok, err := p.cache.IsSetMember(ctx, constants.ONLINE_USERS_KEY, userId)
	if err != nil {
		zap.L().Warn("查询在线状态失败", zap.String("user_id", userId), zap.Error(err))
		return false
	}
	return ok
}

// OnlineUsers 过滤出在线的用户，保持入参顺序，重复的 ID 只返回一次
// 本机查不到的用户超过一个时，一次性读取 Redis 镜像
func (p *PresenceRegistry) OnlineUsers(ctx context.Context, userIds []string) []string {
	online := make([]string, 0, len(userIds))
	pending := make([]string, 0)
	for _, id := range userIds {
		if _, ok := p.Lookup(id); ok {
			online = append(online, id)
		} else {
			pending = append(pending, id)
		}
	}
	if p.cache == nil || len(pending) == 0 {
		return p.inOrder(userIds, online)
	}
	if len(pending) == 1 {
		if p.IsOnline(ctx, pending[0]) {
			online = append(online, pending[0])
		}
		return p.inOrder(userIds, online)
	}

	members, err := p.cache.GetSetMembers(ctx, constants.ONLINE_USERS_KEY)
	if err != nil {
		zap.L().Warn("读取在线用户集合失败", zap.Error(err))
		return p.inOrder(userIds, online)
	}
	mirrored := make(map[string]struct{}, len(members))
	for _, m := range members {
		mirrored[m] = struct{}{}
	}
	for _, id := range pending {
		if _, ok := mirrored[id]; ok {
			online = append(online, id)
		}
	}
	return p.inOrder(userIds, online)
}

// inOrder 按 userIds 的顺序重排结果
func (p *PresenceRegistry) inOrder(userIds, online []string) []string {
	hit := make(map[string]struct{}, len(online))
	for _, id := range online {
		hit[id] = struct{}{}
	}
	ordered := make([]string, 0, len(online))
	for _, id := range userIds {
		if _, ok := hit[id]; ok {
			ordered = append(ordered, id)
			delete(hit, id)
		}
	}
	return ordered
}

// mirror 异步同步 Redis 集合
// 任务执行时读取最新状态，worker 乱序执行也不会写入过期结果
func (p *PresenceRegistry) mirror(userId string) {
	if p.cache == nil {
		return
	}
	p.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.WS_WRITE_WAIT)
		defer cancel()

		var err error
		if _, ok := p.Lookup(userId); ok {
			err = p.cache.AddToSet(ctx, constants.ONLINE_USERS_KEY, userId)
		} else {
			err = p.cache.RemoveFromSet(ctx, constants.ONLINE_USERS_KEY, userId)
		}
		if err != nil {
			zap.L().Warn("同步在线状态失败", zap.String("user_id", userId), zap.Error(err))
		}
	})
}
