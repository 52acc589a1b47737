package chat

import (
	"sync"
)

// Subscriber 房间中的一个连接
type Subscriber interface {
	// ID 连接句柄，进程内唯一
	ID() string
	// UserID 连接所属用户
	UserID() string
	// Send 非阻塞投递，连接已关闭或缓冲已满时返回错误
	Send(payload []byte) error
	// Close 关闭连接
	Close()
}

// Hub 维护连接与房间（会话）的对应关系
// 一个用户可以有多个连接，广播以连接为单位
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber            // handle -> subscriber
	rooms       map[string]map[string]Subscriber // conversationId -> handle -> subscriber
	memberships map[string]map[string]struct{}   // handle -> conversationIds
}

// NewHub 创建空 Hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]Subscriber),
		rooms:       make(map[string]map[string]Subscriber),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Attach 登记连接，登记后才能加入房间
func (h *Hub) Attach(sub Subscriber) {
	h.mu.Lock()
	h.subscribers[sub.ID()] = sub
	if h.memberships[sub.ID()] == nil {
		h.memberships[sub.ID()] = make(map[string]struct{})
	}
	h.mu.Unlock()
}

// Detach 移除连接并离开它加入的所有房间
func (h *Hub) Detach(sub Subscriber) {
	h.mu.Lock()
	h.detachLocked(sub.ID())
	h.mu.Unlock()
}

func (h *Hub) detachLocked(handle string) {
	for conversationId := range h.memberships[handle] {
		h.leaveLocked(conversationId, handle)
	}
	delete(h.memberships, handle)
	delete(h.subscribers, handle)
}

// Join 加入房间，重复加入无副作用
// 未 Attach 的连接返回 false
func (h *Hub) Join(conversationId string, sub Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub.ID()]; !ok {
		return false
	}
	room := h.rooms[conversationId]
	if room == nil {
		room = make(map[string]Subscriber)
		h.rooms[conversationId] = room
	}
	room[sub.ID()] = sub
	h.memberships[sub.ID()][conversationId] = struct{}{}
	return true
}

// Leave 离开房间
func (h *Hub) Leave(conversationId string, sub Subscriber) {
	h.mu.Lock()
	h.leaveLocked(conversationId, sub.ID())
	h.mu.Unlock()
}

func (h *Hub) leaveLocked(conversationId, handle string) {
	if room := h.rooms[conversationId]; room != nil {
		delete(room, handle)
		if len(room) == 0 {
			delete(h.rooms, conversationId)
		}
	}
	if m := h.memberships[handle]; m != nil {
		delete(m, conversationId)
	}
}

// Broadcast 向房间内所有连接投递，返回投递成功的连接数
// 在锁外发送，慢连接在 Send 中自行关闭并 Detach 不会死锁
func (h *Hub) Broadcast(conversationId string, payload []byte) int {
	h.mu.RLock()
	room := h.rooms[conversationId]
	targets := make([]Subscriber, 0, len(room))
	for _, sub := range room {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if err := sub.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// RoomSize 房间内连接数
func (h *Hub) RoomSize(conversationId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationId])
}

// Rooms 连接当前加入的房间
func (h *Hub) Rooms(sub Subscriber) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make([]string, 0, len(h.memberships[sub.ID()]))
	for id := range h.memberships[sub.ID()] {
		rooms = append(rooms, id)
	}
	return rooms
}

// Close 关闭所有连接并清空状态
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.subscribers = make(map[string]Subscriber)
	h.rooms = make(map[string]map[string]Subscriber)
	h.memberships = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
