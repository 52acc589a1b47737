// Package memory 提供进程内的 Repository 实现
// 用于单元测试和本地开发（storageConfig.driver = "memory"），数据不落盘
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/enum/user_info/user_status_enum"
	"campus_chat_server/pkg/errorx"
)

// Store 三类数据共用一把锁，保证会话创建和消息追加的原子性
type Store struct {
	mu sync.RWMutex

	users         map[string]model.UserInfo
	conversations map[string]*model.Conversation
	pairIndex     map[pairKey]string // (kind, pair_key) -> conversation uuid
	messages      map[string][]model.Message
	nextID        uint

	// FailAppend 非 nil 时 Append 直接返回该错误，用于模拟存储故障
	FailAppend error
}

type pairKey struct {
	kind int8
	key  string
}

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{
		users:         make(map[string]model.UserInfo),
		conversations: make(map[string]*model.Conversation),
		pairIndex:     make(map[pairKey]string),
		messages:      make(map[string][]model.Message),
	}
}

// NewRepositories 以同一个 Store 构造全部 Repository
func NewRepositories(s *Store) *repository.Repositories {
	return &repository.Repositories{
		User:         userRepository{s},
		Conversation: conversationRepository{s},
		Message:      messageRepository{s},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// cloneConversation 返回深拷贝，调用方修改不影响存储
func cloneConversation(c *model.Conversation) *model.Conversation {
	cp := *c
	cp.Members = append([]model.ConversationMember(nil), c.Members...)
	if c.PairKey != nil {
		key := *c.PairKey
		cp.PairKey = &key
	}
	return &cp
}

// ==================== 用户 ====================

type userRepository struct{ s *Store }

func (r userRepository) FindByUuid(_ context.Context, uuid string) (*model.UserInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[uuid]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询用户 uuid=%s", uuid)
	}
	return &u, nil
}

func (r userRepository) FindByUuids(_ context.Context, uuids []string) ([]model.UserInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var users []model.UserInfo
	for _, id := range uuids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r userRepository) FindByUsername(_ context.Context, username string) (*model.UserInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errorx.Newf(errorx.CodeNotFound, "查询用户 username=%s", username)
}

func (r userRepository) FindAvailableMentors(_ context.Context) ([]model.UserInfo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var users []model.UserInfo
	for _, u := range r.s.users {
		if u.IsAvailableForMentorship && u.Status == user_status_enum.NORMAL {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r userRepository) Create(_ context.Context, user *model.UserInfo) error {
	if err := user.HashRawPassword(); err != nil {
		return errorx.Wrap(err, errorx.CodeDBError, "创建用户")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.Uuid]; ok {
		return errorx.Newf(errorx.CodeConflict, "用户已存在 uuid=%s", user.Uuid)
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return errorx.Newf(errorx.CodeConflict, "用户名已存在 username=%s", user.Username)
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.Uuid] = *user
	return nil
}

// ==================== 会话 ====================

type conversationRepository struct{ s *Store }

func (r conversationRepository) FindByUuid(_ context.Context, uuid string) (*model.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.conversations[uuid]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询会话 uuid=%s", uuid)
	}
	return cloneConversation(c), nil
}

func (r conversationRepository) FindByPairKey(_ context.Context, kind int8, key string) (*model.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	uuid, ok := r.s.pairIndex[pairKey{kind, key}]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "查询会话 kind=%d pair_key=%s", kind, key)
	}
	return cloneConversation(r.s.conversations[uuid]), nil
}

func (r conversationRepository) Create(_ context.Context, conversation *model.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.conversations[conversation.Uuid]; ok {
		return errorx.Newf(errorx.CodeConflict, "会话已存在 uuid=%s", conversation.Uuid)
	}
	if conversation.PairKey != nil {
		pk := pairKey{conversation.Kind, *conversation.PairKey}
		if _, ok := r.s.pairIndex[pk]; ok {
			return errorx.Newf(errorx.CodeConflict, "会话已存在 kind=%d pair_key=%s", pk.kind, pk.key)
		}
		r.s.pairIndex[pk] = conversation.Uuid
	}

	now := time.Now()
	conversation.ID = r.s.id()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	for i := range conversation.Members {
		conversation.Members[i].ID = r.s.id()
		conversation.Members[i].ConversationUuid = conversation.Uuid
		conversation.Members[i].CreatedAt = now
		conversation.Members[i].UpdatedAt = now
	}
	r.s.conversations[conversation.Uuid] = cloneConversation(conversation)
	return nil
}

func (r conversationRepository) FindByUserId(_ context.Context, userId string, kind *int8) ([]model.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var convs []model.Conversation
	for _, c := range r.s.conversations {
		if kind != nil && c.Kind != *kind {
			continue
		}
		if c.HasMember(userId) {
			convs = append(convs, *cloneConversation(c))
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
		}
		return convs[i].ID > convs[j].ID
	})
	return convs, nil
}

// ==================== 消息 ====================

type messageRepository struct{ s *Store }

func (r messageRepository) Append(_ context.Context, message *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAppend != nil {
		return errorx.Wrap(r.s.FailAppend, errorx.CodeDBError, "写入消息")
	}
	conv, ok := r.s.conversations[message.ConversationUuid]
	if !ok {
		return errorx.Newf(errorx.CodeNotFound, "查询会话 uuid=%s", message.ConversationUuid)
	}
	message.ID = r.s.id()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.s.messages[message.ConversationUuid] = append(r.s.messages[message.ConversationUuid], *message)
	if conv.UpdatedAt.Before(message.CreatedAt) {
		conv.UpdatedAt = message.CreatedAt
	}
	return nil
}

func (r messageRepository) FindByConversationId(_ context.Context, conversationUuid string) ([]model.Message, error) {
	r.s.mu.RLock()
	msgs := append([]model.Message(nil), r.s.messages[conversationUuid]...)
	r.s.mu.RUnlock()

	// 切片按写入顺序追加，即 ID 顺序
	return msgs, nil
}

// MessageCount 会话消息条数，测试用
func (s *Store) MessageCount(conversationUuid string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[conversationUuid])
}

// ConversationCount 会话总数，测试用
func (s *Store) ConversationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
