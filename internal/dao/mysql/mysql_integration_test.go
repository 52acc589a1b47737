//go:build integration

package mysql

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus_chat_server/internal/config"
	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/enum/conversation/conversation_kind_enum"
	"campus_chat_server/pkg/enum/conversation/member_role_enum"
	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/random"
	"campus_chat_server/pkg/util/snowflake"
)

// 需要本地 MySQL，连接信息取自 configs/config.toml
// go test -tags integration ./internal/dao/mysql/...
func setup(t *testing.T) *repository.Repositories {
	t.Helper()
	conf, err := config.LoadConfig()
	if err != nil {
		t.Skipf("配置文件不可用: %v", err)
	}
	repos, _, err := Init(&conf.MysqlConfig)
	if err != nil {
		t.Skipf("mysql 不可用: %v", err)
	}
	return repos
}

func newUser(t *testing.T, repos *repository.Repositories) *model.UserInfo {
	t.Helper()
	u := &model.UserInfo{
		Uuid:        "U" + random.GetNowAndLenRandomString(11),
		Username:    "it_" + random.GetNowAndLenRandomString(8),
		FullName:    "Integration User",
		RawPassword: "123456",
	}
	if err := repos.User.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func directConversation(a, b string) *model.Conversation {
	key := model.DirectPairKey(a, b)
	return &model.Conversation{
		Uuid:    "C" + random.GetNowAndLenRandomString(13),
		Kind:    conversation_kind_enum.Direct,
		PairKey: &key,
		Members: []model.ConversationMember{
			{UserUuid: a, Role: member_role_enum.Member},
			{UserUuid: b, Role: member_role_enum.Member},
		},
	}
}

func TestUserCreateHashesPassword(t *testing.T) {
	repos := setup(t)
	u := newUser(t, repos)

	got, err := repos.User.FindByUsername(context.Background(), u.Username)
	if err != nil {
		t.Fatal(err)
	}
	if !got.CheckPassword("123456") {
		t.Fatal("stored password does not verify")
	}
	if _, err := repos.User.FindByUuid(context.Background(), "U_missing"); !errorx.IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestConversationUniquePair(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	a, b := newUser(t, repos), newUser(t, repos)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repos.Conversation.Create(ctx, directConversation(a.Uuid, b.Uuid))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errorx.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || conflicts != 4 {
		t.Fatalf("created=%d conflicts=%d", created, conflicts)
	}
	conv, err := repos.Conversation.FindByPairKey(ctx, conversation_kind_enum.Direct, model.DirectPairKey(b.Uuid, a.Uuid))
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Members) != 2 {
		t.Fatalf("members not loaded: %+v", conv.Members)
	}
}

func TestMessageAppendOrderAndBump(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	a, b := newUser(t, repos), newUser(t, repos)
	conv := directConversation(a.Uuid, b.Uuid)
	if err := repos.Conversation.Create(ctx, conv); err != nil {
		t.Fatal(err)
	}

	at := time.Now().Add(time.Minute).Truncate(time.Millisecond)
	for i, content := range []string{"first", "second"} {
		msg := &model.Message{
			Uuid:             snowflake.GenerateIDString(),
			ConversationUuid: conv.Uuid,
			SenderId:         []string{a.Uuid, b.Uuid}[i],
			Content:          content,
			CreatedAt:        at,
		}
		if err := repos.Message.Append(ctx, msg); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := repos.Message.FindByConversationId(ctx, conv.Uuid)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Fatalf("unexpected order: %+v", msgs)
	}

	list, err := repos.Conversation.FindByUserId(ctx, a.Uuid, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 || list[0].Uuid != conv.Uuid {
		t.Fatalf("bumped conversation should come first: %+v", list)
	}
	if !list[0].UpdatedAt.Equal(at) {
		t.Fatalf("updated_at=%v want %v", list[0].UpdatedAt, at)
	}
}
