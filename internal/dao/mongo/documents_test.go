package mongo

import (
	"testing"
	"time"

	"campus_chat_server/internal/model"
)

func TestMessageDocKeepsSnowflakeOrder(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	doc, err := newMessageDoc(&model.Message{Uuid: "1790000000000000001", ConversationUuid: "C1", SenderId: "U1", Content: "hi", CreatedAt: now})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID != 1790000000000000001 {
		t.Fatalf("_id=%d", doc.ID)
	}
	if got := doc.model(); got.Uuid != "1790000000000000001" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected message: %+v", got)
	}

	if _, err := newMessageDoc(&model.Message{Uuid: "not-a-number"}); err == nil {
		t.Fatal("non-numeric id accepted")
	}
}

func TestGroupConversationOmitsPairKey(t *testing.T) {
	doc := newConversationDoc(&model.Conversation{
		Uuid: "C1",
		Kind: 1,
		Name: "study group",
		Members: []model.ConversationMember{
			{UserUuid: "U1", Role: 2},
			{UserUuid: "U2", Role: 1},
		},
	})
	if doc.PairKey != nil {
		t.Fatal("group must not carry a pair key")
	}
	c := doc.model()
	if !c.HasMember("U2") || c.Members[0].ConversationUuid != "C1" {
		t.Fatalf("members not restored: %+v", c.Members)
	}
}
