package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/pkg/errorx"

	"github.com/gorilla/websocket"
)

// fakeAccess 会话 c1 的成员是 u1 和 u2，追加的消息直接发布到代理
type fakeAccess struct {
	broker MessageBroker

	mu  sync.Mutex
	seq int
}

func (a *fakeAccess) CheckParticipant(_ context.Context, conversationId, userId string) error {
	if conversationId != "c1" {
		return errorx.New(errorx.CodeNotFound, "会话不存在")
	}
	if userId != "u1" && userId != "u2" {
		return errorx.ErrForbidden
	}
	return nil
}

func (a *fakeAccess) AppendMessage(ctx context.Context, conversationId, senderId, content string) (*respond.MessageRespond, error) {
	if err := a.CheckParticipant(ctx, conversationId, senderId); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.seq++
	id := string(rune('0' + a.seq))
	a.mu.Unlock()

	msg := respond.MessageRespond{MessageId: id, ConversationId: conversationId, SenderId: senderId, Content: content}
	_ = a.broker.Publish(ctx, MessageCreatedEvent{ConversationId: conversationId, Message: msg})
	return &msg, nil
}

func newTestGateway(t *testing.T) (*ChatServer, *httptest.Server) {
	t.Helper()
	cs := NewChatServer(ChatServerConfig{Mode: ModeChannel})
	go cs.Start(context.Background())

	gw := cs.NewGateway(&fakeAccess{broker: cs.Broker})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := gw.Serve(w, r, r.URL.Query().Get("uid")); err != nil {
			t.Logf("serve: %v", err)
		}
	}))
	t.Cleanup(func() {
		srv.Close()
		cs.Close()
	})
	return cs, srv
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?uid=" + uid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) respond.ChatFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f respond.ChatFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestGatewayJoinAndDeliver(t *testing.T) {
	cs, srv := newTestGateway(t)
	alice := dial(t, srv, "u1")
	bob := dial(t, srv, "u2")

	for _, c := range []*websocket.Conn{alice, bob} {
		if err := c.WriteJSON(request.ChatFrame{Event: EventJoin, ConversationId: "c1"}); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool { return cs.Hub.RoomSize("c1") == 2 })

	if !cs.Presence.IsOnline(context.Background(), "u1") {
		t.Fatal("u1 should be online after connecting")
	}

	_ = alice.WriteJSON(request.ChatFrame{Event: EventSendMessage, ConversationId: "c1", Content: "hi", ClientMsgId: "tmp-1"})

	// 发送方收到 messageSent 和 messageCreated，顺序不定
	seen := map[string]respond.ChatFrame{}
	for i := 0; i < 2; i++ {
		f := readFrame(t, alice)
		seen[f.Event] = f
	}
	if seen[EventMessageSent].ClientMsgId != "tmp-1" {
		t.Fatalf("messageSent = %+v, want clientMsgId tmp-1", seen[EventMessageSent])
	}
	if seen[EventMessageCreated].Message == nil {
		t.Fatal("sender did not receive messageCreated")
	}

	got := readFrame(t, bob)
	if got.Event != EventMessageCreated || got.Message.Content != "hi" || got.Message.SenderId != "u1" {
		t.Fatalf("bob received %+v", got)
	}
}

func TestGatewayRejectsNonParticipant(t *testing.T) {
	cs, srv := newTestGateway(t)
	eve := dial(t, srv, "u9")

	_ = eve.WriteJSON(request.ChatFrame{Event: EventJoin, ConversationId: "c1"})
	f := readFrame(t, eve)
	if f.Event != EventError || f.Code != errorx.CodeForbidden {
		t.Fatalf("frame = %+v, want forbidden error", f)
	}
	if cs.Hub.RoomSize("c1") != 0 {
		t.Fatal("non participant joined the room")
	}

	_ = eve.WriteJSON(request.ChatFrame{Event: EventJoin, ConversationId: "missing"})
	if f := readFrame(t, eve); f.Code != errorx.CodeNotFound {
		t.Fatalf("frame = %+v, want not found", f)
	}
}

func TestGatewayPingAndUnknownEvent(t *testing.T) {
	_, srv := newTestGateway(t)
	c := dial(t, srv, "u1")

	_ = c.WriteJSON(request.ChatFrame{Event: EventPing})
	if f := readFrame(t, c); f.Event != EventPong {
		t.Fatalf("frame = %+v, want pong", f)
	}

	_ = c.WriteJSON(request.ChatFrame{Event: "dance"})
	if f := readFrame(t, c); f.Event != EventError || f.Code != errorx.CodeInvalidParam {
		t.Fatalf("frame = %+v, want invalid param error", f)
	}

	_ = c.WriteMessage(websocket.TextMessage, []byte("{not json"))
	if f := readFrame(t, c); f.Code != errorx.CodeInvalidParam {
		t.Fatalf("frame = %+v, want invalid param error", f)
	}
}

func TestGatewayDisconnectCleansUp(t *testing.T) {
	cs, srv := newTestGateway(t)
	c := dial(t, srv, "u1")
	_ = c.WriteJSON(request.ChatFrame{Event: EventJoin, ConversationId: "c1"})
	waitFor(t, func() bool { return cs.Hub.RoomSize("c1") == 1 })

	_ = c.Close()
	waitFor(t, func() bool { return cs.Hub.RoomSize("c1") == 0 })
	waitFor(t, func() bool { return !cs.Presence.IsOnline(context.Background(), "u1") })
}

// Close 返回时读协程已完成在线状态清理，之后的连接被拒绝
func TestChatServerCloseDrainsConnections(t *testing.T) {
	cs, srv := newTestGateway(t)
	for _, uid := range []string{"u1", "u2"} {
		c := dial(t, srv, uid)
		_ = c.WriteJSON(request.ChatFrame{Event: EventJoin, ConversationId: "c1"})
	}
	waitFor(t, func() bool { return cs.Hub.RoomSize("c1") == 2 })

	cs.Close()

	for _, uid := range []string{"u1", "u2"} {
		if cs.Presence.IsOnline(context.Background(), uid) {
			t.Fatalf("%s still online after Close returned", uid)
		}
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?uid=u1"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("dial succeeded after Close")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("resp = %v, want 503", resp)
	}
}
