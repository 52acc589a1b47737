package https_server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campus_chat_server/internal/config"
	"campus_chat_server/internal/dao/memory"
	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/internal/handler"
	"campus_chat_server/internal/https_server"
	"campus_chat_server/internal/model"
	"campus_chat_server/internal/service"
	"campus_chat_server/internal/service/chat"
	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// envelope 统一响应，data 延迟解码
type envelope struct {
	Code int             `json:"code"`
	Msg  any             `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testApp struct {
	t      *testing.T
	server *httptest.Server
	chat   *chat.ChatServer
	client *http.Client
}

// newTestApp 使用内存存储和 channel 代理组装完整服务
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret", 15, 168)
	if err := handler.InitTrans("zh"); err != nil {
		t.Fatalf("init trans: %v", err)
	}

	repos := memory.NewRepositories(memory.NewStore())
	users := []model.UserInfo{
		{Uuid: "UA", Username: "alice", FullName: "Alice", RawPassword: "password"},
		{Uuid: "UB", Username: "bob", FullName: "Bob", RawPassword: "password"},
		{Uuid: "UC", Username: "carol", FullName: "Carol", RawPassword: "password"},
		{Uuid: "UD", Username: "dave", FullName: "Dave", RawPassword: "password"},
		{Uuid: "UM", Username: "mentor", FullName: "Mentor", RawPassword: "password", IsAvailableForMentorship: true},
	}
	for i := range users {
		if err := repos.User.Create(context.Background(), &users[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	cache := memory.NewCache()
	cs := chat.NewChatServer(chat.ChatServerConfig{Mode: chat.ModeChannel, Cache: cache})
	go cs.Start(context.Background())

	svcs := service.NewServices(repos, cache, cs)
	gateway := cs.NewGateway(svcs.Conversation)
	engine := https_server.Init(&config.MainConfig{}, handler.NewHandlers(svcs, gateway))

	srv := httptest.NewServer(engine)
	t.Cleanup(func() {
		srv.Close()
		cs.Close()
	})
	return &testApp{t: t, server: srv, chat: cs, client: &http.Client{Timeout: 5 * time.Second}}
}

func (a *testApp) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		a.t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

// ok 断言成功并解码 data
func (a *testApp) ok(method, path, token string, body, out any) {
	a.t.Helper()
	status, env := a.do(method, path, token, body)
	if status != http.StatusOK || env.Code != errorx.CodeSuccess {
		a.t.Fatalf("%s %s: status=%d code=%d msg=%v", method, path, status, env.Code, env.Msg)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			a.t.Fatalf("decode %s: %v", path, err)
		}
	}
}

func (a *testApp) login(username string) respond.LoginRespond {
	a.t.Helper()
	var rsp respond.LoginRespond
	a.ok(http.MethodPost, "/login", "", request.LoginRequest{Username: username, Password: "password"}, &rsp)
	return rsp
}

func (a *testApp) dial(token string) *websocket.Conn {
	a.t.Helper()
	url := "ws" + strings.TrimPrefix(a.server.URL, "http") + "/wss?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		a.t.Fatalf("dial: %v", err)
	}
	a.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDirectConversationScenario(t *testing.T) {
	app := newTestApp(t)
	alice, bob := app.login("alice"), app.login("bob")

	var c1, again respond.ConversationRespond
	app.ok(http.MethodPost, "/conversations/direct", alice.AccessToken, request.CreateDirectConversationRequest{OtherUserId: bob.UserId}, &c1)
	app.ok(http.MethodPost, "/conversations/direct", bob.AccessToken, request.CreateDirectConversationRequest{OtherUserId: alice.UserId}, &again)
	if c1.ConversationId == "" || c1.ConversationId != again.ConversationId {
		t.Fatalf("got %q and %q, want the same conversation", c1.ConversationId, again.ConversationId)
	}

	ws := app.dial(bob.AccessToken)
	if err := ws.WriteJSON(request.ChatFrame{Event: chat.EventJoin, ConversationId: c1.ConversationId}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return app.chat.Hub.RoomSize(c1.ConversationId) == 1 })

	var m1 respond.MessageRespond
	app.ok(http.MethodPost, "/conversations/"+c1.ConversationId+"/messages", alice.AccessToken, request.SendMessageRequest{Content: "hi"}, &m1)
	if m1.SenderId != alice.UserId || m1.ConversationId != c1.ConversationId {
		t.Fatalf("message = %+v", m1)
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame respond.ChatFrame
	if err := ws.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Event != chat.EventMessageCreated || frame.Message.MessageId != m1.MessageId {
		t.Fatalf("frame = %+v", frame)
	}

	var history []respond.MessageRespond
	app.ok(http.MethodGet, "/conversations/"+c1.ConversationId+"/messages", bob.AccessToken, nil, &history)
	if len(history) != 1 || history[0].MessageId != m1.MessageId {
		t.Fatalf("history = %+v", history)
	}

	var online respond.PresenceRespond
	app.ok(http.MethodGet, "/presence?userIds=UA,UB", alice.AccessToken, nil, &online)
	if len(online.Online) != 1 || online.Online[0] != "UB" {
		t.Fatalf("online = %+v", online)
	}
}

func TestGroupConversationScenario(t *testing.T) {
	app := newTestApp(t)
	alice, dave := app.login("alice"), app.login("dave")

	var g respond.ConversationRespond
	app.ok(http.MethodPost, "/conversations/group", alice.AccessToken,
		request.CreateGroupConversationRequest{Name: "study", MemberIds: []string{"UB", "UC"}}, &g)

	for _, text := range []string{"first", "second"} {
		app.ok(http.MethodPost, "/conversations/"+g.ConversationId+"/messages", alice.AccessToken, request.SendMessageRequest{Content: text}, nil)
	}
	var history []respond.MessageRespond
	app.ok(http.MethodGet, "/conversations/"+g.ConversationId+"/messages", alice.AccessToken, nil, &history)
	if len(history) != 2 || history[0].Content != "first" || history[1].Content != "second" {
		t.Fatalf("history = %+v", history)
	}

	_, env := app.do(http.MethodGet, "/conversations/"+g.ConversationId+"/messages", dave.AccessToken, nil)
	if env.Code != errorx.CodeForbidden {
		t.Fatalf("outsider code = %d, want Forbidden", env.Code)
	}

	var list []respond.ConversationSummaryRespond
	app.ok(http.MethodGet, "/conversations?kind=group", alice.AccessToken, nil, &list)
	if len(list) != 1 || list[0].Name != "study" || list[0].MemberCount != 3 {
		t.Fatalf("list = %+v", list)
	}
}

func TestMentorshipEndpoints(t *testing.T) {
	app := newTestApp(t)
	alice, mentor := app.login("alice"), app.login("mentor")

	var mentors []respond.MentorRespond
	app.ok(http.MethodGet, "/mentorship/mentors", alice.AccessToken, nil, &mentors)
	if len(mentors) != 1 || mentors[0].UserId != "UM" {
		t.Fatalf("mentors = %+v", mentors)
	}

	var assigned respond.AssignMentorRespond
	app.ok(http.MethodPost, "/mentorship/assign", alice.AccessToken, request.AssignMentorRequest{MentorId: "UM"}, &assigned)

	var mentees []respond.MenteeRespond
	app.ok(http.MethodGet, "/mentorship/mentees", mentor.AccessToken, nil, &mentees)
	if len(mentees) != 1 || mentees[0].UserId != "UA" || mentees[0].ConversationId != assigned.ConversationId {
		t.Fatalf("mentees = %+v", mentees)
	}

	var conv respond.ConversationRespond
	app.ok(http.MethodPost, "/conversations/mentorship", mentor.AccessToken,
		request.CreateMentorshipConversationRequest{MentorId: "UM", MenteeId: "UA"}, &conv)
	if conv.ConversationId != assigned.ConversationId {
		t.Fatal("mentor resolved a different conversation than the assignment")
	}
	// 直接打开导师会话也不能绕过导师规则
	_, env := app.do(http.MethodPost, "/conversations/mentorship", alice.AccessToken,
		request.CreateMentorshipConversationRequest{MentorId: "UB", MenteeId: "UA"})
	if env.Code != errorx.CodeInvalidParam {
		t.Fatalf("unavailable mentor code = %d, want %d", env.Code, errorx.CodeInvalidParam)
	}
}

func TestAuthAndValidation(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.do(http.MethodGet, "/conversations", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", status)
	}

	alice := app.login("alice")
	var refreshed respond.RefreshTokenRespond
	app.ok(http.MethodPost, "/auth/refresh", "", request.RefreshTokenRequest{RefreshToken: alice.RefreshToken}, &refreshed)
	if refreshed.AccessToken == "" {
		t.Fatal("empty access token after refresh")
	}

	_, env := app.do(http.MethodPost, "/login", "", map[string]string{"username": "alice"})
	if env.Code != errorx.CodeInvalidParam {
		t.Fatalf("missing password code = %d", env.Code)
	}

	_, env = app.do(http.MethodPost, "/conversations/direct", alice.AccessToken, request.CreateDirectConversationRequest{OtherUserId: "UA"})
	if env.Code != errorx.CodeInvalidParam {
		t.Fatalf("self direct code = %d", env.Code)
	}

	_, env = app.do(http.MethodGet, "/conversations?kind=broadcast", alice.AccessToken, nil)
	if env.Code != errorx.CodeInvalidParam {
		t.Fatalf("bad kind code = %d", env.Code)
	}
}
