package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/pkg/constants"
	"campus_chat_server/pkg/errorx"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrConnClosed 连接已关闭
	ErrConnClosed = errors.New("connection closed")
	// ErrSlowConsumer 发送缓冲已满，连接被断开
	ErrSlowConsumer = errors.New("slow consumer")
	// ErrGatewayClosed 服务关闭中，不再接受新连接
	ErrGatewayClosed = errors.New("gateway closed")
)

// ConversationAccess 网关需要的会话能力，由会话服务实现
type ConversationAccess interface {
	// CheckParticipant 会话不存在返回 NotFound，非成员返回 Forbidden
	CheckParticipant(ctx context.Context, conversationId, userId string) error
	// AppendMessage 持久化并发布消息
	AppendMessage(ctx context.Context, conversationId, senderId, content string) (*respond.MessageRespond, error)
}

// 允许任意来源，跨域由 HTTP 层的 CORS 配置和 JWT 鉴权兜底
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway WebSocket 网关
// 每个连接一读一写两个协程，读协程处理客户端帧，写协程负责推送和心跳
type Gateway struct {
	hub      *Hub
	presence *PresenceRegistry
	access   ConversationAccess

	// closing 之后不再 Add，保证 Wait 不会与新连接竞争
	mu      sync.Mutex
	closing bool
	conns   sync.WaitGroup
}

// NewGateway 创建网关
func NewGateway(hub *Hub, presence *PresenceRegistry, access ConversationAccess) *Gateway {
	return &Gateway{hub: hub, presence: presence, access: access}
}

// Serve 升级连接并启动读写协程，userId 已由鉴权中间件确认
func (g *Gateway) Serve(w http.ResponseWriter, r *http.Request, userId string) error {
	if g.isClosing() {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return ErrGatewayClosed
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &wsConn{
		id:     uuid.NewString(),
		userId: userId,
		conn:   conn,
		send:   make(chan []byte, constants.CONN_SEND_BUFFER),
		done:   make(chan struct{}),
	}

	// 升级期间可能已开始关闭
	g.mu.Lock()
	if g.closing {
		g.mu.Unlock()
		_ = conn.Close()
		return ErrGatewayClosed
	}
	g.conns.Add(2)
	g.hub.Attach(c)
	g.mu.Unlock()
	g.presence.Join(userId, c.id)
	zap.L().Info("ws连接成功", zap.String("user_id", userId), zap.String("handle", c.id))

	// 请求返回后 r.Context() 会被取消，连接生命周期与请求无关
	ctx := context.WithoutCancel(r.Context())
	go func() {
		defer g.conns.Done()
		c.writeLoop()
	}()
	go g.readLoop(ctx, c)
	return nil
}

func (g *Gateway) isClosing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closing
}

// Close 拒绝新连接，已有连接由 Hub.Close 断开
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closing = true
	g.mu.Unlock()
}

// Wait 等待所有连接协程退出，超时返回 false
// 必须在 Close 之后调用
func (g *Gateway) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		g.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// readLoop 读取客户端帧，退出时清理房间和在线状态
func (g *Gateway) readLoop(ctx context.Context, c *wsConn) {
	defer func() {
		g.hub.Detach(c)
		g.presence.Disconnect(c.id)
		c.Close()
		zap.L().Info("ws连接断开", zap.String("user_id", c.userId), zap.String("handle", c.id))
		g.conns.Done()
	}()

	c.conn.SetReadLimit(constants.WS_READ_LIMIT)
	_ = c.conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws读取失败", zap.String("handle", c.id), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))

		var frame request.ChatFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			_ = c.Send(errorFrame(errorx.New(errorx.CodeInvalidParam, "消息格式错误"), "", ""))
			continue
		}
		g.handleFrame(ctx, c, frame)
	}
}

func (g *Gateway) handleFrame(ctx context.Context, c *wsConn, frame request.ChatFrame) {
	conversationId := strings.TrimSpace(frame.ConversationId)

	switch frame.Event {
	case EventJoin:
		if conversationId == "" {
			_ = c.Send(errorFrame(errorx.New(errorx.CodeInvalidParam, "会话ID不能为空"), "", ""))
			return
		}
		if err := g.access.CheckParticipant(ctx, conversationId, c.userId); err != nil {
			zap.L().Warn("拒绝加入房间",
				zap.String("user_id", c.userId),
				zap.String("conversation_id", conversationId),
				zap.Error(err),
			)
			_ = c.Send(errorFrame(err, conversationId, ""))
			return
		}
		g.hub.Join(conversationId, c)

	case EventLeave:
		g.hub.Leave(conversationId, c)

	case EventSendMessage:
		msg, err := g.access.AppendMessage(ctx, conversationId, c.userId, frame.Content)
		if err != nil {
			_ = c.Send(errorFrame(err, conversationId, frame.ClientMsgId))
			return
		}
		_ = c.Send(encodeFrame(respond.ChatFrame{
			Event:          EventMessageSent,
			ConversationId: conversationId,
			ClientMsgId:    frame.ClientMsgId,
			Message:        msg,
		}))

	case EventPing:
		_ = c.Send(encodeFrame(respond.ChatFrame{Event: EventPong}))

	default:
		_ = c.Send(errorFrame(errorx.Newf(errorx.CodeInvalidParam, "未知事件 %s", frame.Event), conversationId, frame.ClientMsgId))
	}
}

// wsConn 一个 WebSocket 连接，实现 Subscriber
type wsConn struct {
	id     string
	userId string
	conn   *websocket.Conn
	send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsConn) ID() string     { return c.id }
func (c *wsConn) UserID() string { return c.userId }

// Send 非阻塞写入发送缓冲，缓冲满说明客户端读得太慢，直接断开
func (c *wsConn) Send(payload []byte) error {
	if payload == nil {
		return nil
	}
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		zap.L().Warn("ws发送缓冲已满，断开连接", zap.String("user_id", c.userId), zap.String("handle", c.id))
		c.Close()
		return ErrSlowConsumer
	}
}

// Close 幂等，关闭底层连接使读协程退出
func (c *wsConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writeLoop 推送消息并定时发送 ping
func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(constants.WS_PING_PERIOD)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				zap.L().Warn("ws写入失败", zap.String("handle", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
