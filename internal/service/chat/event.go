// Package chat 实现实时投递层
// 房间广播 (Hub)、在线状态 (PresenceRegistry)、消息代理 (Channel / Kafka) 和 WebSocket 网关
package chat

import (
	"encoding/json"
	"errors"

	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// 客户端 -> 服务端
const (
	EventJoin        = "join"
	EventLeave       = "leave"
	EventSendMessage = "sendMessage"
	EventPing        = "ping"
)

// 服务端 -> 客户端
const (
	EventMessageCreated = "messageCreated"
	EventMessageSent    = "messageSent"
	EventError          = "error"
	EventPong           = "pong"
)

// MessageCreatedEvent 消息落库后发布到代理的事件
type MessageCreatedEvent struct {
	ConversationId string                 `json:"conversationId"`
	Message        respond.MessageRespond `json:"message"`
}

func encodeFrame(frame respond.ChatFrame) []byte {
	data, err := json.Marshal(frame)
	if err != nil {
		zap.L().Error("序列化推送帧失败", zap.String("event", frame.Event), zap.Error(err))
		return nil
	}
	return data
}

func messageCreatedFrame(ev MessageCreatedEvent) []byte {
	msg := ev.Message
	return encodeFrame(respond.ChatFrame{
		Event:          EventMessageCreated,
		ConversationId: ev.ConversationId,
		Message:        &msg,
	})
}

// errorFrame 业务错误原样下发错误码，其余错误统一为服务繁忙
func errorFrame(err error, conversationId, clientMsgId string) []byte {
	code, msg := errorx.CodeServerBusy, errorx.ErrServerBusy.Msg
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code != errorx.CodeDBError && codeErr.Code != errorx.CodeCacheError {
		code, msg = codeErr.Code, codeErr.Msg
	}
	return encodeFrame(respond.ChatFrame{
		Event:          EventError,
		ConversationId: conversationId,
		ClientMsgId:    clientMsgId,
		Code:           code,
		Msg:            msg,
	})
}

// deliver 把事件推送给房间内所有连接
func deliver(hub *Hub, ev MessageCreatedEvent) {
	payload := messageCreatedFrame(ev)
	if payload == nil {
		return
	}
	n := hub.Broadcast(ev.ConversationId, payload)
	zap.L().Debug("messageCreated 已广播",
		zap.String("conversation_id", ev.ConversationId),
		zap.String("message_id", ev.Message.MessageId),
		zap.Int("receivers", n),
	)
}
