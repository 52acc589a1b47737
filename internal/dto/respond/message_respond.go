package respond

import "time"

// MessageRespond 消息，附带发送者展示字段
type MessageRespond struct {
	MessageId      string    `json:"messageId"`
	ConversationId string    `json:"conversationId"`
	SenderId       string    `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	SenderFullName string    `json:"senderFullName"`
	SenderAvatar   string    `json:"senderAvatar"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ChatFrame 服务端经 WebSocket 推送的帧
// event: messageCreated / messageSent / error / pong
type ChatFrame struct {
	Event          string          `json:"event"`
	ConversationId string          `json:"conversationId,omitempty"`
	Message        *MessageRespond `json:"message,omitempty"`
	ClientMsgId    string          `json:"clientMsgId,omitempty"`
	Code           int             `json:"code,omitempty"`
	Msg            string          `json:"msg,omitempty"`
}
