package request

// ChatFrame 客户端经 WebSocket 发来的帧
// event: join / leave / sendMessage / ping
type ChatFrame struct {
	Event          string `json:"event"`
	ConversationId string `json:"conversationId,omitempty"`
	Content        string `json:"content,omitempty"`
	ClientMsgId    string `json:"clientMsgId,omitempty"` // 客户端本地回显的临时 ID，用于对账
}
