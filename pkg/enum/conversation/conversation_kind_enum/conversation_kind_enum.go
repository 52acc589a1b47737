package conversation_kind_enum

// 会话类型
const (
	Direct     = int8(0) // 私聊
	Group      = int8(1) // 群聊
	Mentorship = int8(2) // 导师会话
)

var names = map[int8]string{
	Direct:     "direct",
	Group:      "group",
	Mentorship: "mentorship",
}

// String 返回会话类型的对外名称，未知类型返回空串
func String(kind int8) string {
	return names[kind]
}

// Parse 将对外名称解析为会话类型
func Parse(name string) (int8, bool) {
	for k, v := range names {
		if v == name {
			return k, true
		}
	}
	return 0, false
}
