package member_role_enum

// 会话成员角色
const (
	Member = int8(1) // 普通成员（私聊双方、群成员）
	Admin  = int8(2) // 群管理员（群创建者）
	Mentor = int8(3) // 导师
	Mentee = int8(4) // 学员
)

var names = map[int8]string{
	Member: "member",
	Admin:  "admin",
	Mentor: "mentor",
	Mentee: "mentee",
}

// String 返回角色的对外名称
func String(role int8) string {
	return names[role]
}
