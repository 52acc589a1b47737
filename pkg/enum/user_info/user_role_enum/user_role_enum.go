package user_role_enum

// 用户身份，对应用户资料中的 userRole
const (
	Student = "Student"
	Senior  = "Senior"
	Alumni  = "Alumni"
)
