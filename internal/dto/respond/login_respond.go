package respond

// LoginRespond 用户登录响应
// 使用位置:
//   - internal/service/auth/service.go: Login
type LoginRespond struct {
	UserId       string `json:"userId"`
	Username     string `json:"username"`
	FullName     string `json:"fullName"`
	ProfileImg   string `json:"profileImg"`
	UserRole     string `json:"userRole"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRespond 刷新 Token 响应
type RefreshTokenRespond struct {
	AccessToken string `json:"access_token"`
}
