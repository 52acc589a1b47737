package middleware

import (
	"net/http"
	"strings"

	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextUserID 认证通过后存入 gin.Context 的用户 ID 键
const ContextUserID = "user_id"

// JWTAuth JWT 认证中间件
// 优先读取 Authorization: Bearer 头；浏览器 WebSocket 无法自定义头，允许使用 ?token= 查询参数
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, msg := extractToken(c)
		if tokenString == "" {
			abortUnauthorized(c, msg)
			return
		}

		claims, err := jwt.ParseToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}
		if claims.Subject != jwt.SubjectAccessToken {
			abortUnauthorized(c, "请使用 Access Token 访问此接口")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, ""
		}
		return "", "请先登录"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "Token 格式错误，请使用 Bearer Token"
	}
	return parts[1], ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}
