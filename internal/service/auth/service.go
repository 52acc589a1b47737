// Package auth 提供认证相关的业务逻辑
// 处理登录、Token 刷新和单点互踢校验
package auth

import (
	"context"

	"campus_chat_server/internal/dao/repository"
	myredis "campus_chat_server/internal/dao/redis"
	"campus_chat_server/internal/dto/request"
	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/pkg/constants"
	"campus_chat_server/pkg/enum/user_info/user_status_enum"
	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/jwt"

	"go.uber.org/zap"
)

// Service 认证服务实现
type Service struct {
	repos *repository.Repositories
	cache myredis.CacheService // 缓存服务（依赖倒置）
}

// NewAuthService 创建认证服务实例
func NewAuthService(repos *repository.Repositories, cache myredis.CacheService) *Service {
	return &Service{
		repos: repos,
		cache: cache,
	}
}

func tokenKey(userID string) string {
	return constants.USER_TOKEN_KEY_PREFIX + userID
}

// Login 用户名密码登录，签发双 Token
// Refresh Token ID 写入 Redis，新登录会让旧设备的 Refresh Token 失效
func (s *Service) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repos.User.FindByUsername(ctx, req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.String("username", req.Username), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确，请重试")
	}
	if user.Status == user_status_enum.DISABLE {
		return nil, errorx.New(errorx.CodeForbidden, "账号已被禁用")
	}

	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if err := s.cache.Set(ctx, tokenKey(user.Uuid), tokenID, jwt.RefreshTokenTTL()); err != nil {
		// 不阻塞登录，只是这次签发的 Refresh Token 无法使用
		zap.L().Error("存储 Token ID 失败", zap.String("user_id", user.Uuid), zap.Error(err))
	}

	zap.L().Info("用户登录", zap.String("user_id", user.Uuid))
	return &respond.LoginRespond{
		UserId:       user.Uuid,
		Username:     user.Username,
		FullName:     user.FullName,
		ProfileImg:   user.ProfileImg,
		UserRole:     user.UserRole,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken 用 Refresh Token 换新的 Access Token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*respond.RefreshTokenRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, errorx.New(errorx.CodeUnauthorized, "Refresh Token 已过期或无效，请重新登录")
	}
	// 防止用 Access Token 刷新
	if claims.Subject != jwt.SubjectRefreshToken {
		return nil, errorx.New(errorx.CodeUnauthorized, "请使用 Refresh Token")
	}

	ok, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		zap.L().Error("读取 Token ID 失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, errorx.New(errorx.CodeUnauthorized, "登录状态已失效，请重新登录")
	}
	if !ok {
		return nil, errorx.New(errorx.CodeUnauthorized, "您的账号已在其他设备登录，请重新登录")
	}

	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.RefreshTokenRespond{AccessToken: accessToken}, nil
}

// ValidateTokenID 校验 Token ID 是否为该用户最近一次登录签发的
func (s *Service) ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, tokenKey(userID))
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}
