package conversation

import (
	"context"
	"encoding/json"
	"time"

	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/constants"
	"campus_chat_server/pkg/enum/user_info/user_status_enum"
	"campus_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

func toUserBrief(u *model.UserInfo) respond.UserBriefRespond {
	return respond.UserBriefRespond{
		UserId:     u.Uuid,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}

// requireUsers 校验用户全部存在且未被禁用，返回 uuid -> 展示信息
func (s *conversationService) requireUsers(ctx context.Context, ids ...string) (map[string]respond.UserBriefRespond, error) {
	users, err := s.repos.User.FindByUuids(ctx, ids)
	if err != nil {
		return nil, serverBusy(err, "查询用户失败", zap.Strings("user_ids", ids))
	}
	briefs := make(map[string]respond.UserBriefRespond, len(users))
	for i := range users {
		if users[i].Status == user_status_enum.DISABLE {
			continue
		}
		briefs[users[i].Uuid] = toUserBrief(&users[i])
	}
	for _, id := range ids {
		if _, ok := briefs[id]; !ok {
			return nil, errorx.Newf(errorx.CodeNotFound, "用户 %s 不存在", id)
		}
	}
	return briefs, nil
}

// userBriefs 读取展示信息，先查缓存再查用户目录
// 只用于补全展示字段，失败时记录日志并返回已拿到的部分
func (s *conversationService) userBriefs(ctx context.Context, ids []string) map[string]respond.UserBriefRespond {
	briefs := make(map[string]respond.UserBriefRespond, len(ids))
	misses := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if brief, ok := s.cachedBrief(ctx, id); ok {
			briefs[id] = brief
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return briefs
	}

	users, err := s.repos.User.FindByUuids(ctx, misses)
	if err != nil {
		zap.L().Warn("补全用户信息失败", zap.Strings("user_ids", misses), zap.Error(err))
		return briefs
	}
	for i := range users {
		brief := toUserBrief(&users[i])
		briefs[brief.UserId] = brief
		s.cacheBrief(brief)
	}
	return briefs
}

func (s *conversationService) cachedBrief(ctx context.Context, id string) (respond.UserBriefRespond, bool) {
	var brief respond.UserBriefRespond
	if s.cache == nil {
		return brief, false
	}
	raw, err := s.cache.Get(ctx, constants.USER_INFO_KEY_PREFIX+id)
	if err != nil {
		zap.L().Warn("读取用户缓存失败", zap.String("user_id", id), zap.Error(err))
		return brief, false
	}
	if raw == "" {
		return brief, false
	}
	if err := json.Unmarshal([]byte(raw), &brief); err != nil {
		return brief, false
	}
	return brief, true
}

// cacheBrief 异步写缓存
func (s *conversationService) cacheBrief(brief respond.UserBriefRespond) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(brief)
	if err != nil {
		return
	}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
		defer cancel()
		if err := s.cache.Set(ctx, constants.USER_INFO_KEY_PREFIX+brief.UserId, string(data),
			constants.USER_CACHE_TIMEOUT*time.Minute); err != nil {
			zap.L().Warn("写入用户缓存失败", zap.String("user_id", brief.UserId), zap.Error(err))
		}
	})
}
