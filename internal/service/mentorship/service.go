// Package mentorship 导师目录与学员发起的导师分配
package mentorship

import (
	"context"
	"strings"

	"campus_chat_server/internal/dao/repository"
	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/enum/conversation/conversation_kind_enum"
	"campus_chat_server/pkg/enum/conversation/member_role_enum"
	"campus_chat_server/pkg/enum/user_info/user_status_enum"
	"campus_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Resolver 导师会话解析，由会话服务实现
type Resolver interface {
	ResolveMentorship(ctx context.Context, requesterId, mentorId, menteeId string) (*respond.ConversationRespond, error)
}

// mentorshipService 导师业务逻辑实现
type mentorshipService struct {
	repos    *repository.Repositories
	resolver Resolver
}

// NewMentorshipService 构造函数
func NewMentorshipService(repos *repository.Repositories, resolver Resolver) *mentorshipService {
	return &mentorshipService{repos: repos, resolver: resolver}
}

// ListAvailableMentors 愿意提供辅导的用户，不包含请求者自己
func (s *mentorshipService) ListAvailableMentors(ctx context.Context, requesterId string) ([]respond.MentorRespond, error) {
	users, err := s.repos.User.FindAvailableMentors(ctx)
	if err != nil {
		zap.L().Error("查询导师列表失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	rsp := make([]respond.MentorRespond, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.Uuid == requesterId {
			continue
		}
		rsp = append(rsp, respond.MentorRespond{
			UserBriefRespond: respond.UserBriefRespond{
				UserId:     u.Uuid,
				Username:   u.Username,
				FullName:   u.FullName,
				ProfileImg: u.ProfileImg,
			},
			UserRole:    u.UserRole,
			CollegeName: u.CollegeName,
			Course:      u.Course,
			BatchYear:   u.BatchYear,
		})
	}
	return rsp, nil
}

// AssignMentor 请求者作为学员选择导师，并打开导师会话
// 重复选择同一导师是幂等的；已有其他导师时拒绝
func (s *mentorshipService) AssignMentor(ctx context.Context, menteeId, mentorId string) (*respond.AssignMentorRespond, error) {
	mentorId = strings.TrimSpace(mentorId)
	if mentorId == "" || mentorId == menteeId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能选择自己作为导师")
	}

	mentor, err := s.repos.User.FindByUuid(ctx, mentorId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "导师不存在")
		}
		zap.L().Error("查询导师失败", zap.String("mentor_id", mentorId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if mentor.Status == user_status_enum.DISABLE {
		return nil, errorx.New(errorx.CodeNotFound, "导师不存在")
	}
	if !mentor.IsAvailableForMentorship {
		return nil, errorx.New(errorx.CodeInvalidParam, "该导师暂不接受辅导")
	}

	current, err := s.currentMentor(ctx, menteeId)
	if err != nil {
		return nil, err
	}
	if current != "" && current != mentorId {
		return nil, errorx.New(errorx.CodeInvalidParam, "已经分配过导师")
	}

	conv, err := s.resolver.ResolveMentorship(ctx, menteeId, mentorId, menteeId)
	if err != nil {
		return nil, err
	}
	zap.L().Info("导师分配成功",
		zap.String("mentor_id", mentorId),
		zap.String("mentee_id", menteeId),
		zap.String("conversation_id", conv.ConversationId),
	)
	return &respond.AssignMentorRespond{
		Mentor: respond.UserBriefRespond{
			UserId:     mentor.Uuid,
			Username:   mentor.Username,
			FullName:   mentor.FullName,
			ProfileImg: mentor.ProfileImg,
		},
		ConversationId: conv.ConversationId,
	}, nil
}

// currentMentor 学员已有的导师，没有返回空串
func (s *mentorshipService) currentMentor(ctx context.Context, menteeId string) (string, error) {
	convs, err := s.mentorshipConversations(ctx, menteeId)
	if err != nil {
		return "", err
	}
	for i := range convs {
		if m := convs[i].Member(menteeId); m != nil && m.Role == member_role_enum.Mentee {
			return otherMember(&convs[i], menteeId), nil
		}
	}
	return "", nil
}

// ListMentees 请求者作为导师的全部学员
func (s *mentorshipService) ListMentees(ctx context.Context, mentorId string) ([]respond.MenteeRespond, error) {
	convs, err := s.mentorshipConversations(ctx, mentorId)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(convs))
	byMentee := make(map[string]*model.Conversation, len(convs))
	for i := range convs {
		if m := convs[i].Member(mentorId); m == nil || m.Role != member_role_enum.Mentor {
			continue
		}
		mentee := otherMember(&convs[i], mentorId)
		ids = append(ids, mentee)
		byMentee[mentee] = &convs[i]
	}
	if len(ids) == 0 {
		return []respond.MenteeRespond{}, nil
	}

	users, err := s.repos.User.FindByUuids(ctx, ids)
	if err != nil {
		zap.L().Error("查询学员失败", zap.String("mentor_id", mentorId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	briefs := make(map[string]respond.UserBriefRespond, len(users))
	for i := range users {
		briefs[users[i].Uuid] = respond.UserBriefRespond{
			UserId:     users[i].Uuid,
			Username:   users[i].Username,
			FullName:   users[i].FullName,
			ProfileImg: users[i].ProfileImg,
		}
	}

	// 与会话列表一致，最近活跃的在前
	rsp := make([]respond.MenteeRespond, 0, len(ids))
	for _, id := range ids {
		brief, ok := briefs[id]
		if !ok {
			brief = respond.UserBriefRespond{UserId: id}
		}
		conv := byMentee[id]
		rsp = append(rsp, respond.MenteeRespond{
			UserBriefRespond: brief,
			ConversationId:   conv.Uuid,
			LastUpdatedAt:    conv.UpdatedAt,
		})
	}
	return rsp, nil
}

func (s *mentorshipService) mentorshipConversations(ctx context.Context, userId string) ([]model.Conversation, error) {
	kind := conversation_kind_enum.Mentorship
	convs, err := s.repos.Conversation.FindByUserId(ctx, userId, &kind)
	if err != nil {
		zap.L().Error("查询导师会话失败", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return convs, nil
}

func otherMember(c *model.Conversation, userId string) string {
	for _, m := range c.Members {
		if m.UserUuid != userId {
			return m.UserUuid
		}
	}
	return ""
}
