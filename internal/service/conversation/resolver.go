package conversation

import (
	"context"
	"strings"

	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/internal/model"
	"campus_chat_server/pkg/enum/conversation/conversation_kind_enum"
	"campus_chat_server/pkg/enum/conversation/member_role_enum"
	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

// newConversationUuid C + 日期 + 随机串，共 20 位
func newConversationUuid() string {
	return "C" + random.GetNowAndLenRandomString(13)
}

// ResolveDirect 查找或创建私聊，参数顺序不影响结果
func (s *conversationService) ResolveDirect(ctx context.Context, requesterId, otherUserId string) (*respond.ConversationRespond, error) {
	otherUserId = strings.TrimSpace(otherUserId)
	if otherUserId == "" || otherUserId == requesterId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能和自己创建私聊")
	}
	briefs, err := s.requireUsers(ctx, requesterId, otherUserId)
	if err != nil {
		return nil, err
	}

	key := model.DirectPairKey(requesterId, otherUserId)
	conv, err := s.findOrCreate(ctx, conversation_kind_enum.Direct, key, func() (*model.Conversation, error) {
		return &model.Conversation{
			Members: []model.ConversationMember{
				{UserUuid: requesterId, Role: member_role_enum.Member},
				{UserUuid: otherUserId, Role: member_role_enum.Member},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return toConversationRespond(conv, briefs), nil
}

// ResolveMentorship 查找或创建导师会话
// 角色固定，互换导师和学员得到的是另一个会话
// 已有会话总能打开；新建时与选择导师的规则一致：导师需接受辅导，学员只能有一位导师
func (s *conversationService) ResolveMentorship(ctx context.Context, requesterId, mentorId, menteeId string) (*respond.ConversationRespond, error) {
	mentorId, menteeId = strings.TrimSpace(mentorId), strings.TrimSpace(menteeId)
	if mentorId == "" || menteeId == "" || mentorId == menteeId {
		return nil, errorx.New(errorx.CodeInvalidParam, "导师和学员不能是同一个人")
	}
	if requesterId != mentorId && requesterId != menteeId {
		return nil, errorx.New(errorx.CodeForbidden, "只能打开自己参与的导师会话")
	}
	briefs, err := s.requireUsers(ctx, mentorId, menteeId)
	if err != nil {
		return nil, err
	}

	key := model.MentorshipPairKey(mentorId, menteeId)
	conv, err := s.findOrCreate(ctx, conversation_kind_enum.Mentorship, key, func() (*model.Conversation, error) {
		if err := s.admitMentorship(ctx, mentorId, menteeId); err != nil {
			return nil, err
		}
		return &model.Conversation{
			Members: []model.ConversationMember{
				{UserUuid: mentorId, Role: member_role_enum.Mentor},
				{UserUuid: menteeId, Role: member_role_enum.Mentee},
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return toConversationRespond(conv, briefs), nil
}

// admitMentorship 新建导师关系前的校验
func (s *conversationService) admitMentorship(ctx context.Context, mentorId, menteeId string) error {
	mentor, err := s.repos.User.FindByUuid(ctx, mentorId)
	if err != nil {
		return serverBusy(err, "查询导师失败", zap.String("mentor_id", mentorId))
	}
	if !mentor.IsAvailableForMentorship {
		return errorx.New(errorx.CodeInvalidParam, "该导师暂不接受辅导")
	}

	kind := conversation_kind_enum.Mentorship
	convs, err := s.repos.Conversation.FindByUserId(ctx, menteeId, &kind)
	if err != nil {
		return serverBusy(err, "查询导师会话失败", zap.String("mentee_id", menteeId))
	}
	for i := range convs {
		if m := convs[i].Member(menteeId); m != nil && m.Role == member_role_enum.Mentee {
			zap.L().Warn("学员已有导师",
				zap.String("mentee_id", menteeId),
				zap.String("conversation_id", convs[i].Uuid),
			)
			return errorx.New(errorx.CodeInvalidParam, "已经分配过导师")
		}
	}
	return nil
}

// CreateGroup 创建群聊，每次调用都新建
// 成员为 memberIds 与创建者的并集，创建者为管理员
func (s *conversationService) CreateGroup(ctx context.Context, creatorId, name string, memberIds []string) (*respond.ConversationRespond, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
	}

	ids := []string{creatorId}
	seen := map[string]struct{}{creatorId: {}}
	for _, id := range memberIds {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil, errorx.New(errorx.CodeInvalidParam, "群聊至少需要两名成员")
	}

	briefs, err := s.requireUsers(ctx, ids...)
	if err != nil {
		return nil, err
	}

	conv := &model.Conversation{
		Uuid:    newConversationUuid(),
		Kind:    conversation_kind_enum.Group,
		Name:    name,
		AdminId: creatorId,
	}
	for _, id := range ids {
		role := member_role_enum.Member
		if id == creatorId {
			role = member_role_enum.Admin
		}
		conv.Members = append(conv.Members, model.ConversationMember{UserUuid: id, Role: role})
	}
	if err := s.repos.Conversation.Create(ctx, conv); err != nil {
		return nil, serverBusy(err, "创建群聊失败", zap.String("creator_id", creatorId))
	}
	zap.L().Info("群聊已创建",
		zap.String("conversation_id", conv.Uuid),
		zap.String("creator_id", creatorId),
		zap.Int("members", len(ids)),
	)
	return toConversationRespond(conv, briefs), nil
}

// findOrCreate 按 (kind, pairKey) 查找，不存在时创建
// 并发创建时唯一索引冲突说明对方已经建好，重新查询即可
func (s *conversationService) findOrCreate(ctx context.Context, kind int8, pairKey string, build func() (*model.Conversation, error)) (*model.Conversation, error) {
	conv, err := s.repos.Conversation.FindByPairKey(ctx, kind, pairKey)
	if err == nil {
		return conv, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, serverBusy(err, "查询会话失败", zap.String("pair_key", pairKey))
	}

	if conv, err = build(); err != nil {
		return nil, err
	}
	conv.Uuid = newConversationUuid()
	conv.Kind = kind
	conv.PairKey = &pairKey
	err = s.repos.Conversation.Create(ctx, conv)
	if err == nil {
		zap.L().Info("会话已创建",
			zap.String("conversation_id", conv.Uuid),
			zap.String("kind", conversation_kind_enum.String(kind)),
		)
		return conv, nil
	}
	if !errorx.IsConflict(err) {
		return nil, serverBusy(err, "创建会话失败", zap.String("pair_key", pairKey))
	}

	zap.L().Debug("会话已被并发创建，重新查询", zap.String("pair_key", pairKey))
	conv, err = s.repos.Conversation.FindByPairKey(ctx, kind, pairKey)
	if err != nil {
		return nil, serverBusy(err, "查询会话失败", zap.String("pair_key", pairKey))
	}
	return conv, nil
}

func toConversationRespond(conv *model.Conversation, briefs map[string]respond.UserBriefRespond) *respond.ConversationRespond {
	rsp := &respond.ConversationRespond{
		ConversationId: conv.Uuid,
		Kind:           conversation_kind_enum.String(conv.Kind),
		Name:           conv.Name,
		AdminId:        conv.AdminId,
		Participants:   make([]respond.ParticipantRespond, 0, len(conv.Members)),
		CreatedAt:      conv.CreatedAt,
		UpdatedAt:      conv.UpdatedAt,
	}
	for _, m := range conv.Members {
		brief, ok := briefs[m.UserUuid]
		if !ok {
			brief = respond.UserBriefRespond{UserId: m.UserUuid}
		}
		rsp.Participants = append(rsp.Participants, respond.ParticipantRespond{
			UserBriefRespond: brief,
			Role:             member_role_enum.String(m.Role),
		})
	}
	return rsp
}
