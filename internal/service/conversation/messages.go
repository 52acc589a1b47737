package conversation

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"campus_chat_server/internal/dto/respond"
	"campus_chat_server/internal/model"
	"campus_chat_server/internal/service/chat"
	"campus_chat_server/pkg/constants"
	"campus_chat_server/pkg/enum/conversation/conversation_kind_enum"
	"campus_chat_server/pkg/enum/conversation/member_role_enum"
	"campus_chat_server/pkg/errorx"
	"campus_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// loadConversation 查询会话并校验成员身份
func (s *conversationService) loadConversation(ctx context.Context, conversationId, userId string) (*model.Conversation, error) {
	conv, err := s.repos.Conversation.FindByUuid(ctx, conversationId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		return nil, serverBusy(err, "查询会话失败", zap.String("conversation_id", conversationId))
	}
	if !conv.HasMember(userId) {
		zap.L().Warn("非会话成员访问",
			zap.String("conversation_id", conversationId),
			zap.String("user_id", userId),
		)
		return nil, errorx.ErrForbidden
	}
	return conv, nil
}

// CheckParticipant 会话不存在返回 NotFound，非成员返回 Forbidden
func (s *conversationService) CheckParticipant(ctx context.Context, conversationId, userId string) error {
	_, err := s.loadConversation(ctx, conversationId, userId)
	return err
}

// AppendMessage 校验、落库，成功后发布 messageCreated
// 落库失败返回服务繁忙且不广播；广播失败只记录日志
func (s *conversationService) AppendMessage(ctx context.Context, conversationId, senderId, content string) (*respond.MessageRespond, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	if utf8.RuneCountInString(content) > constants.MESSAGE_MAX_LENGTH {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "消息内容不能超过 %d 个字符", constants.MESSAGE_MAX_LENGTH)
	}
	conv, err := s.loadConversation(ctx, conversationId, senderId)
	if err != nil {
		return nil, err
	}

	// 时钟回拨时不早于会话里最新的消息，展示时间与列表顺序保持一致
	createdAt := s.now().Truncate(time.Millisecond)
	if createdAt.Before(conv.UpdatedAt) {
		createdAt = conv.UpdatedAt.Truncate(time.Millisecond)
	}
	msg := &model.Message{
		Uuid:             snowflake.GenerateIDString(),
		ConversationUuid: conversationId,
		SenderId:         senderId,
		Content:          content,
		CreatedAt:        createdAt,
	}
	if err := s.repos.Message.Append(ctx, msg); err != nil {
		return nil, serverBusy(err, "消息写入失败",
			zap.String("conversation_id", conversationId),
			zap.String("sender_id", senderId),
		)
	}

	rsp := toMessageRespond(msg, s.userBriefs(ctx, []string{senderId}))
	s.publish(ctx, rsp)
	return &rsp, nil
}

func (s *conversationService) publish(ctx context.Context, msg respond.MessageRespond) {
	if s.publisher == nil {
		return
	}
	event := chat.MessageCreatedEvent{ConversationId: msg.ConversationId, Message: msg}
	if err := s.publisher.Publish(ctx, event); err != nil {
		zap.L().Warn("消息广播失败",
			zap.String("conversation_id", msg.ConversationId),
			zap.String("message_id", msg.MessageId),
			zap.Error(err),
		)
	}
}

// ListMessages 按时间升序返回会话全部消息，只读
func (s *conversationService) ListMessages(ctx context.Context, conversationId, requesterId string) ([]respond.MessageRespond, error) {
	if _, err := s.loadConversation(ctx, conversationId, requesterId); err != nil {
		return nil, err
	}
	msgs, err := s.repos.Message.FindByConversationId(ctx, conversationId)
	if err != nil {
		return nil, serverBusy(err, "查询消息失败", zap.String("conversation_id", conversationId))
	}

	senders := make([]string, 0, len(msgs))
	for i := range msgs {
		senders = append(senders, msgs[i].SenderId)
	}
	briefs := s.userBriefs(ctx, senders)

	rsp := make([]respond.MessageRespond, 0, len(msgs))
	for i := range msgs {
		rsp = append(rsp, toMessageRespond(&msgs[i], briefs))
	}
	return rsp, nil
}

// ListConversations 返回用户参与的会话摘要，最近更新的在前
// kind 为空时返回全部类型
func (s *conversationService) ListConversations(ctx context.Context, userId, kind string) ([]respond.ConversationSummaryRespond, error) {
	var filter *int8
	if kind != "" {
		k, ok := conversation_kind_enum.Parse(kind)
		if !ok {
			return nil, errorx.Newf(errorx.CodeInvalidParam, "未知会话类型 %s", kind)
		}
		filter = &k
	}

	convs, err := s.repos.Conversation.FindByUserId(ctx, userId, filter)
	if err != nil {
		return nil, serverBusy(err, "查询会话列表失败", zap.String("user_id", userId))
	}

	others := make([]string, 0, len(convs))
	for i := range convs {
		if other := otherMember(&convs[i], userId); other != "" {
			others = append(others, other)
		}
	}
	briefs := s.userBriefs(ctx, others)

	rsp := make([]respond.ConversationSummaryRespond, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		summary := respond.ConversationSummaryRespond{
			ConversationId: c.Uuid,
			Kind:           conversation_kind_enum.String(c.Kind),
			Name:           c.Name,
			MemberCount:    len(c.Members),
			LastUpdatedAt:  c.UpdatedAt,
		}
		if m := c.Member(userId); m != nil {
			summary.Role = member_role_enum.String(m.Role)
		}
		if other := otherMember(c, userId); other != "" {
			brief, ok := briefs[other]
			if !ok {
				brief = respond.UserBriefRespond{UserId: other}
			}
			summary.OtherParticipant = &brief
		}
		rsp = append(rsp, summary)
	}
	return rsp, nil
}

// otherMember 双人会话中的另一方，群聊返回空串
func otherMember(c *model.Conversation, userId string) string {
	if c.Kind == conversation_kind_enum.Group {
		return ""
	}
	for _, m := range c.Members {
		if m.UserUuid != userId {
			return m.UserUuid
		}
	}
	return ""
}

func toMessageRespond(msg *model.Message, briefs map[string]respond.UserBriefRespond) respond.MessageRespond {
	brief := briefs[msg.SenderId]
	return respond.MessageRespond{
		MessageId:      msg.Uuid,
		ConversationId: msg.ConversationUuid,
		SenderId:       msg.SenderId,
		SenderUsername: brief.Username,
		SenderFullName: brief.FullName,
		SenderAvatar:   brief.ProfileImg,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}
