package mongo

import (
	"strconv"
	"time"

	"campus_chat_server/internal/model"
)

type userDoc struct {
	Uuid                     string    `bson:"_id"`
	Username                 string    `bson:"username"`
	FullName                 string    `bson:"full_name"`
	Email                    string    `bson:"email,omitempty"`
	Password                 string    `bson:"password"`
	ProfileImg               string    `bson:"profile_img,omitempty"`
	CollegeName              string    `bson:"college_name,omitempty"`
	Course                   string    `bson:"course,omitempty"`
	BatchYear                int       `bson:"batch_year,omitempty"`
	UserRole                 string    `bson:"user_role"`
	IsAvailableForMentorship bool      `bson:"is_available_for_mentorship"`
	Status                   int8      `bson:"status"`
	CreatedAt                time.Time `bson:"created_at"`
	UpdatedAt                time.Time `bson:"updated_at"`
}

func newUserDoc(u *model.UserInfo) userDoc {
	return userDoc{
		Uuid:                     u.Uuid,
		Username:                 u.Username,
		FullName:                 u.FullName,
		Email:                    u.Email,
		Password:                 u.Password,
		ProfileImg:               u.ProfileImg,
		CollegeName:              u.CollegeName,
		Course:                   u.Course,
		BatchYear:                u.BatchYear,
		UserRole:                 u.UserRole,
		IsAvailableForMentorship: u.IsAvailableForMentorship,
		Status:                   u.Status,
		CreatedAt:                u.CreatedAt,
		UpdatedAt:                u.UpdatedAt,
	}
}

func (d userDoc) model() model.UserInfo {
	u := model.UserInfo{
		Uuid:                     d.Uuid,
		Username:                 d.Username,
		FullName:                 d.FullName,
		Email:                    d.Email,
		Password:                 d.Password,
		ProfileImg:               d.ProfileImg,
		CollegeName:              d.CollegeName,
		Course:                   d.Course,
		BatchYear:                d.BatchYear,
		UserRole:                 d.UserRole,
		IsAvailableForMentorship: d.IsAvailableForMentorship,
		Status:                   d.Status,
	}
	u.CreatedAt = d.CreatedAt
	u.UpdatedAt = d.UpdatedAt
	return u
}

type memberDoc struct {
	UserUuid string `bson:"user_id"`
	Role     int8   `bson:"role"`
}

type conversationDoc struct {
	Uuid      string      `bson:"_id"`
	Kind      int8        `bson:"kind"`
	PairKey   *string     `bson:"pair_key,omitempty"`
	Name      string      `bson:"name,omitempty"`
	AdminId   string      `bson:"admin_id,omitempty"`
	Members   []memberDoc `bson:"members"`
	CreatedAt time.Time   `bson:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

func newConversationDoc(c *model.Conversation) conversationDoc {
	doc := conversationDoc{
		Uuid:      c.Uuid,
		Kind:      c.Kind,
		PairKey:   c.PairKey,
		Name:      c.Name,
		AdminId:   c.AdminId,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, m := range c.Members {
		doc.Members = append(doc.Members, memberDoc{UserUuid: m.UserUuid, Role: m.Role})
	}
	return doc
}

func (d conversationDoc) model() model.Conversation {
	c := model.Conversation{
		Uuid:    d.Uuid,
		Kind:    d.Kind,
		PairKey: d.PairKey,
		Name:    d.Name,
		AdminId: d.AdminId,
	}
	c.CreatedAt = d.CreatedAt
	c.UpdatedAt = d.UpdatedAt
	for _, m := range d.Members {
		c.Members = append(c.Members, model.ConversationMember{
			ConversationUuid: d.Uuid,
			UserUuid:         m.UserUuid,
			Role:             m.Role,
		})
	}
	return c
}

// messageDoc 以雪花 ID 作为 _id，同一毫秒内按 _id 排序即写入顺序
type messageDoc struct {
	ID               int64     `bson:"_id"`
	ConversationUuid string    `bson:"conversation_id"`
	SenderId         string    `bson:"sender_id"`
	Content          string    `bson:"content"`
	CreatedAt        time.Time `bson:"created_at"`
}

func newMessageDoc(m *model.Message) (messageDoc, error) {
	id, err := strconv.ParseInt(m.Uuid, 10, 64)
	if err != nil {
		return messageDoc{}, err
	}
	return messageDoc{
		ID:               id,
		ConversationUuid: m.ConversationUuid,
		SenderId:         m.SenderId,
		Content:          m.Content,
		CreatedAt:        m.CreatedAt,
	}, nil
}

func (d messageDoc) model() model.Message {
	return model.Message{
		Uuid:             strconv.FormatInt(d.ID, 10),
		ConversationUuid: d.ConversationUuid,
		SenderId:         d.SenderId,
		Content:          d.Content,
		CreatedAt:        d.CreatedAt,
	}
}
