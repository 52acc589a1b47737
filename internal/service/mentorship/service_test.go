package mentorship

import (
	"context"
	"testing"

	"campus_chat_server/internal/dao/memory"
	"campus_chat_server/internal/model"
	"campus_chat_server/internal/service/conversation"
	"campus_chat_server/pkg/errorx"
)

func newService(t *testing.T, users ...model.UserInfo) *mentorshipService {
	t.Helper()
	repos := memory.NewRepositories(memory.NewStore())
	for i := range users {
		u := users[i]
		u.Password = "x"
		if err := repos.User.Create(context.Background(), &u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return NewMentorshipService(repos, conversation.NewConversationService(repos, nil, nil))
}

func seedUsers() []model.UserInfo {
	return []model.UserInfo{
		{Uuid: "M1", Username: "mentor1", IsAvailableForMentorship: true, UserRole: "Alumni"},
		{Uuid: "M2", Username: "mentor2", IsAvailableForMentorship: true, UserRole: "Senior"},
		{Uuid: "BUSY", Username: "busy"},
		{Uuid: "S1", Username: "student1"},
		{Uuid: "S2", Username: "student2"},
	}
}

func TestListAvailableMentors(t *testing.T) {
	svc := newService(t, seedUsers()...)

	mentors, err := svc.ListAvailableMentors(context.Background(), "M1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mentors) != 1 || mentors[0].UserId != "M2" || mentors[0].UserRole != "Senior" {
		t.Fatalf("mentors = %+v, want only M2", mentors)
	}
}

func TestAssignMentorIsIdempotent(t *testing.T) {
	svc := newService(t, seedUsers()...)
	ctx := context.Background()

	first, err := svc.AssignMentor(ctx, "S1", "M1")
	if err != nil {
		t.Fatal(err)
	}
	again, err := svc.AssignMentor(ctx, "S1", "M1")
	if err != nil {
		t.Fatal(err)
	}
	if first.ConversationId != again.ConversationId {
		t.Fatal("reassigning the same mentor created a new conversation")
	}

	_, err = svc.AssignMentor(ctx, "S1", "M2")
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("second mentor err = %v, want InvalidParam", err)
	}
}

func TestAssignMentorRejections(t *testing.T) {
	svc := newService(t, seedUsers()...)
	ctx := context.Background()

	cases := []struct {
		name     string
		mentee   string
		mentor   string
		wantCode int
	}{
		{"self", "M1", "M1", errorx.CodeInvalidParam},
		{"unknown mentor", "S1", "ghost", errorx.CodeNotFound},
		{"unavailable mentor", "S1", "BUSY", errorx.CodeInvalidParam},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AssignMentor(ctx, tc.mentee, tc.mentor)
			if errorx.GetCode(err) != tc.wantCode {
				t.Fatalf("err = %v, want code %d", err, tc.wantCode)
			}
		})
	}
}

func TestListMentees(t *testing.T) {
	svc := newService(t, seedUsers()...)
	ctx := context.Background()

	a, _ := svc.AssignMentor(ctx, "S1", "M1")
	b, _ := svc.AssignMentor(ctx, "S2", "M1")

	mentees, err := svc.ListMentees(ctx, "M1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mentees) != 2 {
		t.Fatalf("mentees = %+v, want 2", mentees)
	}
	got := map[string]string{}
	for _, m := range mentees {
		got[m.UserId] = m.ConversationId
	}
	if got["S1"] != a.ConversationId || got["S2"] != b.ConversationId {
		t.Fatalf("mentees = %+v", mentees)
	}

	// 学员视角下没有学员
	none, err := svc.ListMentees(ctx, "S1")
	if err != nil || len(none) != 0 {
		t.Fatalf("ListMentees(S1) = %+v, %v", none, err)
	}
}
