package models_test

import (
	"testing"

	"skillswap/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseDealStatus(t *testing.T) {
	for _, st := range models.DealStatuses {
		got, ok := models.ParseDealStatus(string(st))
		assert.True(t, ok)
		assert.Equal(t, st, got)
	}

	_, ok := models.ParseDealStatus("Confirmed")
	assert.False(t, ok, "status values are lowercase")
	_, ok = models.ParseDealStatus("archived")
	assert.False(t, ok)
}

func TestDealParticipants(t *testing.T) {
	deal := &models.Deal{StudentID: "a", TeacherID: "b"}

	assert.True(t, deal.HasParticipant("a"))
	assert.True(t, deal.HasParticipant("b"))
	assert.False(t, deal.HasParticipant("c"))
	assert.Equal(t, "b", deal.CounterpartOf("a"))
	assert.Equal(t, "a", deal.CounterpartOf("b"))
	assert.Empty(t, deal.CounterpartOf("c"))
}

func TestChatPartnerOf(t *testing.T) {
	chat := &models.Chat{User1ID: "author", User2ID: "responder"}

	assert.True(t, chat.HasMember("author"))
	assert.Equal(t, "responder", chat.PartnerOf("author"))
	assert.Equal(t, "author", chat.PartnerOf("responder"))
	assert.Empty(t, chat.PartnerOf("stranger"))
}

func TestDealOut_UsesNamesAndLogs(t *testing.T) {
	created := models.DealNew
	reason := "negotiation started"
	deal := &models.Deal{
		ID:        7,
		ChatID:    3,
		Status:    models.DealDiscussion,
		StudentID: "s",
		TeacherID: "t",
		Student:   &models.User{ID: "s", Profile: &models.UserProfile{FirstName: "Ivan", LastName: "Sidorov"}},
		StatusLogs: []models.DealStatusLog{
			{ID: 1, NewStatus: models.DealNew, ChangedByID: "s"},
			{ID: 2, OldStatus: &created, NewStatus: models.DealDiscussion, ChangedByID: "t", Reason: &reason},
		},
	}

	out := deal.Out()

	assert.Equal(t, "Ivan Sidorov", out.StudentName)
	assert.Equal(t, "User", out.TeacherName)
	assert.Len(t, out.StatusLogs, 2)
	assert.Nil(t, out.StatusLogs[0].OldStatus)
	assert.Equal(t, models.DealDiscussion, out.StatusLogs[1].NewStatus)
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, 1, models.NewPage[int](nil, 0, 1, 20).Pages)
	assert.Equal(t, 1, models.NewPage([]int{1}, 20, 1, 20).Pages)
	assert.Equal(t, 2, models.NewPage([]int{1}, 21, 2, 20).Pages)
	assert.NotNil(t, models.NewPage[int](nil, 0, 1, 20).Items)
}
