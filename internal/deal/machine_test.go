package deal_test

import (
	"fmt"
	"testing"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/deal"
	"skillswap/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var legalTransitions = map[[2]models.DealStatus]bool{
	{models.DealNew, models.DealDiscussion}:       true,
	{models.DealNew, models.DealCanceled}:         true,
	{models.DealDiscussion, models.DealConfirmed}: true,
	{models.DealDiscussion, models.DealCanceled}:  true,
	{models.DealConfirmed, models.DealCompleted}:  true,
	{models.DealConfirmed, models.DealCanceled}:   true,
}

func testDeal(status models.DealStatus) *models.Deal {
	return &models.Deal{ID: 1, ChatID: 10, Status: status, StudentID: "student", TeacherID: "teacher"}
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for _, from := range models.DealStatuses {
		for _, to := range models.DealStatuses {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				d := testDeal(from)

				entry, err := deal.UpdateStatus(d, to, "teacher", "because", now)

				if legalTransitions[[2]models.DealStatus{from, to}] {
					require.NoError(t, err)
					require.NotNil(t, entry)
					assert.Equal(t, to, d.Status)
					assert.Equal(t, from, *entry.OldStatus)
					assert.Equal(t, to, entry.NewStatus)
					assert.Equal(t, "teacher", entry.ChangedByID)
					assert.Equal(t, "because", *entry.Reason)
					assert.Equal(t, now, entry.CreatedAt)
					return
				}

				assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
				assert.Nil(t, entry)
				assert.Equal(t, from, d.Status, "rejected transition must not mutate the deal")
				assert.True(t, d.UpdatedAt.IsZero())
			})
		}
	}
}

func TestUpdateStatus_NonParticipantAlwaysRejected(t *testing.T) {
	for _, from := range models.DealStatuses {
		for _, to := range models.DealStatuses {
			d := testDeal(from)

			entry, err := deal.UpdateStatus(d, to, "stranger", "", time.Now())

			assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
			assert.Nil(t, entry)
			assert.Equal(t, from, d.Status)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, deal.IsTerminal(models.DealCompleted))
	assert.True(t, deal.IsTerminal(models.DealCanceled))
	assert.False(t, deal.IsTerminal(models.DealNew))
	assert.Empty(t, deal.AllowedTransitions(models.DealCompleted))
	assert.ElementsMatch(t, []models.DealStatus{models.DealConfirmed, models.DealCanceled}, deal.AllowedTransitions(models.DealDiscussion))
}

func TestProposeTerms_AdvancesNewToDiscussion(t *testing.T) {
	d := testDeal(models.DealNew)

	entry, err := deal.ProposeTerms(d, models.DealTerms{Skill: "Go basics", Time: "Mon 18:00", Place: " "}, "teacher", time.Now())

	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.DealDiscussion, d.Status)
	assert.Equal(t, models.DealNew, *entry.OldStatus)
	assert.Equal(t, models.DealDiscussion, entry.NewStatus)
	assert.Equal(t, deal.ReasonNegotiationStarted, *entry.Reason)
	assert.Equal(t, "Go basics", *d.ProposedSkill)
	assert.Equal(t, "Mon 18:00", *d.ProposedTime)
	assert.Nil(t, d.ProposedPlace, "blank terms are stored as empty")
}

func TestProposeTerms_LaterStatusesOnlyUpdateTerms(t *testing.T) {
	for _, status := range []models.DealStatus{models.DealDiscussion, models.DealConfirmed} {
		d := testDeal(status)

		entry, err := deal.ProposeTerms(d, models.DealTerms{Skill: "Guitar"}, "student", time.Now())

		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.Equal(t, status, d.Status)
		assert.Equal(t, "Guitar", *d.ProposedSkill)
	}
}

func TestProposeTerms_Rejections(t *testing.T) {
	d := testDeal(models.DealNew)
	entry, err := deal.ProposeTerms(d, models.DealTerms{Skill: "x"}, "stranger", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	assert.Nil(t, entry)
	assert.Nil(t, d.ProposedSkill)
	assert.Equal(t, models.DealNew, d.Status)

	closed := testDeal(models.DealCompleted)
	_, err = deal.ProposeTerms(closed, models.DealTerms{Skill: "x"}, "student", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Nil(t, closed.ProposedSkill)
}

func TestCancel_IgnoresParticipation(t *testing.T) {
	d := testDeal(models.DealConfirmed)

	entry, err := deal.Cancel(d, "admin", "spam", time.Now())

	require.NoError(t, err)
	assert.Equal(t, models.DealCanceled, d.Status)
	assert.Equal(t, "admin", entry.ChangedByID)

	_, err = deal.Cancel(d, "admin", "again", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestNewDeal(t *testing.T) {
	d, created := deal.NewDeal(5, "student", "teacher", time.Now())

	assert.Equal(t, models.DealNew, d.Status)
	assert.Equal(t, uint(5), d.ChatID)
	assert.Nil(t, created.OldStatus)
	assert.Equal(t, models.DealNew, created.NewStatus)
	assert.Equal(t, deal.ReasonCreated, *created.Reason)
}
