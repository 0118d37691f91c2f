// Package deal implements the negotiation workflow attached to a chat.
package deal

import (
	"strings"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"github.com/samber/lo"
)

const (
	ReasonCreated            = "deal created"
	ReasonNegotiationStarted = "negotiation started"
)

// transitions is the fixed transition table. Completed and Canceled have no outgoing edges.
var transitions = map[models.DealStatus][]models.DealStatus{
	models.DealNew:        {models.DealDiscussion, models.DealCanceled},
	models.DealDiscussion: {models.DealConfirmed, models.DealCanceled},
	models.DealConfirmed:  {models.DealCompleted, models.DealCanceled},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to models.DealStatus) bool {
	return lo.Contains(transitions[from], to)
}

// AllowedTransitions returns the statuses reachable from s in one step.
func AllowedTransitions(s models.DealStatus) []models.DealStatus {
	return append([]models.DealStatus(nil), transitions[s]...)
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.DealStatus) bool {
	return len(transitions[s]) == 0
}

// NewDeal builds a deal in status New together with its creation log entry.
func NewDeal(chatID uint, studentID, teacherID string, now time.Time) (*models.Deal, models.DealStatusLog) {
	d := &models.Deal{
		ChatID:    chatID,
		Status:    models.DealNew,
		StudentID: studentID,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return d, models.DealStatusLog{
		NewStatus:   models.DealNew,
		ChangedByID: studentID,
		Reason:      lo.ToPtr(ReasonCreated),
		CreatedAt:   now,
	}
}

// ProposeTerms stores the proposed skill/time/place on d.
//
// When d is still New it is advanced to Discussion and the returned log entry
// records that step; otherwise the status is left alone and the log is nil.
// A non-participant gets ErrNotParticipant and d is not touched; terms of a
// completed or canceled deal are frozen.
func ProposeTerms(d *models.Deal, terms models.DealTerms, actorID string, now time.Time) (*models.DealStatusLog, error) {
	if !d.HasParticipant(actorID) {
		return nil, apperrors.ErrNotParticipant
	}
	if IsTerminal(d.Status) {
		return nil, apperrors.ErrInvalidTransition.WithMessage("Deal is closed, terms cannot be changed")
	}

	d.ProposedSkill = optional(terms.Skill)
	d.ProposedTime = optional(terms.Time)
	d.ProposedPlace = optional(terms.Place)
	d.UpdatedAt = now

	if d.Status != models.DealNew {
		return nil, nil
	}
	return advance(d, models.DealDiscussion, actorID, ReasonNegotiationStarted, now), nil
}

// UpdateStatus moves d to status on behalf of a participant.
// It fails with ErrNotParticipant or ErrInvalidTransition and leaves d untouched.
func UpdateStatus(d *models.Deal, status models.DealStatus, actorID, reason string, now time.Time) (*models.DealStatusLog, error) {
	if !d.HasParticipant(actorID) {
		return nil, apperrors.ErrNotParticipant
	}
	return transition(d, status, actorID, reason, now)
}

// Cancel moves d to Canceled on behalf of a moderator who is not a participant.
func Cancel(d *models.Deal, actorID, reason string, now time.Time) (*models.DealStatusLog, error) {
	return transition(d, models.DealCanceled, actorID, reason, now)
}

func transition(d *models.Deal, status models.DealStatus, actorID, reason string, now time.Time) (*models.DealStatusLog, error) {
	if !CanTransition(d.Status, status) {
		return nil, apperrors.ErrInvalidTransition.WithDetails(map[string]interface{}{
			"from":    d.Status,
			"to":      status,
			"allowed": AllowedTransitions(d.Status),
		})
	}
	return advance(d, status, actorID, reason, now), nil
}

func advance(d *models.Deal, status models.DealStatus, actorID, reason string, now time.Time) *models.DealStatusLog {
	old := d.Status
	d.Status = status
	d.UpdatedAt = now
	return &models.DealStatusLog{
		DealID:      d.ID,
		OldStatus:   &old,
		NewStatus:   status,
		ChangedByID: actorID,
		Reason:      optional(reason),
		CreatedAt:   now,
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
