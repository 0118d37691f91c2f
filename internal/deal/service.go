package deal

import (
	"context"
	"fmt"
	"time"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// MutateFunc changes a deal loaded under lock and returns the status log to
// append, or nil when the status did not change. Returning an error discards
// every change made by the function.
type MutateFunc func(d *models.Deal) (*models.DealStatusLog, error)

// Store is the persistence the deal workflow needs.
type Store interface {
	GetChat(ctx context.Context, chatID uint) (*models.Chat, error)
	GetDealByChatID(ctx context.Context, chatID uint) (*models.Deal, error)
	GetDealByID(ctx context.Context, dealID uint) (*models.Deal, error)
	// CreateDealIfAbsent inserts d with its creation log unless the chat already has a deal.
	CreateDealIfAbsent(ctx context.Context, d *models.Deal, created models.DealStatusLog) (bool, error)
	// MutateDeal runs fn on the chat's deal inside one transaction holding a row lock,
	// saving the deal and the returned log together.
	MutateDeal(ctx context.Context, chatID uint, fn MutateFunc) (*models.Deal, error)
	ListUserDeals(ctx context.Context, userID string) ([]models.Deal, error)
	ListDealLogs(ctx context.Context, dealID uint) ([]models.DealStatusLog, error)
}

// Broadcaster pushes deal events to the chat room.
type Broadcaster interface {
	SendDealUpdate(chatID uint, deal models.DealOut)
	SendDealStatusChange(chatID uint, change models.DealStatusLog)
}

// StatusListener is notified after a status change is committed.
type StatusListener interface {
	OnDealStatusChanged(ctx context.Context, deal *models.Deal, change models.DealStatusLog)
}

// Service is the deal workflow used by the REST layer and the admin tools.
type Service struct {
	store     Store
	relay     Broadcaster
	listeners []StatusListener
	now       func() time.Time
}

func NewService(store Store, relay Broadcaster, listeners ...StatusListener) *Service {
	return &Service{store: store, relay: relay, listeners: listeners, now: time.Now}
}

// Propose creates the chat's deal when missing (proposer becomes the student)
// and stores the proposed terms.
func (s *Service) Propose(ctx context.Context, chatID uint, actorID string, terms models.DealTerms) (*models.Deal, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(actorID) {
		return nil, apperrors.ErrNotParticipant
	}

	d, created := NewDeal(chatID, actorID, chat.PartnerOf(actorID), s.now())
	if _, err := s.store.CreateDealIfAbsent(ctx, d, created); err != nil {
		return nil, fmt.Errorf("create deal for chat %d: %w", chatID, err)
	}

	var change *models.DealStatusLog
	updated, err := s.store.MutateDeal(ctx, chatID, func(d *models.Deal) (*models.DealStatusLog, error) {
		entry, err := ProposeTerms(d, terms, actorID, s.now())
		change = entry
		return entry, err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated, change)
	return updated, nil
}

// UpdateStatus moves the chat's deal to status. Errors: ErrInvalidStatus for an
// unknown value, ErrDealNotFound, ErrNotParticipant, ErrInvalidTransition.
func (s *Service) UpdateStatus(ctx context.Context, chatID uint, actorID, status, reason string) (*models.Deal, error) {
	target, ok := models.ParseDealStatus(status)
	if !ok {
		return nil, apperrors.ErrInvalidStatus.WithDetails(map[string]interface{}{"status": status, "allowed": models.DealStatuses})
	}

	var change *models.DealStatusLog
	updated, err := s.store.MutateDeal(ctx, chatID, func(d *models.Deal) (*models.DealStatusLog, error) {
		entry, err := UpdateStatus(d, target, actorID, reason, s.now())
		change = entry
		return entry, err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated, change)
	return updated, nil
}

// Cancel is the moderator path: it cancels the deal of a chat regardless of participation.
func (s *Service) Cancel(ctx context.Context, chatID uint, adminID, reason string) (*models.Deal, error) {
	var change *models.DealStatusLog
	updated, err := s.store.MutateDeal(ctx, chatID, func(d *models.Deal) (*models.DealStatusLog, error) {
		entry, err := Cancel(d, adminID, reason, s.now())
		change = entry
		return entry, err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated, change)
	return updated, nil
}

// GetByChatID returns the chat's deal to one of its participants.
func (s *Service) GetByChatID(ctx context.Context, chatID uint, actorID string) (*models.Deal, error) {
	d, err := s.store.GetDealByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !d.HasParticipant(actorID) {
		return nil, apperrors.ErrNotParticipant
	}
	return d, nil
}

// ListMine returns the user's non-canceled deals, most recently updated first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Deal, error) {
	return s.store.ListUserDeals(ctx, userID)
}

// Logs returns the status history of a deal to one of its participants.
func (s *Service) Logs(ctx context.Context, dealID uint, actorID string) ([]models.DealStatusLog, error) {
	d, err := s.store.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !d.HasParticipant(actorID) {
		return nil, apperrors.ErrNotParticipant
	}
	return s.store.ListDealLogs(ctx, dealID)
}

// publish emits room events and runs listeners once the change is committed.
func (s *Service) publish(ctx context.Context, d *models.Deal, change *models.DealStatusLog) {
	if s.relay != nil {
		s.relay.SendDealUpdate(d.ChatID, d.Out())
		if change != nil {
			s.relay.SendDealStatusChange(d.ChatID, *change)
		}
	}
	if change == nil {
		return
	}

	log.WithFields(log.Fields{
		"deal_id": d.ID,
		"chat_id": d.ChatID,
		"from":    lo.FromPtr(change.OldStatus),
		"to":      change.NewStatus,
		"actor":   change.ChangedByID,
	}).Info("deal status changed")

	for _, l := range s.listeners {
		l.OnDealStatusChanged(ctx, d, *change)
	}
}
