package deal_test

import (
	"context"
	"sort"
	"sync"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/deal"
	"skillswap/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// memoryStore keeps deals in memory and serializes MutateDeal like a row lock would.
type memoryStore struct {
	mu        sync.Mutex
	chats     map[uint]*models.Chat
	deals     map[uint]*models.Deal
	nextDeal  uint
	nextLog   uint
	mutations int
}

func newMemoryStore(chats ...*models.Chat) *memoryStore {
	s := &memoryStore{chats: map[uint]*models.Chat{}, deals: map[uint]*models.Deal{}}
	for _, c := range chats {
		s.chats[c.ID] = c
	}
	return s
}

func cloneDeal(d *models.Deal) *models.Deal {
	cp := *d
	cp.StatusLogs = append([]models.DealStatusLog(nil), d.StatusLogs...)
	return &cp
}

func (s *memoryStore) GetChat(_ context.Context, chatID uint) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return nil, apperrors.ErrChatNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) GetDealByChatID(_ context.Context, chatID uint) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[chatID]
	if !ok {
		return nil, apperrors.ErrDealNotFound
	}
	return cloneDeal(d), nil
}

func (s *memoryStore) GetDealByID(_ context.Context, dealID uint) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.deals {
		if d.ID == dealID {
			return cloneDeal(d), nil
		}
	}
	return nil, apperrors.ErrDealNotFound
}

func (s *memoryStore) CreateDealIfAbsent(_ context.Context, d *models.Deal, created models.DealStatusLog) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deals[d.ChatID]; ok {
		return false, nil
	}
	s.nextDeal++
	s.nextLog++
	d.ID = s.nextDeal
	created.ID = s.nextLog
	created.DealID = d.ID
	d.StatusLogs = []models.DealStatusLog{created}
	s.deals[d.ChatID] = cloneDeal(d)
	return true, nil
}

func (s *memoryStore) MutateDeal(_ context.Context, chatID uint, fn deal.MutateFunc) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.deals[chatID]
	if !ok {
		return nil, apperrors.ErrDealNotFound
	}
	work := cloneDeal(current)
	entry, err := fn(work)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		s.nextLog++
		entry.ID = s.nextLog
		entry.DealID = work.ID
		work.StatusLogs = append(work.StatusLogs, *entry)
	}
	s.mutations++
	s.deals[chatID] = work
	return cloneDeal(work), nil
}

func (s *memoryStore) ListUserDeals(_ context.Context, userID string) ([]models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Deal
	for _, d := range s.deals {
		if d.HasParticipant(userID) && d.Status != models.DealCanceled {
			out = append(out, *cloneDeal(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *memoryStore) ListDealLogs(ctx context.Context, dealID uint) ([]models.DealStatusLog, error) {
	d, err := s.GetDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	return d.StatusLogs, nil
}

func (s *memoryStore) snapshot(chatID uint) *models.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.deals[chatID]; ok {
		return cloneDeal(d)
	}
	return nil
}

// MockBroadcaster is a testify mock of deal.Broadcaster.
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) SendDealUpdate(chatID uint, d models.DealOut) {
	m.Called(chatID, d)
}

func (m *MockBroadcaster) SendDealStatusChange(chatID uint, change models.DealStatusLog) {
	m.Called(chatID, change)
}

type recordingListener struct {
	mu      sync.Mutex
	changes []models.DealStatusLog
}

func (l *recordingListener) OnDealStatusChanged(_ context.Context, _ *models.Deal, change models.DealStatusLog) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, change)
}
