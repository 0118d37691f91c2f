package chathub

import (
	"context"
	"encoding/json"
	"time"

	"skillswap/backend/internal/models"

	log "github.com/sirupsen/logrus"
)

// Publisher forwards serialized room events to other server instances.
type Publisher interface {
	Publish(ctx context.Context, roomID uint, payload []byte) error
}

// Relay serializes typed events and fans them out to a room through the registry.
type Relay struct {
	registry  *Registry
	publisher Publisher
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

// SetPublisher enables cross-instance delivery.
func (r *Relay) SetPublisher(p Publisher) {
	r.publisher = p
}

// Registry exposes the underlying connection registry.
func (r *Relay) Registry() *Registry {
	return r.registry
}

// Broadcast delivers ev to roomID except exclude, then forwards it to other instances.
// Failures never propagate to the caller.
func (r *Relay) Broadcast(roomID uint, ev Event, exclude Client) int {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).WithField("type", ev.Type).Error("ERROR: failed to encode event")
		return 0
	}

	delivered := r.registry.Broadcast(roomID, payload, exclude)

	if r.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.publisher.Publish(ctx, roomID, payload); err != nil {
			log.WithError(err).WithField("room", roomID).Warn("WARN: failed to publish room event")
		}
	}
	return delivered
}

// DeliverLocal hands an already serialized event to local connections only.
func (r *Relay) DeliverLocal(roomID uint, payload []byte) int {
	return r.registry.Broadcast(roomID, payload, nil)
}

// SendTo writes ev to a single connection.
func (r *Relay) SendTo(c Client, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.Send(payload)
}

func (r *Relay) SendMessage(chatID uint, msg models.MessageOut, exclude Client) {
	r.Broadcast(chatID, NewMessageEvent(msg), exclude)
}

func (r *Relay) SendTyping(chatID uint, userID string, isTyping bool, exclude Client) {
	r.Broadcast(chatID, NewTypingEvent(chatID, userID, isTyping), exclude)
}

func (r *Relay) SendDealUpdate(chatID uint, deal models.DealOut) {
	r.Broadcast(chatID, NewDealUpdateEvent(deal), nil)
}

func (r *Relay) SendDealStatusChange(chatID uint, change models.DealStatusLog) {
	r.Broadcast(chatID, NewDealStatusChangeEvent(chatID, change), nil)
}
