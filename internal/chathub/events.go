package chathub

import (
	"time"

	"skillswap/backend/internal/models"
)

const (
	EventMessage          = "message"
	EventTyping           = "typing"
	EventDealUpdate       = "deal_update"
	EventDealStatusChange = "deal_status_change"
	EventError            = "error"
)

// Event is the JSON envelope of every server-to-client frame.
// message and deal_update carry everything in Data; typing and
// deal_status_change also set ChatID and UserID on the envelope.
type Event struct {
	Type   string `json:"type"`
	ChatID uint   `json:"chat_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
	// IsTyping mirrors TypingData.IsTyping on the envelope for older web clients.
	IsTyping *bool       `json:"is_typing,omitempty"`
	Data     interface{} `json:"data"`
}

// TypingData is the payload of a typing event.
type TypingData struct {
	IsTyping bool `json:"is_typing"`
}

// StatusChangeData is the payload of a deal_status_change event.
type StatusChangeData struct {
	OldStatus *models.DealStatus `json:"old_status"`
	NewStatus models.DealStatus  `json:"new_status"`
	ChangedBy string             `json:"changed_by"`
	Reason    *string            `json:"reason"`
	Timestamp time.Time          `json:"timestamp"`
}

// ErrorData is sent back to a single connection when one of its frames is rejected.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewMessageEvent(msg models.MessageOut) Event {
	return Event{Type: EventMessage, Data: msg}
}

func NewTypingEvent(chatID uint, userID string, isTyping bool) Event {
	return Event{
		Type:     EventTyping,
		ChatID:   chatID,
		UserID:   userID,
		IsTyping: &isTyping,
		Data:     TypingData{IsTyping: isTyping},
	}
}

func NewDealUpdateEvent(deal models.DealOut) Event {
	return Event{Type: EventDealUpdate, Data: deal}
}

func NewDealStatusChangeEvent(chatID uint, change models.DealStatusLog) Event {
	ts := change.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return Event{
		Type:   EventDealStatusChange,
		ChatID: chatID,
		UserID: change.ChangedByID,
		Data: StatusChangeData{
			OldStatus: change.OldStatus,
			NewStatus: change.NewStatus,
			ChangedBy: change.ChangedByID,
			Reason:    change.Reason,
			Timestamp: ts.UTC(),
		},
	}
}

func NewErrorEvent(code, message string) Event {
	return Event{Type: EventError, Data: ErrorData{Code: code, Message: message}}
}

// InboundFrame is a client-to-server WebSocket frame.
type InboundFrame struct {
	Type string      `json:"type"`
	Data InboundData `json:"data"`
}

// InboundData holds the fields of every inbound frame type.
type InboundData struct {
	Text     string `json:"text"`
	IsTyping bool   `json:"is_typing"`
}
