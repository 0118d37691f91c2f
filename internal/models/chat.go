package models

import "time"

// Chat is the conversation between an ad author (User1) and a responder (User2).
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdID      string    `gorm:"index;type:varchar(36);not null" json:"ad_id"`
	User1ID   string    `gorm:"index;type:varchar(36);not null" json:"user1_id"`
	User2ID   string    `gorm:"index;type:varchar(36);not null" json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`

	Ad    *Ad   `gorm:"constraint:OnDelete:CASCADE" json:"ad,omitempty"`
	User1 *User `gorm:"foreignKey:User1ID" json:"-"`
	User2 *User `gorm:"foreignKey:User2ID" json:"-"`
}

// HasMember reports whether userID is one of the two chat users.
func (c *Chat) HasMember(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// PartnerOf returns the other member's ID, or "" if userID is not a member.
func (c *Chat) PartnerOf(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}

// Message is a persisted chat message.
type Message struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ChatID    uint       `gorm:"index;not null" json:"chat_id"`
	SenderID  string     `gorm:"index;type:varchar(36);not null" json:"sender_id"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`

	Chat   *Chat `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Sender *User `gorm:"foreignKey:SenderID" json:"-"`
}

// MessageOut is the wire shape of a message.
type MessageOut struct {
	ID         uint       `json:"id"`
	ChatID     uint       `json:"chat_id"`
	SenderID   string     `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
}

// Out converts the message to its wire shape; Sender must be preloaded for a real name.
func (m *Message) Out() MessageOut {
	return MessageOut{
		ID:         m.ID,
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		SenderName: m.Sender.DisplayName(),
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
		ReadAt:     m.ReadAt,
	}
}

// ChatSummary is a chat as shown in the user's chat list.
type ChatSummary struct {
	ID          uint        `json:"id"`
	AdID        string      `json:"ad_id"`
	AdTitle     string      `json:"ad_title"`
	PartnerID   string      `json:"partner_id"`
	PartnerName string      `json:"partner_name"`
	LastMessage *MessageOut `json:"last_message"`
	UnreadCount int64       `json:"unread_count"`
	DealStatus  *DealStatus `json:"deal_status"`
	CreatedAt   time.Time   `json:"created_at"`
}
