package models

import (
	"time"
)

// DealStatus is the negotiation state of a deal.
type DealStatus string

const (
	DealNew        DealStatus = "new"
	DealDiscussion DealStatus = "discussion"
	DealConfirmed  DealStatus = "confirmed"
	DealCompleted  DealStatus = "completed"
	DealCanceled   DealStatus = "canceled"
)

// DealStatuses lists every known status.
var DealStatuses = []DealStatus{DealNew, DealDiscussion, DealConfirmed, DealCompleted, DealCanceled}

// ParseDealStatus returns the status named by s and false for unknown values.
func ParseDealStatus(s string) (DealStatus, bool) {
	for _, st := range DealStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Deal is the negotiated-terms record attached to a single chat.
type Deal struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ChatID        uint       `gorm:"uniqueIndex;not null" json:"chat_id"` // одна угода на чат
	Status        DealStatus `gorm:"size:16;not null;default:new;index" json:"status"`
	StudentID     string     `gorm:"index;type:varchar(36);not null" json:"student_id"`
	TeacherID     string     `gorm:"index;type:varchar(36);not null" json:"teacher_id"`
	ProposedSkill *string    `gorm:"size:500" json:"proposed_skill"`
	ProposedTime  *string    `gorm:"size:200" json:"proposed_time"`
	ProposedPlace *string    `gorm:"size:500" json:"proposed_place"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`

	StatusLogs []DealStatusLog `gorm:"constraint:OnDelete:CASCADE" json:"status_logs"`
	Chat       *Chat           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Student    *User           `gorm:"foreignKey:StudentID" json:"-"`
	Teacher    *User           `gorm:"foreignKey:TeacherID" json:"-"`
}

// HasParticipant reports whether userID is the student or the teacher.
func (d *Deal) HasParticipant(userID string) bool {
	return d.StudentID == userID || d.TeacherID == userID
}

// CounterpartOf returns the other participant's ID, or "" for a non-participant.
func (d *Deal) CounterpartOf(userID string) string {
	switch userID {
	case d.StudentID:
		return d.TeacherID
	case d.TeacherID:
		return d.StudentID
	}
	return ""
}

// DealStatusLog is an append-only record of one status change.
type DealStatusLog struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	DealID      uint        `gorm:"index;not null" json:"deal_id"`
	OldStatus   *DealStatus `gorm:"size:16" json:"old_status"` // nil для запису про створення
	NewStatus   DealStatus  `gorm:"size:16;not null" json:"new_status"`
	ChangedByID string      `gorm:"type:varchar(36);not null" json:"changed_by_id"`
	Reason      *string     `gorm:"size:500" json:"reason"`
	CreatedAt   time.Time   `json:"created_at"`

	ChangedBy *User `gorm:"foreignKey:ChangedByID" json:"-"`
}

// DealTerms are the proposed skill/time/place.
type DealTerms struct {
	Skill string `json:"skill" binding:"max=500"`
	Time  string `json:"time" binding:"max=200"`
	Place string `json:"place" binding:"max=500"`
}

// DealStatusLogOut is the wire shape of a status log entry.
type DealStatusLogOut struct {
	ID            uint        `json:"id"`
	OldStatus     *DealStatus `json:"old_status"`
	NewStatus     DealStatus  `json:"new_status"`
	ChangedByID   string      `json:"changed_by_id"`
	ChangedByName string      `json:"changed_by_name"`
	Reason        *string     `json:"reason"`
	CreatedAt     time.Time   `json:"created_at"`
}

// DealOut is the full deal snapshot sent over REST and in deal_update events.
type DealOut struct {
	ID            uint               `json:"id"`
	ChatID        uint               `json:"chat_id"`
	Status        DealStatus         `json:"status"`
	StudentID     string             `json:"student_id"`
	TeacherID     string             `json:"teacher_id"`
	StudentName   string             `json:"student_name"`
	TeacherName   string             `json:"teacher_name"`
	ProposedSkill *string            `json:"proposed_skill"`
	ProposedTime  *string            `json:"proposed_time"`
	ProposedPlace *string            `json:"proposed_place"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	StatusLogs    []DealStatusLogOut `json:"status_logs"`
}

// Out builds the snapshot. Student, Teacher and each log's ChangedBy should be preloaded.
func (d *Deal) Out() DealOut {
	logs := make([]DealStatusLogOut, 0, len(d.StatusLogs))
	for _, l := range d.StatusLogs {
		logs = append(logs, l.Out())
	}
	return DealOut{
		ID:            d.ID,
		ChatID:        d.ChatID,
		Status:        d.Status,
		StudentID:     d.StudentID,
		TeacherID:     d.TeacherID,
		StudentName:   d.Student.DisplayName(),
		TeacherName:   d.Teacher.DisplayName(),
		ProposedSkill: d.ProposedSkill,
		ProposedTime:  d.ProposedTime,
		ProposedPlace: d.ProposedPlace,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		StatusLogs:    logs,
	}
}

// Out converts the log entry to its wire shape.
func (l DealStatusLog) Out() DealStatusLogOut {
	return DealStatusLogOut{
		ID:            l.ID,
		OldStatus:     l.OldStatus,
		NewStatus:     l.NewStatus,
		ChangedByID:   l.ChangedByID,
		ChangedByName: l.ChangedBy.DisplayName(),
		Reason:        l.Reason,
		CreatedAt:     l.CreatedAt,
	}
}

func (DealStatusLog) TableName() string { return "deal_status_logs" }
