package models

import "time"

type AdminActionType string

const (
	ActionUserBanned    AdminActionType = "user_banned"
	ActionUserUnbanned  AdminActionType = "user_unbanned"
	ActionAdDeleted     AdminActionType = "ad_deleted"
	ActionAdHidden      AdminActionType = "ad_hidden"
	ActionAdRestored    AdminActionType = "ad_restored"
	ActionChatDeleted   AdminActionType = "chat_deleted"
	ActionDealCancelled AdminActionType = "deal_cancelled"
	ActionDealModified  AdminActionType = "deal_modified"
)

// AdminLog records one moderation action.
type AdminLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AdminID      string          `gorm:"index;type:varchar(36);not null" json:"admin_id"`
	ActionType   AdminActionType `gorm:"size:32;index;not null" json:"action_type"`
	TargetUserID *string         `gorm:"type:varchar(36)" json:"target_user_id"`
	TargetAdID   *string         `gorm:"type:varchar(36)" json:"target_ad_id"`
	TargetChatID *uint           `json:"target_chat_id"`
	TargetDealID *uint           `json:"target_deal_id"`
	Reason       string          `gorm:"size:500" json:"reason"`
	Details      string          `gorm:"type:text" json:"details"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers    int64                `json:"total_users"`
	ActiveUsers   int64                `json:"active_users"`
	BannedUsers   int64                `json:"banned_users"`
	TotalAds      int64                `json:"total_ads"`
	TotalChats    int64                `json:"total_chats"`
	TotalMessages int64                `json:"total_messages"`
	TotalDeals    int64                `json:"total_deals"`
	DealsByStatus map[DealStatus]int64 `json:"deals_by_status"`
	RecentActions []AdminLog           `json:"recent_actions"`
}

// UserFilter is a paginated admin users query.
type UserFilter struct {
	Search   string
	Role     *UserRole
	IsActive *bool
	Page     int
	PageSize int
}

// Page is a generic paginated response body.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int   `json:"pages"`
}

// NewPage fills in the page count: ceil(total/pageSize), at least 1.
func NewPage[T any](items []T, total int64, page, pageSize int) Page[T] {
	pages := 1
	if total > 0 && pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize, Pages: pages}
}

func (AdminLog) TableName() string { return "admin_logs" }
