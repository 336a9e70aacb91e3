package models

import (
	"time"
)

const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionRejected = "rejected"
)

// Suggestion is a visitor-proposed marker awaiting moderator review.
// Once a suggestion leaves the pending state it is immutable except for
// deletion by the retention job.
type Suggestion struct {
	ID      uint64  `gorm:"primaryKey;autoIncrement" json:"suggestion_id"`
	Lat     float64 `gorm:"not null;index:idx_suggestions_placement" json:"lat"`
	Lng     float64 `gorm:"not null;index:idx_suggestions_placement" json:"lng"`
	Title   string  `gorm:"type:varchar(100);not null" json:"title"`
	Content string  `gorm:"type:text" json:"content"`

	Icon        string `gorm:"type:varchar(50)" json:"icon"`
	IconVariant string `gorm:"column:icon_var;type:varchar(20);default:'solid'" json:"icon_var"`
	IconColor   string `gorm:"type:varchar(30);default:'black'" json:"icon_color"`
	MarkerColor string `gorm:"type:varchar(30);default:'blue'" json:"marker_color"`
	Type        string `gorm:"type:varchar(50)" json:"type"`

	UserID *uint64 `gorm:"index" json:"user_id"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	CreateThread bool `gorm:"not null;default:false" json:"create_thread"`
	ThreadLock   bool `gorm:"not null;default:false" json:"thread_lock"`

	StartDate *time.Time `gorm:"type:timestamptz" json:"start_date"`
	EndDate   *time.Time `gorm:"type:timestamptz" json:"end_date"`

	CreateDate time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"create_date"`
}

func (Suggestion) TableName() string {
	return "map_marker_suggestions"
}
