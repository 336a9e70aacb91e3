package models

import (
	"time"
)

// Marker is a published point of interest on the community map.
type Marker struct {
	ID      uint64  `gorm:"primaryKey;autoIncrement" json:"marker_id"`
	Lat     float64 `gorm:"not null;index:idx_markers_placement" json:"lat"`
	Lng     float64 `gorm:"not null;index:idx_markers_placement" json:"lng"`
	Title   string  `gorm:"type:varchar(100);not null" json:"title"`
	Content string  `gorm:"type:text" json:"content"`

	Icon        string `gorm:"type:varchar(50)" json:"icon"`
	IconVariant string `gorm:"column:icon_var;type:varchar(20);default:'solid'" json:"icon_var"`
	IconColor   string `gorm:"type:varchar(30);default:'black'" json:"icon_color"`
	MarkerColor string `gorm:"type:varchar(30);default:'blue'" json:"marker_color"`
	Type        string `gorm:"type:varchar(50);index" json:"type"`

	UserID *uint64 `gorm:"index" json:"user_id"`

	CreateThread bool    `gorm:"not null;default:false" json:"create_thread"`
	ThreadID     *uint64 `gorm:"index" json:"thread_id"`
	ThreadLock   bool    `gorm:"not null;default:false" json:"thread_lock"`

	Active bool `gorm:"not null;default:true;index" json:"active"`

	StartDate *time.Time `gorm:"type:timestamptz" json:"start_date"`
	EndDate   *time.Time `gorm:"type:timestamptz;index" json:"end_date"`

	CreateDate time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"create_date"`
	UpdateDate time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"update_date"`
}

func (Marker) TableName() string {
	return "map_markers"
}

// HasEventWindow reports whether the marker is time-bounded.
func (m *Marker) HasEventWindow() bool {
	return m.StartDate != nil && m.EndDate != nil
}
