package models

import (
	"time"
)

// Forum entities back the discussion-thread collaborator. The map core only
// touches them through the forum.Service contract.

type Forum struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement" json:"forum_id"`
	Title string `gorm:"type:varchar(150);not null" json:"title"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (Forum) TableName() string {
	return "forums"
}

type ForumUser struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Username string `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (ForumUser) TableName() string {
	return "forum_users"
}

type Thread struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"thread_id"`
	ForumID uint64 `gorm:"not null;index" json:"forum_id"`
	UserID  uint64 `gorm:"not null;index" json:"user_id"`
	Title   string `gorm:"type:varchar(150);not null" json:"title"`
	Open    bool   `gorm:"not null;default:true" json:"open"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Thread) TableName() string {
	return "threads"
}

type Post struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"post_id"`
	ThreadID uint64 `gorm:"not null;index" json:"thread_id"`
	UserID   uint64 `gorm:"not null" json:"user_id"`
	Message  string `gorm:"type:text;not null" json:"message"`
	Position int    `gorm:"not null;default:0;index" json:"position"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
