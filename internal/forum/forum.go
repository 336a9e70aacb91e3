// Package forum is the discussion-thread collaborator consumed by the
// thread synchronization service. The map core only depends on the Service
// contract; the gorm implementation backs it with the forum tables.
package forum

import (
	"context"
	"errors"

	"sylmap/internal/models"
)

var ErrNotFound = errors.New("forum record not found")

// ErrInvalidContent is returned when submitted thread content fails the
// forum's own validation.
type ErrInvalidContent struct {
	Messages []string
}

func (e *ErrInvalidContent) Error() string {
	if len(e.Messages) == 0 {
		return "invalid thread content"
	}
	return e.Messages[0]
}

type Service interface {
	GetForum(ctx context.Context, id uint64) (*models.Forum, error)
	GetUser(ctx context.Context, id uint64) (*models.ForumUser, error)
	GetThread(ctx context.Context, id uint64) (*models.Thread, error)

	// CreateThread validates (title required, at most 150 characters; body
	// required) and on success returns the created thread with its id set.
	CreateThread(ctx context.Context, forumID, userID uint64, title, body string) (*models.Thread, error)

	UpdateTitle(ctx context.Context, threadID uint64, title string) error
	SetOpen(ctx context.Context, threadID uint64, open bool) error

	// ReplaceFirstPost rewrites the body of the thread's opening post. It
	// fails with ErrNotFound when the first post cannot be located.
	ReplaceFirstPost(ctx context.Context, threadID uint64, body string) error
}
