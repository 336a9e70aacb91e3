package forum

import (
	"context"
	"errors"
	"unicode/utf8"

	"gorm.io/gorm"

	"sylmap/internal/models"
)

const maxThreadTitleLen = 150

type GormService struct {
	db *gorm.DB
}

func NewGormService(db *gorm.DB) *GormService {
	return &GormService{db: db}
}

func (s *GormService) GetForum(ctx context.Context, id uint64) (*models.Forum, error) {
	var item models.Forum
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormService) GetUser(ctx context.Context, id uint64) (*models.ForumUser, error) {
	var item models.ForumUser
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormService) GetThread(ctx context.Context, id uint64) (*models.Thread, error) {
	var item models.Thread
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormService) CreateThread(ctx context.Context, forumID, userID uint64, title, body string) (*models.Thread, error) {
	var msgs []string
	if title == "" {
		msgs = append(msgs, "please enter a valid thread title")
	} else if utf8.RuneCountInString(title) > maxThreadTitleLen {
		msgs = append(msgs, "thread title must be 150 characters or fewer")
	}
	if body == "" {
		msgs = append(msgs, "please enter a message body")
	}
	if len(msgs) > 0 {
		return nil, &ErrInvalidContent{Messages: msgs}
	}

	thread := &models.Thread{
		ForumID: forumID,
		UserID:  userID,
		Title:   title,
		Open:    true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		post := &models.Post{
			ThreadID: thread.ID,
			UserID:   userID,
			Message:  body,
			Position: 0,
		}
		return tx.Create(post).Error
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *GormService) UpdateTitle(ctx context.Context, threadID uint64, title string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Thread{}).
		Where("id = ?", threadID).
		Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormService) SetOpen(ctx context.Context, threadID uint64, open bool) error {
	res := s.db.WithContext(ctx).
		Model(&models.Thread{}).
		Where("id = ?", threadID).
		Update("open", open)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormService) ReplaceFirstPost(ctx context.Context, threadID uint64, body string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("thread_id = ?", threadID).
		Where("position = 0").
		Update("message", body)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
