package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sylmap/internal/models"
	"sylmap/internal/repository"
	"sylmap/internal/validate"
)

// errAlreadyHandled signals that a review action lost the race: the
// suggestion was no longer pending when the conditional transition ran.
var errAlreadyHandled = errors.New("suggestion already reviewed")

// SuggestionService is the suggestion store plus the review state machine.
// Suggestions move pending -> approved or pending -> rejected; both are
// terminal and enforced by a conditional status update, so a second moderator
// acting on the same suggestion gets a clean false instead of a second
// marker.
type SuggestionService struct {
	Repo    repository.Repository
	Threads *ThreadSyncService
	Logger  *zap.Logger
}

func (s *SuggestionService) GetPending(ctx context.Context, page, perPage int) ([]models.Suggestion, int64, error) {
	return s.Repo.ListPendingSuggestions(ctx, repository.ListSuggestionsParams{Page: page, PerPage: perPage})
}

func (s *SuggestionService) GetByID(ctx context.Context, id uint64) (*models.Suggestion, error) {
	return s.Repo.GetSuggestionByID(ctx, id)
}

// Create validates and persists a visitor-submitted suggestion.
func (s *SuggestionService) Create(ctx context.Context, sugg *models.Suggestion) error {
	if err := validate.Suggestion(sugg); err != nil {
		return err
	}
	if err := s.Repo.CreateSuggestion(ctx, sugg); err != nil {
		return err
	}
	s.Logger.Info("map marker suggestion created",
		zap.Uint64("suggestion_id", sugg.ID),
		zap.Float64("lat", sugg.Lat),
		zap.Float64("lng", sugg.Lng),
		zap.String("type", sugg.Type),
		zap.Uint64p("user_id", sugg.UserID),
	)
	return nil
}

// Approve materializes a pending suggestion into a marker. The status
// transition and marker creation share one transaction; thread creation is a
// best-effort step after commit whose failure never unwinds the approval.
// Returns false on any failure, including a suggestion that was already
// reviewed.
func (s *SuggestionService) Approve(ctx context.Context, id uint64, actingUserID *uint64) bool {
	sugg, err := s.Repo.GetSuggestionByID(ctx, id)
	if err != nil {
		s.Logger.Error("suggestion approval failed", zap.Uint64("suggestion_id", id), zap.Error(err))
		return false
	}

	marker := &models.Marker{
		Lat:          sugg.Lat,
		Lng:          sugg.Lng,
		Title:        sugg.Title,
		Content:      sugg.Content,
		Icon:         sugg.Icon,
		IconVariant:  sugg.IconVariant,
		IconColor:    sugg.IconColor,
		MarkerColor:  sugg.MarkerColor,
		Type:         sugg.Type,
		UserID:       sugg.UserID,
		Active:       true,
		CreateThread: sugg.CreateThread,
		ThreadLock:   sugg.ThreadLock,
		StartDate:    sugg.StartDate,
		EndDate:      sugg.EndDate,
	}
	if err := validate.Marker(marker); err != nil {
		s.Logger.Error("suggestion approval failed", zap.Uint64("suggestion_id", id), zap.Error(err))
		return false
	}

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.Repo.TransitionSuggestionStatusTx(ctx, tx, id, models.SuggestionPending, models.SuggestionApproved)
		if err != nil {
			return err
		}
		if !ok {
			return errAlreadyHandled
		}
		return s.Repo.CreateMarkerTx(ctx, tx, marker)
	})
	if errors.Is(err, errAlreadyHandled) {
		s.Logger.Warn("suggestion already reviewed, approval skipped",
			zap.Uint64("suggestion_id", id), zap.String("status", sugg.Status))
		return false
	}
	if err != nil {
		s.Logger.Error("suggestion approval failed", zap.Uint64("suggestion_id", id), zap.Error(err))
		return false
	}

	s.Logger.Info("map marker suggestion approved",
		zap.Uint64("suggestion_id", sugg.ID),
		zap.Uint64("marker_id", marker.ID),
		zap.Float64("lat", sugg.Lat),
		zap.Float64("lng", sugg.Lng),
		zap.String("type", sugg.Type),
		zap.Uint64p("user_id", sugg.UserID),
		zap.Uint64p("approved_by", actingUserID),
	)

	if sugg.CreateThread && s.Threads != nil {
		if !s.Threads.CreateThreadForMarker(ctx, marker, "") {
			s.Logger.Warn("thread creation for approved suggestion failed, marker kept",
				zap.Uint64("suggestion_id", sugg.ID),
				zap.Uint64("marker_id", marker.ID))
		}
	}

	return true
}

// Reject moves a pending suggestion to rejected. Same terminal-state guard
// and false-on-failure policy as Approve.
func (s *SuggestionService) Reject(ctx context.Context, id uint64, actingUserID *uint64) bool {
	sugg, err := s.Repo.GetSuggestionByID(ctx, id)
	if err != nil {
		s.Logger.Error("suggestion rejection failed", zap.Uint64("suggestion_id", id), zap.Error(err))
		return false
	}

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.Repo.TransitionSuggestionStatusTx(ctx, tx, id, models.SuggestionPending, models.SuggestionRejected)
		if err != nil {
			return err
		}
		if !ok {
			return errAlreadyHandled
		}
		return nil
	})
	if errors.Is(err, errAlreadyHandled) {
		s.Logger.Warn("suggestion already reviewed, rejection skipped",
			zap.Uint64("suggestion_id", id), zap.String("status", sugg.Status))
		return false
	}
	if err != nil {
		s.Logger.Error("suggestion rejection failed", zap.Uint64("suggestion_id", id), zap.Error(err))
		return false
	}

	s.Logger.Info("map marker suggestion rejected",
		zap.Uint64("suggestion_id", sugg.ID),
		zap.Float64("lat", sugg.Lat),
		zap.Float64("lng", sugg.Lng),
		zap.String("type", sugg.Type),
		zap.Uint64p("user_id", sugg.UserID),
		zap.Uint64p("rejected_by", actingUserID),
	)
	return true
}

// CleanupOld deletes approved and rejected suggestions older than the given
// number of days. Returns the number deleted.
func (s *SuggestionService) CleanupOld(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays <= 0 {
		olderThanDays = 30
	}
	cutoff := time.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)

	suggestions, err := s.Repo.ListTerminalSuggestionsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	details := make([]map[string]any, 0, len(suggestions))
	for i := range suggestions {
		sugg := &suggestions[i]
		details = append(details, map[string]any{
			"suggestion_id": sugg.ID,
			"title":         sugg.Title,
			"status":        sugg.Status,
			"create_date":   sugg.CreateDate,
		})
		if err := s.Repo.DeleteSuggestion(ctx, sugg); err != nil {
			s.Logger.Error("suggestion cleanup delete failed",
				zap.Uint64("suggestion_id", sugg.ID), zap.Error(err))
			continue
		}
		count++
	}

	if count > 0 {
		s.Logger.Info("old reviewed suggestions deleted",
			zap.Int("count", count),
			zap.Int("cutoff_days", olderThanDays),
			zap.Time("cutoff", cutoff),
			zap.Any("suggestions", details),
		)
	}
	return count, nil
}
