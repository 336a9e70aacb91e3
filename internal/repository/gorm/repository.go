package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"sylmap/internal/models"
	"sylmap/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// handle picks the transaction when one is supplied.
func (s *Store) handle(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// --- Markers ----------------------------------------------------------------

func (s *Store) ListActiveMarkers(ctx context.Context, typeFilter string) ([]models.Marker, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Marker{}).
		Where("active = ?", true).
		Order("create_date desc")
	if strings.TrimSpace(typeFilter) != "" {
		query = query.Where("type = ?", strings.TrimSpace(typeFilter))
	}
	var items []models.Marker
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListMarkers(ctx context.Context, params repository.ListMarkersParams) ([]models.Marker, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Marker{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := normalizeLimit(params.PerPage, 20)
	var items []models.Marker
	err := s.db.WithContext(ctx).
		Model(&models.Marker{}).
		Order("create_date desc").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) ListAllMarkers(ctx context.Context) ([]models.Marker, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Marker
	if err := s.db.WithContext(ctx).
		Model(&models.Marker{}).
		Order("create_date desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetMarkerByID(ctx context.Context, id uint64) (*models.Marker, error) {
	if s == nil || s.db == nil {
		return nil, repository.ErrNotFound
	}
	var item models.Marker
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateMarker(ctx context.Context, item *models.Marker) error {
	return s.CreateMarkerTx(ctx, nil, item)
}

func (s *Store) SaveMarker(ctx context.Context, item *models.Marker) error {
	return s.SaveMarkerTx(ctx, nil, item)
}

func (s *Store) DeleteMarker(ctx context.Context, item *models.Marker) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(item).Error
}

func (s *Store) ListUpcomingEventMarkers(ctx context.Context, now time.Time, limit int) ([]models.Marker, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 10)
	var items []models.Marker
	err := s.db.WithContext(ctx).
		Model(&models.Marker{}).
		Where("active = ?", true).
		Where("start_date IS NOT NULL").
		Where("end_date IS NOT NULL").
		Where("end_date >= ?", now).
		Order("start_date asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListExpiredEventMarkers(ctx context.Context, now time.Time) ([]models.Marker, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Marker
	err := s.db.WithContext(ctx).
		Model(&models.Marker{}).
		Where("active = ?", true).
		Where("end_date IS NOT NULL").
		Where("end_date < ?", now).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateMarkerTx(ctx context.Context, tx *gorm.DB, item *models.Marker) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.handle(ctx, tx).Create(item).Error
}

func (s *Store) SaveMarkerTx(ctx context.Context, tx *gorm.DB, item *models.Marker) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.handle(ctx, tx).Save(item).Error
}

func (s *Store) FindMarkerByPlacementTx(ctx context.Context, tx *gorm.DB, lat, lng float64, title string) (*models.Marker, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.handle(ctx, tx).
		Model(&models.Marker{}).
		Where("lat = ?", lat).
		Where("lng = ?", lng)
	if title != "" {
		query = query.Where("title = ?", title)
	}
	var item models.Marker
	err := query.First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Suggestions ------------------------------------------------------------

func (s *Store) ListPendingSuggestions(ctx context.Context, params repository.ListSuggestionsParams) ([]models.Suggestion, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, nil
	}
	base := s.db.WithContext(ctx).
		Model(&models.Suggestion{}).
		Where("status = ?", models.SuggestionPending)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := normalizeLimit(params.PerPage, 20)
	var items []models.Suggestion
	err := base.
		Order("create_date desc").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) ListAllSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Suggestion
	if err := s.db.WithContext(ctx).
		Model(&models.Suggestion{}).
		Order("create_date desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetSuggestionByID(ctx context.Context, id uint64) (*models.Suggestion, error) {
	if s == nil || s.db == nil {
		return nil, repository.ErrNotFound
	}
	var item models.Suggestion
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateSuggestion(ctx context.Context, item *models.Suggestion) error {
	return s.CreateSuggestionTx(ctx, nil, item)
}

func (s *Store) DeleteSuggestion(ctx context.Context, item *models.Suggestion) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(item).Error
}

func (s *Store) ListTerminalSuggestionsBefore(ctx context.Context, cutoff time.Time) ([]models.Suggestion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Suggestion
	err := s.db.WithContext(ctx).
		Model(&models.Suggestion{}).
		Where("status IN ?", []string{models.SuggestionApproved, models.SuggestionRejected}).
		Where("create_date < ?", cutoff).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateSuggestionTx(ctx context.Context, tx *gorm.DB, item *models.Suggestion) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.handle(ctx, tx).Create(item).Error
}

func (s *Store) SaveSuggestionTx(ctx context.Context, tx *gorm.DB, item *models.Suggestion) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.handle(ctx, tx).Save(item).Error
}

func (s *Store) FindSuggestionByPlacementTx(ctx context.Context, tx *gorm.DB, lat, lng float64, title string) (*models.Suggestion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.handle(ctx, tx).
		Model(&models.Suggestion{}).
		Where("lat = ?", lat).
		Where("lng = ?", lng)
	if title != "" {
		query = query.Where("title = ?", title)
	}
	var item models.Suggestion
	err := query.First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) TransitionSuggestionStatusTx(ctx context.Context, tx *gorm.DB, id uint64, from, to string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.handle(ctx, tx).
		Model(&models.Suggestion{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// --- Import audit -----------------------------------------------------------

func (s *Store) CreateImportRun(ctx context.Context, item *models.ImportRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	var items []models.ImportRun
	err := s.db.WithContext(ctx).
		Model(&models.ImportRun{}).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
