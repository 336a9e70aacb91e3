package mapdata

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sylmap/internal/models"
	"sylmap/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository
// with a snapshot-based rollback for InTx.
type stubRepo struct {
	markers     map[uint64]*models.Marker
	suggestions map[uint64]*models.Suggestion
	importRuns  []*models.ImportRun
	nextID      uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		markers:     map[uint64]*models.Marker{},
		suggestions: map[uint64]*models.Suggestion{},
	}
}

func (s *stubRepo) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *stubRepo) addMarker(m *models.Marker) *models.Marker {
	if m.ID == 0 {
		m.ID = s.id()
	}
	s.markers[m.ID] = m
	return m
}

func (s *stubRepo) addSuggestion(item *models.Suggestion) *models.Suggestion {
	if item.ID == 0 {
		item.ID = s.id()
	}
	s.suggestions[item.ID] = item
	return item
}

// InTx snapshots both stores and restores them when fn fails, mimicking a
// transaction rollback.
func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	markersBefore := map[uint64]*models.Marker{}
	for id, m := range s.markers {
		copied := *m
		markersBefore[id] = &copied
	}
	suggestionsBefore := map[uint64]*models.Suggestion{}
	for id, item := range s.suggestions {
		copied := *item
		suggestionsBefore[id] = &copied
	}

	if err := fn(nil); err != nil {
		s.markers = markersBefore
		s.suggestions = suggestionsBefore
		return err
	}
	return nil
}

func (s *stubRepo) ListActiveMarkers(ctx context.Context, typeFilter string) ([]models.Marker, error) {
	return nil, nil
}

func (s *stubRepo) ListMarkers(ctx context.Context, params repository.ListMarkersParams) ([]models.Marker, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) ListAllMarkers(ctx context.Context) ([]models.Marker, error) {
	var out []models.Marker
	for _, m := range s.markers {
		out = append(out, *m)
	}
	return out, nil
}

func (s *stubRepo) GetMarkerByID(ctx context.Context, id uint64) (*models.Marker, error) {
	if m, ok := s.markers[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) CreateMarker(ctx context.Context, item *models.Marker) error {
	return s.CreateMarkerTx(ctx, nil, item)
}

func (s *stubRepo) SaveMarker(ctx context.Context, item *models.Marker) error {
	return s.SaveMarkerTx(ctx, nil, item)
}

func (s *stubRepo) DeleteMarker(ctx context.Context, item *models.Marker) error {
	delete(s.markers, item.ID)
	return nil
}

func (s *stubRepo) ListUpcomingEventMarkers(ctx context.Context, now time.Time, limit int) ([]models.Marker, error) {
	return nil, nil
}

func (s *stubRepo) ListExpiredEventMarkers(ctx context.Context, now time.Time) ([]models.Marker, error) {
	return nil, nil
}

func (s *stubRepo) CreateMarkerTx(ctx context.Context, tx *gorm.DB, item *models.Marker) error {
	s.addMarker(item)
	return nil
}

func (s *stubRepo) SaveMarkerTx(ctx context.Context, tx *gorm.DB, item *models.Marker) error {
	copied := *item
	s.markers[item.ID] = &copied
	return nil
}

func (s *stubRepo) FindMarkerByPlacementTx(ctx context.Context, tx *gorm.DB, lat, lng float64, title string) (*models.Marker, error) {
	for _, m := range s.markers {
		if m.Lat == lat && m.Lng == lng && (title == "" || m.Title == title) {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListPendingSuggestions(ctx context.Context, params repository.ListSuggestionsParams) ([]models.Suggestion, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) ListAllSuggestions(ctx context.Context) ([]models.Suggestion, error) {
	var out []models.Suggestion
	for _, item := range s.suggestions {
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubRepo) GetSuggestionByID(ctx context.Context, id uint64) (*models.Suggestion, error) {
	if item, ok := s.suggestions[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) CreateSuggestion(ctx context.Context, item *models.Suggestion) error {
	return s.CreateSuggestionTx(ctx, nil, item)
}

func (s *stubRepo) DeleteSuggestion(ctx context.Context, item *models.Suggestion) error {
	delete(s.suggestions, item.ID)
	return nil
}

func (s *stubRepo) ListTerminalSuggestionsBefore(ctx context.Context, cutoff time.Time) ([]models.Suggestion, error) {
	return nil, nil
}

func (s *stubRepo) CreateSuggestionTx(ctx context.Context, tx *gorm.DB, item *models.Suggestion) error {
	s.addSuggestion(item)
	return nil
}

func (s *stubRepo) SaveSuggestionTx(ctx context.Context, tx *gorm.DB, item *models.Suggestion) error {
	copied := *item
	s.suggestions[item.ID] = &copied
	return nil
}

func (s *stubRepo) FindSuggestionByPlacementTx(ctx context.Context, tx *gorm.DB, lat, lng float64, title string) (*models.Suggestion, error) {
	for _, item := range s.suggestions {
		if item.Lat == lat && item.Lng == lng && (title == "" || item.Title == title) {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) TransitionSuggestionStatusTx(ctx context.Context, tx *gorm.DB, id uint64, from, to string) (bool, error) {
	item, ok := s.suggestions[id]
	if !ok || item.Status != from {
		return false, nil
	}
	item.Status = to
	return true, nil
}

func (s *stubRepo) CreateImportRun(ctx context.Context, item *models.ImportRun) error {
	s.importRuns = append(s.importRuns, item)
	return nil
}

func (s *stubRepo) ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	var out []models.ImportRun
	for _, item := range s.importRuns {
		out = append(out, *item)
	}
	return out, nil
}
