package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"sylmap/internal/models"
)

// ErrNotFound is returned by id lookups when no row exists.
var ErrNotFound = errors.New("record not found")

// Repository is the narrow store contract consumed by the map services.
// Methods suffixed Tx run against the supplied transaction handle; a nil tx
// falls back to the base connection.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Markers.
	ListActiveMarkers(ctx context.Context, typeFilter string) ([]models.Marker, error)
	ListMarkers(ctx context.Context, params ListMarkersParams) ([]models.Marker, int64, error)
	ListAllMarkers(ctx context.Context) ([]models.Marker, error)
	GetMarkerByID(ctx context.Context, id uint64) (*models.Marker, error)
	CreateMarker(ctx context.Context, item *models.Marker) error
	SaveMarker(ctx context.Context, item *models.Marker) error
	DeleteMarker(ctx context.Context, item *models.Marker) error
	ListUpcomingEventMarkers(ctx context.Context, now time.Time, limit int) ([]models.Marker, error)
	ListExpiredEventMarkers(ctx context.Context, now time.Time) ([]models.Marker, error)

	CreateMarkerTx(ctx context.Context, tx *gorm.DB, item *models.Marker) error
	SaveMarkerTx(ctx context.Context, tx *gorm.DB, item *models.Marker) error
	FindMarkerByPlacementTx(ctx context.Context, tx *gorm.DB, lat, lng float64, title string) (*models.Marker, error)

	// Suggestions.
	ListPendingSuggestions(ctx context.Context, params ListSuggestionsParams) ([]models.Suggestion, int64, error)
	ListAllSuggestions(ctx context.Context) ([]models.Suggestion, error)
	GetSuggestionByID(ctx context.Context, id uint64) (*models.Suggestion, error)
	CreateSuggestion(ctx context.Context, item *models.Suggestion) error
	DeleteSuggestion(ctx context.Context, item *models.Suggestion) error
	ListTerminalSuggestionsBefore(ctx context.Context, cutoff time.Time) ([]models.Suggestion, error)

	CreateSuggestionTx(ctx context.Context, tx *gorm.DB, item *models.Suggestion) error
	SaveSuggestionTx(ctx context.Context, tx *gorm.DB, item *models.Suggestion) error
	FindSuggestionByPlacementTx(ctx context.Context, tx *gorm.DB, lat, lng float64, title string) (*models.Suggestion, error)

	// TransitionSuggestionStatusTx flips a suggestion from one status to
	// another as a single conditional update. It reports false when no row
	// changed, meaning the suggestion was already past the expected status.
	TransitionSuggestionStatusTx(ctx context.Context, tx *gorm.DB, id uint64, from, to string) (bool, error)

	// Import audit.
	CreateImportRun(ctx context.Context, item *models.ImportRun) error
	ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error)
}

type ListMarkersParams struct {
	Page    int
	PerPage int
}

type ListSuggestionsParams struct {
	Page    int
	PerPage int
}
