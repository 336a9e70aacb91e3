package mapdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sylmap/internal/models"
	"sylmap/internal/repository"
	"sylmap/internal/validate"
)

// SectionStats counts the outcomes of one import section.
type SectionStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

func (s SectionStats) total() int {
	return s.Created + s.Updated + s.Skipped
}

// Result is the per-section and combined outcome of one import run.
type Result struct {
	Markers     SectionStats `json:"markers"`
	Suggestions SectionStats `json:"suggestions"`
}

func (r *Result) MarkerCount() int     { return r.Markers.total() }
func (r *Result) SuggestionCount() int { return r.Suggestions.total() }
func (r *Result) Count() int           { return r.Markers.total() + r.Suggestions.total() }

// RunInfo describes the upload being imported, for the audit trail.
type RunInfo struct {
	Filename string
	Format   string
	UserID   *uint64
}

// Importer reconciles parsed import data against existing records inside a
// single all-or-nothing transaction.
type Importer struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// Import applies data atomically. Markers are matched on exact coordinates
// plus title and always updated or created. Suggestions follow the same
// match but a non-pending match is skipped: a review verdict is never
// overwritten. Any failure rolls the whole batch back.
func (imp *Importer) Import(ctx context.Context, data *Data, info RunInfo) (*Result, error) {
	start := time.Now()
	res := &Result{}

	err := imp.Repo.InTx(ctx, func(tx *gorm.DB) error {
		for _, rec := range data.Markers {
			incoming := markerFromRecord(rec)
			if err := validate.Marker(incoming); err != nil {
				return err
			}

			existing, err := imp.Repo.FindMarkerByPlacementTx(ctx, tx, incoming.Lat, incoming.Lng, incoming.Title)
			if err != nil {
				return err
			}
			if existing != nil {
				applyMarker(existing, incoming)
				if err := imp.Repo.SaveMarkerTx(ctx, tx, existing); err != nil {
					return err
				}
				res.Markers.Updated++
			} else {
				if err := imp.Repo.CreateMarkerTx(ctx, tx, incoming); err != nil {
					return err
				}
				res.Markers.Created++
			}
		}

		for _, rec := range data.Suggestions {
			incoming := suggestionFromRecord(rec)
			if err := validate.Suggestion(incoming); err != nil {
				return err
			}

			existing, err := imp.Repo.FindSuggestionByPlacementTx(ctx, tx, incoming.Lat, incoming.Lng, incoming.Title)
			if err != nil {
				return err
			}
			switch {
			case existing != nil && existing.Status != models.SuggestionPending:
				res.Suggestions.Skipped++
			case existing != nil:
				applySuggestion(existing, incoming)
				if err := imp.Repo.SaveSuggestionTx(ctx, tx, existing); err != nil {
					return err
				}
				res.Suggestions.Updated++
			default:
				if err := imp.Repo.CreateSuggestionTx(ctx, tx, incoming); err != nil {
					return err
				}
				res.Suggestions.Created++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	imp.recordRun(ctx, res, info, duration)

	imp.Logger.Info("map data imported",
		zap.String("filename", info.Filename),
		zap.String("format", info.Format),
		zap.Int("markers_created", res.Markers.Created),
		zap.Int("markers_updated", res.Markers.Updated),
		zap.Int("suggestions_created", res.Suggestions.Created),
		zap.Int("suggestions_updated", res.Suggestions.Updated),
		zap.Int("suggestions_skipped", res.Suggestions.Skipped),
		zap.Duration("duration", duration),
	)
	return res, nil
}

// recordRun writes the audit row. Failures here never fail the import.
func (imp *Importer) recordRun(ctx context.Context, res *Result, info RunInfo, duration time.Duration) {
	stats, err := json.Marshal(res)
	if err != nil {
		stats = []byte("{}")
	}
	run := &models.ImportRun{
		RunID:      uuid.NewString(),
		Filename:   info.Filename,
		Format:     info.Format,
		Stats:      datatypes.JSON(stats),
		DurationMs: duration.Milliseconds(),
		UserID:     info.UserID,
	}
	if err := imp.Repo.CreateImportRun(ctx, run); err != nil {
		imp.Logger.Warn("recording import run failed", zap.Error(err))
	}
}
