package mapdata

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"sylmap/internal/models"
	"sylmap/internal/validate"
)

func newImporter(repo *stubRepo) *Importer {
	return &Importer{Repo: repo, Logger: zap.NewNop()}
}

func TestImport_CreatesNewRecords(t *testing.T) {
	repo := newStubRepo()
	imp := newImporter(repo)
	data := &Data{
		Markers: []Record{
			{"lat": 51.5, "lng": -0.09, "title": "Test"},
			{"lat": 1.0, "lng": 2.0, "title": "Second"},
		},
		Suggestions: []Record{
			{"lat": 3.0, "lng": 4.0, "title": "Idea"},
		},
	}

	res, err := imp.Import(context.Background(), data, RunInfo{Filename: "f.json", Format: FormatJSON})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Markers.Created != 2 || res.Markers.Updated != 0 {
		t.Fatalf("markers=%+v", res.Markers)
	}
	if res.Suggestions.Created != 1 {
		t.Fatalf("suggestions=%+v", res.Suggestions)
	}
	if len(repo.markers) != 2 || len(repo.suggestions) != 1 {
		t.Fatalf("stored markers=%d suggestions=%d", len(repo.markers), len(repo.suggestions))
	}
	// Validation defaults land on created records.
	for _, m := range repo.markers {
		if m.IconVariant != validate.DefaultIconVariant {
			t.Fatalf("icon variant=%q want default", m.IconVariant)
		}
	}
}

func TestImport_UpdatesMatchingMarker(t *testing.T) {
	repo := newStubRepo()
	existing := repo.addMarker(&models.Marker{
		Lat: 51.5, Lng: -0.09, Title: "Test", Content: "old", Active: true,
	})
	imp := newImporter(repo)
	data := &Data{
		Markers: []Record{
			{"lat": 51.5, "lng": -0.09, "title": "Test", "content": "new"},
		},
		Suggestions: []Record{},
	}

	res, err := imp.Import(context.Background(), data, RunInfo{Format: FormatJSON})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Markers.Updated != 1 || res.Markers.Created != 0 {
		t.Fatalf("markers=%+v want update", res.Markers)
	}
	if len(repo.markers) != 1 {
		t.Fatalf("stored=%d want 1", len(repo.markers))
	}
	if repo.markers[existing.ID].Content != "new" {
		t.Fatalf("content=%q want overwritten", repo.markers[existing.ID].Content)
	}
}

func TestImport_ReimportIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	imp := newImporter(repo)
	data := &Data{
		Markers:     []Record{{"lat": 1.0, "lng": 2.0, "title": "A"}},
		Suggestions: []Record{},
	}

	if _, err := imp.Import(context.Background(), data, RunInfo{Format: FormatJSON}); err != nil {
		t.Fatalf("first import: %v", err)
	}
	res, err := imp.Import(context.Background(), data, RunInfo{Format: FormatJSON})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if res.Markers.Created != 0 || res.Markers.Updated != 1 {
		t.Fatalf("second import markers=%+v want pure update", res.Markers)
	}
	if len(repo.markers) != 1 {
		t.Fatalf("stored=%d want 1", len(repo.markers))
	}
}

func TestImport_SkipsReviewedSuggestion(t *testing.T) {
	repo := newStubRepo()
	reviewed := repo.addSuggestion(&models.Suggestion{
		Lat: 1, Lng: 2, Title: "Done", Content: "verdict stands",
		Status: models.SuggestionApproved,
	})
	pending := repo.addSuggestion(&models.Suggestion{
		Lat: 3, Lng: 4, Title: "Open", Content: "old",
		Status: models.SuggestionPending,
	})
	imp := newImporter(repo)
	data := &Data{
		Markers: []Record{},
		Suggestions: []Record{
			{"lat": 1.0, "lng": 2.0, "title": "Done", "content": "overwrite attempt", "status": "pending"},
			{"lat": 3.0, "lng": 4.0, "title": "Open", "content": "new"},
		},
	}

	res, err := imp.Import(context.Background(), data, RunInfo{Format: FormatJSON})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Suggestions.Skipped != 1 || res.Suggestions.Updated != 1 || res.Suggestions.Created != 0 {
		t.Fatalf("suggestions=%+v", res.Suggestions)
	}
	if repo.suggestions[reviewed.ID].Content != "verdict stands" {
		t.Fatal("reviewed suggestion overwritten")
	}
	if repo.suggestions[reviewed.ID].Status != models.SuggestionApproved {
		t.Fatal("review verdict lost")
	}
	if repo.suggestions[pending.ID].Content != "new" {
		t.Fatal("pending suggestion not updated")
	}
}

func TestImport_RollsBackOnValidationFailure(t *testing.T) {
	repo := newStubRepo()
	imp := newImporter(repo)
	data := &Data{
		Markers: []Record{
			{"lat": 1.0, "lng": 2.0, "title": "Good"},
			{"lat": 200.0, "lng": 2.0, "title": "Bad coords"},
		},
		Suggestions: []Record{},
	}

	_, err := imp.Import(context.Background(), data, RunInfo{Format: FormatJSON})
	if err == nil {
		t.Fatal("want validation error")
	}
	if !validate.IsValidationError(err) {
		t.Fatalf("err=%v want validation error", err)
	}
	if len(repo.markers) != 0 {
		t.Fatalf("stored=%d want rollback to empty", len(repo.markers))
	}
	if len(repo.importRuns) != 0 {
		t.Fatal("audit row written for failed import")
	}
}

func TestImport_MissingCoordinatesRejected(t *testing.T) {
	repo := newStubRepo()
	imp := newImporter(repo)
	data := &Data{
		Markers:     []Record{{"title": "No coords"}},
		Suggestions: []Record{},
	}

	if _, err := imp.Import(context.Background(), data, RunInfo{Format: FormatJSON}); err == nil {
		t.Fatal("want validation error for absent coordinates")
	}
}

func TestImport_WritesAuditRun(t *testing.T) {
	repo := newStubRepo()
	imp := newImporter(repo)
	data := &Data{
		Markers:     []Record{{"lat": 1.0, "lng": 2.0, "title": "A"}},
		Suggestions: []Record{},
	}

	if _, err := imp.Import(context.Background(), data, RunInfo{Filename: "dump.sql", Format: FormatScript}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.importRuns) != 1 {
		t.Fatalf("runs=%d want 1", len(repo.importRuns))
	}
	run := repo.importRuns[0]
	if run.RunID == "" || run.Filename != "dump.sql" || run.Format != FormatScript {
		t.Fatalf("run=%+v", run)
	}
	var stats Result
	if err := json.Unmarshal(run.Stats, &stats); err != nil {
		t.Fatalf("stats not json: %v", err)
	}
	if stats.Markers.Created != 1 {
		t.Fatalf("stats=%+v", stats)
	}
}
