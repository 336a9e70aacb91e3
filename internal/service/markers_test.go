package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"sylmap/internal/config"
	"sylmap/internal/models"
)

func newMarkerService(repo *stubRepo) *MarkerService {
	return &MarkerService{
		Repo:   repo,
		Logger: zap.NewNop(),
		Cfg:    config.MapConfig{StartingLat: 51.505, StartingLng: -0.09, EventLimit: 10},
	}
}

func TestGetActive_FiltersByType(t *testing.T) {
	repo := newStubRepo()
	svc := newMarkerService(repo)
	repo.addMarker(&models.Marker{Title: "a", Type: "park", Active: true})
	repo.addMarker(&models.Marker{Title: "b", Type: "shop", Active: true})
	repo.addMarker(&models.Marker{Title: "c", Type: "park", Active: false})

	items, err := svc.GetActive(context.Background(), "park")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "a" {
		t.Fatalf("items=%+v want only active park", items)
	}
}

func TestCreate_RejectsInvalidMarker(t *testing.T) {
	repo := newStubRepo()
	svc := newMarkerService(repo)

	err := svc.Create(context.Background(), &models.Marker{Title: "", Lat: 0, Lng: 0})
	if err == nil {
		t.Fatal("want validation error")
	}
	if len(repo.markers) != 0 {
		t.Fatalf("invalid marker persisted: %d", len(repo.markers))
	}
}

func TestUpdate_ReturnsNilOnValidationFailure(t *testing.T) {
	repo := newStubRepo()
	svc := newMarkerService(repo)
	m := repo.addMarker(&models.Marker{Title: "Lake Park", Lat: 1, Lng: 2, Active: true})

	got := svc.Update(context.Background(), m.ID, MarkerUpdate{Title: "", Lat: 1, Lng: 2}, nil)
	if got != nil {
		t.Fatal("want nil on validation failure")
	}
	if repo.markers[m.ID].Title != "Lake Park" {
		t.Fatalf("stored title=%q want unchanged", repo.markers[m.ID].Title)
	}
}

func TestUpdate_AppliesFields(t *testing.T) {
	repo := newStubRepo()
	svc := newMarkerService(repo)
	m := repo.addMarker(&models.Marker{Title: "Old", Lat: 1, Lng: 2, Active: true})

	got := svc.Update(context.Background(), m.ID, MarkerUpdate{
		Title: "New", Lat: 3, Lng: 4, Type: "park", Active: false,
	}, nil)
	if got == nil {
		t.Fatal("want updated marker")
	}
	stored := repo.markers[m.ID]
	if stored.Title != "New" || stored.Lat != 3 || stored.Lng != 4 || stored.Active {
		t.Fatalf("stored=%+v", stored)
	}
}

func TestDelete(t *testing.T) {
	repo := newStubRepo()
	svc := newMarkerService(repo)
	m := repo.addMarker(&models.Marker{Title: "t", Active: true})

	if !svc.Delete(context.Background(), m.ID) {
		t.Fatal("delete failed")
	}
	if len(repo.markers) != 0 {
		t.Fatal("marker still stored")
	}
	if svc.Delete(context.Background(), m.ID) {
		t.Fatal("second delete reported success")
	}
}

func TestProcessForDisplay_EscapesAndDedupes(t *testing.T) {
	svc := newMarkerService(newStubRepo())
	markers := []models.Marker{
		{Title: "<b>Bold</b>", Content: "a & b", Icon: "tree", Type: "park", Active: true},
		{Title: "Second", Icon: "tree", Type: "park", Active: true},
		{Title: "Hidden", Type: "secret", Active: false},
	}

	out := svc.ProcessForDisplay(markers, false)
	if len(out.Markers) != 2 {
		t.Fatalf("markers=%d want 2", len(out.Markers))
	}
	if out.Markers[0].Title != "&lt;b&gt;Bold&lt;/b&gt;" {
		t.Fatalf("title=%q want escaped", out.Markers[0].Title)
	}
	if out.Markers[0].Content != "a &amp; b" {
		t.Fatalf("content=%q want escaped", out.Markers[0].Content)
	}
	if len(out.MarkerTypes) != 1 || out.MarkerTypes[0].Name != "park" {
		t.Fatalf("types=%+v want single park", out.MarkerTypes)
	}
	if out.AllMarkers != nil {
		t.Fatal("AllMarkers leaked to non-manager")
	}
}

func TestProcessForDisplay_SentinelDefault(t *testing.T) {
	svc := newMarkerService(newStubRepo())

	out := svc.ProcessForDisplay(nil, false)
	if len(out.Markers) != 1 {
		t.Fatalf("markers=%d want sentinel only", len(out.Markers))
	}
	sentinel := out.Markers[0]
	if sentinel.Title != "Default Marker" || sentinel.Icon != "frown" {
		t.Fatalf("sentinel=%+v", sentinel)
	}
	if sentinel.Lat != 51.505 || sentinel.Lng != -0.09 {
		t.Fatalf("sentinel at %v,%v want configured start", sentinel.Lat, sentinel.Lng)
	}

	// All markers inactive also yields the sentinel.
	out = svc.ProcessForDisplay([]models.Marker{{Title: "t", Active: false}}, false)
	if len(out.Markers) != 1 || out.Markers[0].Title != "Default Marker" {
		t.Fatalf("markers=%+v want sentinel", out.Markers)
	}
}

func TestProcessForDisplay_ManagerGetsRawCollection(t *testing.T) {
	svc := newMarkerService(newStubRepo())
	markers := []models.Marker{
		{Title: "Visible", Type: "a", Active: true},
		{Title: "Hidden", Type: "b", Active: false},
	}

	out := svc.ProcessForDisplay(markers, true)
	if len(out.AllMarkers) != 2 {
		t.Fatalf("AllMarkers=%d want 2", len(out.AllMarkers))
	}
	if len(out.Markers) != 1 {
		t.Fatalf("markers=%d want only active", len(out.Markers))
	}
}

func TestFontAwesomePrefix(t *testing.T) {
	cases := map[string]string{
		"solid":   "fas",
		"regular": "far",
		"light":   "fal",
		"brands":  "fab",
		"duotone": "fad",
		"unknown": "fas",
		"":        "fas",
	}
	for variant, want := range cases {
		if got := FontAwesomePrefix(variant); got != want {
			t.Fatalf("prefix(%q)=%q want %q", variant, got, want)
		}
	}
}

func TestGetEventMarkers_RequiresFullWindow(t *testing.T) {
	repo := newStubRepo()
	svc := newMarkerService(repo)
	start := time.Now().Add(time.Hour)
	end := time.Now().Add(2 * time.Hour)
	repo.addMarker(&models.Marker{Title: "event", Active: true, IconVariant: "regular", StartDate: &start, EndDate: &end})
	repo.addMarker(&models.Marker{Title: "plain", Active: true})

	events, err := svc.GetEventMarkers(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events=%d want 1", len(events))
	}
	if events[0].IconPrefix != "far" {
		t.Fatalf("prefix=%q want far", events[0].IconPrefix)
	}
}

func TestCleanupPastEvents(t *testing.T) {
	repo := newStubRepo()
	svc := newMarkerService(repo)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	expired := repo.addMarker(&models.Marker{Title: "over", Active: true, StartDate: &past, EndDate: &past})
	running := repo.addMarker(&models.Marker{Title: "running", Active: true, StartDate: &past, EndDate: &future})
	inactive := repo.addMarker(&models.Marker{Title: "already off", Active: false, EndDate: &past})

	n, err := svc.CleanupPastEvents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("deactivated=%d want 1", n)
	}
	if repo.markers[expired.ID].Active {
		t.Fatal("expired marker still active")
	}
	if !repo.markers[running.ID].Active {
		t.Fatal("running marker deactivated")
	}
	if repo.markers[inactive.ID].Active {
		t.Fatal("inactive marker flipped")
	}
}
