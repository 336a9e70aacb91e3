package service

import (
	"context"
	"html"
	"time"

	"go.uber.org/zap"

	"sylmap/internal/config"
	"sylmap/internal/models"
	"sylmap/internal/repository"
	"sylmap/internal/validate"
)

// MarkerService is the marker store: queries, mutations and the display
// projection consumed by the map frontend.
type MarkerService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Cfg    config.MapConfig
}

func (s *MarkerService) GetActive(ctx context.Context, typeFilter string) ([]models.Marker, error) {
	return s.Repo.ListActiveMarkers(ctx, typeFilter)
}

func (s *MarkerService) GetAll(ctx context.Context, page, perPage int) ([]models.Marker, int64, error) {
	return s.Repo.ListMarkers(ctx, repository.ListMarkersParams{Page: page, PerPage: perPage})
}

func (s *MarkerService) GetAllUnbounded(ctx context.Context) ([]models.Marker, error) {
	return s.Repo.ListAllMarkers(ctx)
}

func (s *MarkerService) GetByID(ctx context.Context, id uint64) (*models.Marker, error) {
	return s.Repo.GetMarkerByID(ctx, id)
}

// Create validates and persists a new marker. Validation failures are
// returned to the caller; this is the one mutation with no degraded result.
func (s *MarkerService) Create(ctx context.Context, marker *models.Marker) error {
	if err := validate.Marker(marker); err != nil {
		return err
	}
	if err := s.Repo.CreateMarker(ctx, marker); err != nil {
		return err
	}
	s.Logger.Info("map marker created",
		zap.Uint64("marker_id", marker.ID),
		zap.Float64("lat", marker.Lat),
		zap.Float64("lng", marker.Lng),
		zap.String("type", marker.Type),
		zap.Uint64p("user_id", marker.UserID),
		zap.Uint64p("thread_id", marker.ThreadID),
	)
	return nil
}

// MarkerUpdate is the mutable field set applied by Update.
type MarkerUpdate struct {
	Lat          float64
	Lng          float64
	Title        string
	Content      string
	Icon         string
	IconVariant  string
	IconColor    string
	MarkerColor  string
	Type         string
	Active       bool
	CreateThread bool
	ThreadLock   bool
	StartDate    *time.Time
	EndDate      *time.Time
}

// Update applies data to an existing marker. Unlike Create it never
// propagates an error: any failure is logged and nil returned, so callers
// must check the result.
func (s *MarkerService) Update(ctx context.Context, id uint64, data MarkerUpdate, actingUserID *uint64) *models.Marker {
	marker, err := s.Repo.GetMarkerByID(ctx, id)
	if err != nil {
		s.Logger.Error("map marker update failed", zap.Uint64("marker_id", id), zap.Error(err))
		return nil
	}
	return s.UpdateMarker(ctx, marker, data, actingUserID)
}

// UpdateMarker is Update for an already-loaded marker.
func (s *MarkerService) UpdateMarker(ctx context.Context, marker *models.Marker, data MarkerUpdate, actingUserID *uint64) *models.Marker {
	before := map[string]any{
		"title":   marker.Title,
		"lat":     marker.Lat,
		"lng":     marker.Lng,
		"content": marker.Content,
		"icon":    marker.Icon,
		"type":    marker.Type,
	}

	marker.Lat = data.Lat
	marker.Lng = data.Lng
	marker.Title = data.Title
	marker.Content = data.Content
	marker.Icon = data.Icon
	marker.IconVariant = data.IconVariant
	marker.IconColor = data.IconColor
	marker.MarkerColor = data.MarkerColor
	marker.Type = data.Type
	marker.Active = data.Active
	marker.CreateThread = data.CreateThread
	marker.ThreadLock = data.ThreadLock
	marker.StartDate = data.StartDate
	marker.EndDate = data.EndDate

	if err := validate.Marker(marker); err != nil {
		s.Logger.Error("map marker update failed", zap.Uint64("marker_id", marker.ID), zap.Error(err))
		return nil
	}
	if err := s.Repo.SaveMarker(ctx, marker); err != nil {
		s.Logger.Error("map marker update failed", zap.Uint64("marker_id", marker.ID), zap.Error(err))
		return nil
	}

	s.Logger.Info("map marker updated",
		zap.Uint64("marker_id", marker.ID),
		zap.Any("before", before),
		zap.Any("after", map[string]any{
			"title":   marker.Title,
			"lat":     marker.Lat,
			"lng":     marker.Lng,
			"content": marker.Content,
			"icon":    marker.Icon,
			"type":    marker.Type,
		}),
		zap.Uint64p("updated_by", actingUserID),
	)
	return marker
}

// Delete removes a marker, reporting success as a boolean rather than an
// error, matching the update policy.
func (s *MarkerService) Delete(ctx context.Context, id uint64) bool {
	marker, err := s.Repo.GetMarkerByID(ctx, id)
	if err != nil {
		s.Logger.Error("map marker delete failed", zap.Uint64("marker_id", id), zap.Error(err))
		return false
	}
	if err := s.Repo.DeleteMarker(ctx, marker); err != nil {
		s.Logger.Error("map marker delete failed", zap.Uint64("marker_id", id), zap.Error(err))
		return false
	}
	s.Logger.Info("map marker deleted", zap.Uint64("marker_id", id), zap.String("title", marker.Title))
	return true
}

// DisplayMarker is the escaped projection handed to the map frontend.
type DisplayMarker struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Icon        string  `json:"icon"`
	IconVariant string  `json:"iconVar"`
	IconColor   string  `json:"iconColor"`
	MarkerColor string  `json:"markerColor"`
	Type        string  `json:"type"`
	ThreadID    *uint64 `json:"thread_id,omitempty"`
}

type DisplayMarkerType struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	IconVariant string `json:"iconVar"`
	IconColor   string `json:"iconColor"`
}

type DisplayData struct {
	Markers     []DisplayMarker     `json:"markers"`
	MarkerTypes []DisplayMarkerType `json:"markerTypes"`
	AllMarkers  []models.Marker     `json:"allMarkers,omitempty"`
}

// ProcessForDisplay builds the public map payload: inactive markers are
// skipped, marker types are deduplicated by name (first occurrence wins) and
// user-supplied text is escaped. When nothing is visible a sentinel default
// marker at the configured start coordinates keeps the map populated.
// Managers additionally get the raw collection back as AllMarkers.
func (s *MarkerService) ProcessForDisplay(markers []models.Marker, canManage bool) DisplayData {
	out := DisplayData{
		Markers:     []DisplayMarker{},
		MarkerTypes: []DisplayMarkerType{},
	}
	if canManage {
		out.AllMarkers = markers
	}

	seenTypes := map[string]bool{}
	for i := range markers {
		m := &markers[i]
		if !m.Active {
			continue
		}

		out.Markers = append(out.Markers, DisplayMarker{
			Lat:         m.Lat,
			Lng:         m.Lng,
			Title:       html.EscapeString(m.Title),
			Content:     html.EscapeString(m.Content),
			Icon:        html.EscapeString(m.Icon),
			IconVariant: m.IconVariant,
			IconColor:   m.IconColor,
			MarkerColor: m.MarkerColor,
			Type:        html.EscapeString(m.Type),
			ThreadID:    m.ThreadID,
		})

		if !seenTypes[m.Type] {
			seenTypes[m.Type] = true
			out.MarkerTypes = append(out.MarkerTypes, DisplayMarkerType{
				Name:        html.EscapeString(m.Type),
				Icon:        html.EscapeString(m.Icon),
				IconVariant: m.IconVariant,
				IconColor:   m.IconColor,
			})
		}
	}

	if len(out.Markers) == 0 {
		lat, lng := s.Cfg.StartingLat, s.Cfg.StartingLng
		if lat == 0 && lng == 0 {
			lat, lng = 51.505, -0.09
		}
		out.Markers = append(out.Markers, DisplayMarker{
			Lat:         lat,
			Lng:         lng,
			Title:       "Default Marker",
			Content:     "No markers currently exist.",
			Icon:        "frown",
			IconVariant: "solid",
			IconColor:   "red",
			MarkerColor: "blue",
			Type:        "default",
		})
		out.MarkerTypes = append(out.MarkerTypes, DisplayMarkerType{
			Name:        "default",
			Icon:        "frown",
			IconVariant: "solid",
			IconColor:   "red",
		})
	}

	return out
}

// EventMarker is the widget projection for time-bounded markers.
type EventMarker struct {
	ID         uint64    `json:"marker_id"`
	Title      string    `json:"title"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Icon       string    `json:"icon"`
	IconPrefix string    `json:"icon_prefix"`
	IconColor  string    `json:"icon_color"`
	Type       string    `json:"type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// faPrefixes maps icon variants to Font Awesome prefix codes.
var faPrefixes = map[string]string{
	"solid":   "fas",
	"regular": "far",
	"light":   "fal",
	"brands":  "fab",
	"duotone": "fad",
}

// FontAwesomePrefix returns the display-library prefix for an icon variant.
func FontAwesomePrefix(variant string) string {
	if p, ok := faPrefixes[variant]; ok {
		return p
	}
	return "fas"
}

// GetEventMarkers returns upcoming or running events: active markers with a
// full event window whose end date has not passed, soonest first.
func (s *MarkerService) GetEventMarkers(ctx context.Context, limit int) ([]EventMarker, error) {
	if limit <= 0 {
		limit = s.Cfg.EventLimit
	}
	markers, err := s.Repo.ListUpcomingEventMarkers(ctx, time.Now(), limit)
	if err != nil {
		return nil, err
	}
	events := make([]EventMarker, 0, len(markers))
	for i := range markers {
		m := &markers[i]
		if !m.HasEventWindow() {
			continue
		}
		events = append(events, EventMarker{
			ID:         m.ID,
			Title:      m.Title,
			Lat:        m.Lat,
			Lng:        m.Lng,
			Icon:       m.Icon,
			IconPrefix: FontAwesomePrefix(m.IconVariant),
			IconColor:  m.IconColor,
			Type:       m.Type,
			StartDate:  *m.StartDate,
			EndDate:    *m.EndDate,
		})
	}
	return events, nil
}

// CleanupPastEvents deactivates active markers whose event window has
// closed. Markers are kept, not deleted. Returns the number deactivated.
func (s *MarkerService) CleanupPastEvents(ctx context.Context) (int, error) {
	markers, err := s.Repo.ListExpiredEventMarkers(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	count := 0
	details := make([]map[string]any, 0, len(markers))
	for i := range markers {
		m := &markers[i]
		m.Active = false
		if err := s.Repo.SaveMarker(ctx, m); err != nil {
			s.Logger.Error("event marker deactivation failed",
				zap.Uint64("marker_id", m.ID), zap.Error(err))
			continue
		}
		count++
		details = append(details, map[string]any{
			"marker_id": m.ID,
			"title":     m.Title,
			"end_date":  m.EndDate,
		})
	}

	if count > 0 {
		s.Logger.Info("past event markers deactivated",
			zap.Int("count", count),
			zap.Any("markers", details),
		)
	}
	return count, nil
}
