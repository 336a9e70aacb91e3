package mapdata

import (
	"math"
	"time"

	"sylmap/internal/models"
)

// Typed accessors over a Record. Absent or mistyped coordinates become NaN
// so the validation unit rejects them with its normal messages.

func (r Record) floatField(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return math.NaN()
	}
}

func (r Record) stringField(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func (r Record) boolField(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

func (r Record) uintPtrField(key string) *uint64 {
	var n uint64
	switch v := r[key].(type) {
	case int64:
		if v <= 0 {
			return nil
		}
		n = uint64(v)
	case float64:
		if v <= 0 {
			return nil
		}
		n = uint64(v)
	default:
		return nil
	}
	return &n
}

func (r Record) timePtrField(key string) *time.Time {
	s, ok := r[key].(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// markerFromRecord builds a marker from an imported record. Any supplied id
// is dropped; reconciliation decides the row identity.
func markerFromRecord(rec Record) *models.Marker {
	return &models.Marker{
		Lat:          rec.floatField("lat"),
		Lng:          rec.floatField("lng"),
		Title:        rec.stringField("title"),
		Content:      rec.stringField("content"),
		Icon:         rec.stringField("icon"),
		IconVariant:  rec.stringField("icon_var"),
		IconColor:    rec.stringField("icon_color"),
		MarkerColor:  rec.stringField("marker_color"),
		Type:         rec.stringField("type"),
		UserID:       rec.uintPtrField("user_id"),
		CreateThread: rec.boolField("create_thread"),
		ThreadID:     rec.uintPtrField("thread_id"),
		ThreadLock:   rec.boolField("thread_lock"),
		Active:       recActive(rec),
		StartDate:    rec.timePtrField("start_date"),
		EndDate:      rec.timePtrField("end_date"),
	}
}

// recActive defaults a missing active column to true.
func recActive(rec Record) bool {
	if _, ok := rec["active"]; !ok {
		return true
	}
	return rec.boolField("active")
}

func suggestionFromRecord(rec Record) *models.Suggestion {
	return &models.Suggestion{
		Lat:          rec.floatField("lat"),
		Lng:          rec.floatField("lng"),
		Title:        rec.stringField("title"),
		Content:      rec.stringField("content"),
		Icon:         rec.stringField("icon"),
		IconVariant:  rec.stringField("icon_var"),
		IconColor:    rec.stringField("icon_color"),
		MarkerColor:  rec.stringField("marker_color"),
		Type:         rec.stringField("type"),
		UserID:       rec.uintPtrField("user_id"),
		Status:       rec.stringField("status"),
		CreateThread: rec.boolField("create_thread"),
		ThreadLock:   rec.boolField("thread_lock"),
		StartDate:    rec.timePtrField("start_date"),
		EndDate:      rec.timePtrField("end_date"),
	}
}

// applyMarker overwrites an existing marker's fields from a validated
// incoming one, keeping identity and creation time.
func applyMarker(dst, src *models.Marker) {
	dst.Lat = src.Lat
	dst.Lng = src.Lng
	dst.Title = src.Title
	dst.Content = src.Content
	dst.Icon = src.Icon
	dst.IconVariant = src.IconVariant
	dst.IconColor = src.IconColor
	dst.MarkerColor = src.MarkerColor
	dst.Type = src.Type
	dst.UserID = src.UserID
	dst.CreateThread = src.CreateThread
	dst.ThreadLock = src.ThreadLock
	dst.Active = src.Active
	dst.StartDate = src.StartDate
	dst.EndDate = src.EndDate
}

// applySuggestion overwrites a pending suggestion's fields from a validated
// incoming one.
func applySuggestion(dst, src *models.Suggestion) {
	dst.Lat = src.Lat
	dst.Lng = src.Lng
	dst.Title = src.Title
	dst.Content = src.Content
	dst.Icon = src.Icon
	dst.IconVariant = src.IconVariant
	dst.IconColor = src.IconColor
	dst.MarkerColor = src.MarkerColor
	dst.Type = src.Type
	dst.UserID = src.UserID
	dst.Status = src.Status
	dst.CreateThread = src.CreateThread
	dst.ThreadLock = src.ThreadLock
	dst.StartDate = src.StartDate
	dst.EndDate = src.EndDate
}
