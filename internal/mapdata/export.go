package mapdata

import (
	"encoding/json"
	"strings"
	"time"

	"sylmap/internal/models"
)

// ExportFilename builds the download name for an export artifact.
func ExportFilename(format string, now time.Time) string {
	ext := "json"
	if format == FormatScript {
		ext = "sql"
	}
	return "sylphian_map_export_" + now.Format("2006-01-02") + "." + ext
}

const (
	FormatJSON   = "json"
	FormatScript = "sql"
)

// ContentType returns the download content type for a format.
func ContentType(format string) string {
	if format == FormatScript {
		return "text/plain"
	}
	return "application/json"
}

type jsonExport struct {
	Markers     []models.Marker     `json:"markers"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

// ExportJSON renders the pretty-printed JSON document.
func ExportJSON(markers []models.Marker, suggestions []models.Suggestion) ([]byte, error) {
	if markers == nil {
		markers = []models.Marker{}
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	return json.MarshalIndent(jsonExport{Markers: markers, Suggestions: suggestions}, "", "    ")
}

// ExportScript renders the line-delimited insert script: a dated header,
// then one statement per record under its section comment.
func ExportScript(markers []models.Marker, suggestions []models.Suggestion, now time.Time) string {
	var b strings.Builder

	b.WriteString("-- Map Markers Export " + now.Format("2006-01-02") + "\n\n")

	b.WriteString(markersSection + "\n")
	for i := range markers {
		cols, vals := markerColumns(&markers[i])
		b.WriteString(insertStatement(markersTable, cols, vals))
	}

	b.WriteString("\n" + suggestionsSection + "\n")
	for i := range suggestions {
		cols, vals := suggestionColumns(&suggestions[i])
		b.WriteString(insertStatement(suggestionsTable, cols, vals))
	}

	return b.String()
}

func insertStatement(table string, cols []string, vals []any) string {
	rendered := make([]string, len(vals))
	for i, v := range vals {
		rendered[i] = renderScriptValue(v)
	}
	return "INSERT INTO " + table +
		" (" + strings.Join(cols, ", ") + ")" +
		" VALUES (" + strings.Join(rendered, ", ") + ");\n"
}

func markerColumns(m *models.Marker) ([]string, []any) {
	cols := []string{
		"marker_id", "lat", "lng", "title", "content",
		"icon", "icon_var", "icon_color", "marker_color", "type",
		"user_id", "create_thread", "thread_id", "thread_lock",
		"active", "start_date", "end_date", "create_date", "update_date",
	}
	vals := []any{
		int64(m.ID), m.Lat, m.Lng, m.Title, m.Content,
		m.Icon, m.IconVariant, m.IconColor, m.MarkerColor, m.Type,
		uintPtrValue(m.UserID), m.CreateThread, uintPtrValue(m.ThreadID), m.ThreadLock,
		m.Active, timePtrValue(m.StartDate), timePtrValue(m.EndDate),
		m.CreateDate.Format(time.RFC3339), m.UpdateDate.Format(time.RFC3339),
	}
	return cols, vals
}

func suggestionColumns(s *models.Suggestion) ([]string, []any) {
	cols := []string{
		"suggestion_id", "lat", "lng", "title", "content",
		"icon", "icon_var", "icon_color", "marker_color", "type",
		"user_id", "status", "create_thread", "thread_lock",
		"start_date", "end_date", "create_date",
	}
	vals := []any{
		int64(s.ID), s.Lat, s.Lng, s.Title, s.Content,
		s.Icon, s.IconVariant, s.IconColor, s.MarkerColor, s.Type,
		uintPtrValue(s.UserID), s.Status, s.CreateThread, s.ThreadLock,
		timePtrValue(s.StartDate), timePtrValue(s.EndDate),
		s.CreateDate.Format(time.RFC3339),
	}
	return cols, vals
}

func uintPtrValue(p *uint64) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func timePtrValue(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.Format(time.RFC3339)
}
