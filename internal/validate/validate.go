// Package validate holds the field rules shared by markers and suggestions.
// Checks collect every failure instead of stopping at the first one, and
// visual-style defaults are applied whether or not the record passes.
package validate

import (
	"strings"
	"unicode/utf8"

	"sylmap/internal/models"
)

const (
	MaxTitleLen = 100

	DefaultIconVariant = "solid"
	DefaultIconColor   = "black"
	DefaultMarkerColor = "blue"
)

// Error carries every collected validation message.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "\n")
}

// IsValidationError reports whether err is a collected-messages failure.
func IsValidationError(err error) bool {
	_, ok := err.(*Error)
	return ok
}

// Marker validates a marker in place, applying style defaults to empty
// fields regardless of the outcome.
func Marker(m *models.Marker) error {
	msgs := checkCommon(m.Title, m.Lat, m.Lng)

	if m.IconVariant == "" {
		m.IconVariant = DefaultIconVariant
	}
	if m.IconColor == "" {
		m.IconColor = DefaultIconColor
	}
	if m.MarkerColor == "" {
		m.MarkerColor = DefaultMarkerColor
	}

	if len(msgs) > 0 {
		return &Error{Messages: msgs}
	}
	return nil
}

// Suggestion validates a suggestion in place. On top of the marker rules it
// defaults an empty status to pending.
func Suggestion(s *models.Suggestion) error {
	msgs := checkCommon(s.Title, s.Lat, s.Lng)

	if s.IconVariant == "" {
		s.IconVariant = DefaultIconVariant
	}
	if s.IconColor == "" {
		s.IconColor = DefaultIconColor
	}
	if s.MarkerColor == "" {
		s.MarkerColor = DefaultMarkerColor
	}
	if s.Status == "" {
		s.Status = models.SuggestionPending
	}

	if len(msgs) > 0 {
		return &Error{Messages: msgs}
	}
	return nil
}

// checkCommon applies the rules in declaration order: title, latitude,
// longitude. Range checks are written so NaN (an absent coordinate in import
// payloads) fails them.
func checkCommon(title string, lat, lng float64) []string {
	var msgs []string

	if title == "" {
		msgs = append(msgs, "please enter a valid title")
	} else if utf8.RuneCountInString(title) > MaxTitleLen {
		msgs = append(msgs, "title must be 100 characters or fewer")
	}

	if !(lat >= -90 && lat <= 90) {
		msgs = append(msgs, "please enter a valid latitude")
	}

	if !(lng >= -180 && lng <= 180) {
		msgs = append(msgs, "please enter a valid longitude")
	}

	return msgs
}
