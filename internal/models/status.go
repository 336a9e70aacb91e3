package models

import "strings"

// MarkerStatus is a derived lifecycle label used only to prefix the title of
// a marker's mirrored discussion thread. It is never persisted.
type MarkerStatus string

const (
	StatusActive   MarkerStatus = "Active"
	StatusInactive MarkerStatus = "Inactive"
	StatusDisabled MarkerStatus = "Disabled"
	StatusDeleted  MarkerStatus = "Deleted"
)

// AllMarkerStatuses lists every status label, used to build the title-prefix
// alternation.
var AllMarkerStatuses = []MarkerStatus{
	StatusActive,
	StatusInactive,
	StatusDisabled,
	StatusDeleted,
}

// StatusFromMarker derives the lifecycle status of a marker. The checks are
// priority ordered: an explicit delete signal wins, then inactivity, then a
// switched-off thread mirror.
func StatusFromMarker(active, createThread, deleted bool) MarkerStatus {
	switch {
	case deleted:
		return StatusDeleted
	case !active:
		return StatusInactive
	case !createThread:
		return StatusDisabled
	default:
		return StatusActive
	}
}

// StatusAlternation joins every status label into a regex alternation.
func StatusAlternation() string {
	parts := make([]string, 0, len(AllMarkerStatuses))
	for _, s := range AllMarkerStatuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, "|")
}
