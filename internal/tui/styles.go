// Package tui implements the Bubble Tea reader for newsdesk.
package tui

import "github.com/colonyops/newsdesk/internal/core/styles"

// Icons and symbols.
const (
	iconDot    = "•"
	iconCursor = "›"
)

const (
	defaultMasthead   = "The Daily Reader"
	defaultDateFormat = "Monday, January 2, 2006"
	commentIndent     = 4
)

func panelMarker(open bool) string {
	if open {
		return styles.IconExpanded
	}
	return styles.IconCollapsed
}
