package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops the
	// about stats.
	LayoutCompactWidth = 100

	// LayoutLabelWidth is the width of form field labels.
	LayoutLabelWidth = 14

	// LayoutLoginWidth is the width of the sign-in box.
	LayoutLoginWidth = 48
)

// Activity view limits.
const (
	// ActivityLines is the number of log lines read for the activity view.
	ActivityLines = 500
)

// Timing constants.
const (
	// FlashDuration is how long a status message stays in the footer.
	FlashDuration = 6 * time.Second

	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second
)
