package analytics

import "errors"

// ErrNotFound is returned when the proposal does not exist or belongs to a
// different company. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("analytics: proposal not found")

// errMalformedHistory marks a historical record that cannot be scored.
var errMalformedHistory = errors.New("analytics: malformed historical record")

// ComputationFailed is the marker placed on degraded reports.
const ComputationFailed = "computation_failed"
