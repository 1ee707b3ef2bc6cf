package models

import "errors"

// Sentinel errors for entity lookups.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrCommunityNotFound = errors.New("community not found")
	ErrRunNotFound       = errors.New("run not found")
)

// ErrRunInProgress indicates a pipeline run is already executing; the core
// runs one batch at a time (maps to HTTP 409 Conflict).
var ErrRunInProgress = errors.New("a run is already in progress")
