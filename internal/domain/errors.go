package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Store-level failures
// are wrapped into one of these before they leave the app layer.

var (
	// Caller errors — invalid input from a collaborator, rejected synchronously.
	ErrUnknownActivity = errors.New("unknown activity type")
	ErrUnknownBadge    = errors.New("unknown badge id")
	ErrNoUser          = errors.New("no user id")

	// Load errors — store reachable but the read failed or returned data
	// the backfill logic cannot repair.
	ErrLoadFailed = errors.New("failed to load user stats")

	// Write errors — a mutation failed after local computation succeeded.
	// The in-memory optimistic update must not be trusted as durable.
	ErrWriteFailed = errors.New("failed to persist user stats")

	// Store errors.
	ErrRecordNotFound = errors.New("record not found")
	ErrStoreClosed    = errors.New("record store is closed")
)
