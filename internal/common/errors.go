// Package common holds the error taxonomy shared by the ingestion and
// question-answering flows. Every failure that reaches the HTTP layer wraps
// exactly one of these values; callers match them with errors.Is.
package common

import "errors"

var (
	// Input errors.
	ErrInvalidURL   = errors.New("invalid or unsupported YouTube URL")
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound covers both a missing record and a record owned by someone
	// else. The two cases are never distinguished.
	ErrNotFound = errors.New("not found")

	// Transcript retrieval errors.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrSourceUnavailable     = errors.New("video unavailable")
	ErrTransientFetch        = errors.New("transcript fetch failed")

	// Question answering errors.
	ErrNoTranscript       = errors.New("video has no transcript")
	ErrServiceUnavailable = errors.New("ai service unavailable")

	// ErrStore marks a persistence failure. It is always fatal to the request.
	ErrStore = errors.New("store error")
)
