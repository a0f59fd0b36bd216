package domain

import "errors"

var (
	// ErrNoSelection marks an intent that had nothing selected to act on.
	// It is a no-op condition, not a failure.
	ErrNoSelection = errors.New("no overlay selected")

	ErrUnknownOverlay   = errors.New("overlay not found")
	ErrAmbiguousOverlay = errors.New("query matches more than one overlay")
	ErrInvalidNumber    = errors.New("numeric input must be finite")
	ErrImageDecode      = errors.New("image could not be decoded")
	ErrInvalidImage     = errors.New("file is not a supported image")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidPage      = errors.New("invalid page identity")
	ErrEngineClosed     = errors.New("overlay tool is closed")
)
