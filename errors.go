package caskdb

import "errors"

// Sentinel errors returned by engine operations. See spec §7.
var (
	// ErrCorruptRecord is returned when a length-prefixed block cannot be
	// decoded, or when a decoded record is inconsistent with the index
	// entry that pointed to it (key mismatch, or a live index entry that
	// decodes to a tombstone).
	ErrCorruptRecord = errors.New("caskdb: corrupt record")

	// ErrShortRead is returned when a positioned read returns fewer bytes
	// than requested. During normal operation this is corruption; during
	// open it signals a torn tail, which is recovered by truncation and
	// never surfaced to the caller.
	ErrShortRead = errors.New("caskdb: short read")

	// ErrClosed is returned by any operation attempted on an engine that
	// has already been closed.
	ErrClosed = errors.New("caskdb: engine is closed")

	// ErrRecordTooLarge is returned by Set when the encoded record would
	// exceed Options.MaxRecordSize.
	ErrRecordTooLarge = errors.New("caskdb: record exceeds maximum size")

	// ErrKeyTooLarge is returned by Set when the key exceeds
	// Options.MaxKeySize.
	ErrKeyTooLarge = errors.New("caskdb: key exceeds maximum size")

	// ErrInvalidThreshold is returned by OpenWithOptions when the
	// compaction threshold is not positive.
	ErrInvalidThreshold = errors.New("caskdb: compaction threshold must be positive")

	// ErrNotFound is not returned by the core engine — Get reports an
	// absent key as (nil, nil) per spec §4.5. It is kept here for
	// callers that want a uniform not-found error at their own layer;
	// cmd/caskctl does not use it and prints "(not found)" itself.
	ErrNotFound = errors.New("caskdb: key not found")
)
