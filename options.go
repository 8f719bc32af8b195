package caskdb

import "go.uber.org/zap"

// DefaultCompactionThreshold is the compaction trigger when Options is the
// zero value or CompactionThreshold is left at 0 (spec §6).
const DefaultCompactionThreshold = 1 << 20 // 1 MiB

// DefaultMaxRecordSize bounds a single record's encoded payload. Resolves
// spec §9's "maximum record size" open question.
const DefaultMaxRecordSize = (1 << 32) - lengthPrefixSize

// DefaultMaxKeySize bounds a single key's byte length.
const DefaultMaxKeySize = 64 * 1024

// DefaultPoolSize is the read-handle pool capacity (spec §4.4's C).
const DefaultPoolSize = 8

// DefaultIndexShards is the number of internal index buckets (§3.1 of
// SPEC_FULL.md).
const DefaultIndexShards = 16

// Options configures an Engine. OpenWithOptions fills every zero-valued
// field from DefaultOptions, so the zero value and partially set values
// are both usable.
type Options struct {
	// CompactionThreshold is the log size, in bytes, past which a set or
	// del triggers an automatic compaction before returning. Must be
	// positive.
	CompactionThreshold int64

	// SyncWrites calls File.Sync after every append and tombstone write.
	// Defaults to false: bytes are handed to the OS but not forced to
	// stable storage, matching spec §4.2's "no durability promise
	// stronger than bytes handed to the operating system."
	SyncWrites bool

	// MaxRecordSize bounds a single record's encoded payload size. Set
	// rejects a write that would exceed it before any append.
	MaxRecordSize int

	// MaxKeySize bounds a single key's byte length.
	MaxKeySize int

	// PoolSize is the read-handle pool capacity.
	PoolSize int

	// CompressValues, when true, zstd-compresses values before encoding
	// and transparently decompresses them on read.
	CompressValues bool

	// IndexShards is the number of internal index buckets.
	IndexShards int

	// Logger receives structured diagnostic events. Defaults to a no-op
	// logger if nil.
	Logger *zap.SugaredLogger
}

// DefaultOptions returns an Options populated with every default value.
func DefaultOptions() Options {
	return Options{
		CompactionThreshold: DefaultCompactionThreshold,
		SyncWrites:          false,
		MaxRecordSize:       DefaultMaxRecordSize,
		MaxKeySize:          DefaultMaxKeySize,
		PoolSize:            DefaultPoolSize,
		CompressValues:      false,
		IndexShards:         DefaultIndexShards,
		Logger:              nopLogger(),
	}
}

// withDefaults fills in zero-valued fields of o with DefaultOptions,
// leaving any field the caller explicitly set untouched.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CompactionThreshold == 0 {
		o.CompactionThreshold = d.CompactionThreshold
	}
	if o.MaxRecordSize == 0 {
		o.MaxRecordSize = d.MaxRecordSize
	}
	if o.MaxKeySize == 0 {
		o.MaxKeySize = d.MaxKeySize
	}
	if o.PoolSize == 0 {
		o.PoolSize = d.PoolSize
	}
	if o.IndexShards == 0 {
		o.IndexShards = d.IndexShards
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}

func (o Options) validate() error {
	if o.CompactionThreshold <= 0 {
		return ErrInvalidThreshold
	}
	return nil
}
