// The Engine: orchestrates writes, reads, deletes, rebuild-on-open, and
// compaction. Owns the log handle, the index, and the read-handle pool, and
// enforces the concurrency discipline in spec §5.
//
// Two locks protect engine state:
//   - writerMu, the writer mutex: held for the full duration of Set, Del,
//     and Compact. Guards the exclusive writer handle and the cached file
//     size.
//   - indexMu, a sync.RWMutex: held in read-mode by Get across its entire
//     operation (lookup through positioned read through decode), and
//     briefly in write-mode at the end of Set/Del and during compaction's
//     swap step. This is what stops a concurrent compaction from retiring
//     the log file out from under a pending positioned read.
package caskdb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Engine is a long-lived handle on one Bitcask-model database file. The
// zero value is not usable; construct with Open or OpenWithOptions.
type Engine struct {
	path string

	writerMu sync.Mutex
	writer   *os.File
	size     int64 // cached file size; equals the file's length at every quiescent moment

	indexMu sync.RWMutex
	idx     *index

	pool *handlePool

	opts   Options
	log    *zap.SugaredLogger
	closed atomic.Bool
}

// Open opens or creates the database at path using DefaultOptions.
func Open(path string) (*Engine, error) {
	return OpenWithOptions(path, DefaultOptions())
}

// OpenWithOptions opens or creates the database at path with the given
// options, which are completed with defaults for any zero-valued field.
// This generalises spec §4.5's open and open_with_threshold into one entry
// point; callers wanting only a custom threshold can pass
// Options{CompactionThreshold: n}.
func OpenWithOptions(path string, opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log := opts.Logger

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("caskdb: create %s: %w", path, err)
		}
		f.Close()
	} else if err != nil {
		return nil, fmt.Errorf("caskdb: stat %s: %w", path, err)
	}

	writer, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("caskdb: open %s: %w", path, err)
	}

	idx, size, err := rebuildIndex(writer, opts.IndexShards)
	if err != nil {
		writer.Close()
		return nil, err
	}

	e := &Engine{
		path:   path,
		writer: writer,
		size:   size,
		idx:    idx,
		pool:   newHandlePool(path, opts.PoolSize),
		opts:   opts,
		log:    log,
	}

	log.Infow("caskdb: opened", "path", path, "size", size, "keys", idx.len())
	return e, nil
}

// rebuildIndex performs the open-time rebuild scan described in spec §4.5:
// sequentially decode every record, let later offsets win, and truncate a
// torn tail rather than surfacing it as an error.
func rebuildIndex(f *os.File, shards int) (*index, int64, error) {
	idx := newIndex(shards)

	var offset int64
	for {
		length, n, err := readLengthPrefixAt(f, offset)
		if err != nil {
			return nil, 0, err
		}
		if n < lengthPrefixSize {
			// Clean EOF (n==0) or a torn length prefix (0<n<8): either
			// way, nothing after offset is a complete record.
			break
		}

		payloadStart := offset + lengthPrefixSize
		payload, err := readPayloadAt(f, payloadStart, int(length))
		if err != nil {
			if errors.Is(err, ErrShortRead) {
				break // torn payload: truncate at offset
			}
			return nil, 0, err
		}

		rec, err := decodeRecord(payload)
		if err != nil {
			if payloadStart+int64(length) < mustSize(f) {
				// Records follow this one: corruption mid-log, not a torn tail.
				return nil, 0, fmt.Errorf("caskdb: record at offset %d: %w", offset, ErrCorruptRecord)
			}
			break // final record failed to decode: treat as torn, truncate
		}

		if rec.Tombstone {
			idx.remove(string(rec.Key))
		} else {
			idx.put(string(rec.Key), indexEntry{position: payloadStart, length: int(length)})
		}

		offset = payloadStart + int64(length)
	}

	if offset != mustSize(f) {
		if err := f.Truncate(offset); err != nil {
			return nil, 0, fmt.Errorf("caskdb: truncate torn tail: %w", err)
		}
	}

	return idx, offset, nil
}

func mustSize(f *os.File) int64 {
	info, err := f.Stat()
	if err != nil {
		return -1
	}
	return info.Size()
}

// Close releases the engine's file handles. Further operations return
// ErrClosed.
func (e *Engine) Close() error {
	e.writerMu.Lock()
	defer e.writerMu.Unlock()
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	e.pool.closeAll()
	if err := e.writer.Close(); err != nil {
		return fmt.Errorf("caskdb: close: %w", err)
	}
	e.log.Infow("caskdb: closed", "path", e.path)
	return nil
}

// Set stores value under key, replacing any existing value. An empty value
// is a valid, distinct value from a deleted key.
func (e *Engine) Set(key, value []byte) error {
	if len(key) > e.opts.MaxKeySize {
		return ErrKeyTooLarge
	}

	storedValue := value
	if e.opts.CompressValues {
		storedValue = compressValue(value)
	}

	rec := newPutRecord(key, storedValue, time.Now().UnixNano())
	payload, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("caskdb: encode record: %w", err)
	}
	if len(payload) > e.opts.MaxRecordSize {
		return ErrRecordTooLarge
	}

	e.writerMu.Lock()
	defer e.writerMu.Unlock()
	if e.closed.Load() {
		return ErrClosed
	}

	payloadStart, err := appendRecord(e.writer, e.size, payload)
	if err != nil {
		e.log.Errorw("caskdb: set append failed", "error", err)
		return err
	}
	if e.opts.SyncWrites {
		if err := e.writer.Sync(); err != nil {
			return fmt.Errorf("caskdb: sync: %w", err)
		}
	}
	e.size = payloadStart + int64(len(payload))

	e.indexMu.Lock()
	e.idx.put(string(key), indexEntry{position: payloadStart, length: len(payload)})
	e.indexMu.Unlock()

	if e.size > e.opts.CompactionThreshold {
		return e.compactLocked()
	}
	return nil
}

// Get returns the current value for key, or (nil, nil) if key is not
// present. The index read lock is held for the whole operation so a
// concurrent compaction cannot swap the log file out from under the
// pending positioned read.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	e.indexMu.RLock()
	defer e.indexMu.RUnlock()

	entry, ok := e.idx.get(string(key))
	if !ok {
		return nil, nil
	}

	h, err := e.pool.acquire()
	if err != nil {
		return nil, err
	}
	payload, err := readPayloadAt(h.f, entry.position, entry.length)
	e.pool.release(h)
	if err != nil {
		return nil, err
	}

	rec, err := decodeRecord(payload)
	if err != nil {
		return nil, err
	}
	if rec.Tombstone {
		e.log.Errorw("caskdb: live index entry decoded to tombstone", "key", string(key))
		return nil, ErrCorruptRecord
	}
	if string(rec.Key) != string(key) {
		e.log.Errorw("caskdb: decoded key mismatch", "want", string(key), "got", string(rec.Key))
		return nil, ErrCorruptRecord
	}

	if e.opts.CompressValues {
		return decompressValue(rec.Value)
	}
	return rec.Value, nil
}

// Del removes key, appending a tombstone record. It reports whether key
// was present.
func (e *Engine) Del(key []byte) (bool, error) {
	e.writerMu.Lock()
	defer e.writerMu.Unlock()
	if e.closed.Load() {
		return false, ErrClosed
	}

	e.indexMu.RLock()
	_, present := e.idx.get(string(key))
	e.indexMu.RUnlock()
	if !present {
		return false, nil
	}

	rec := newTombstoneRecord(key, time.Now().UnixNano())
	payload, err := encodeRecord(rec)
	if err != nil {
		return false, fmt.Errorf("caskdb: encode tombstone: %w", err)
	}

	payloadStart, err := appendRecord(e.writer, e.size, payload)
	if err != nil {
		e.log.Errorw("caskdb: del append failed", "error", err)
		return false, err
	}
	if e.opts.SyncWrites {
		if err := e.writer.Sync(); err != nil {
			return false, fmt.Errorf("caskdb: sync: %w", err)
		}
	}
	e.size = payloadStart + int64(len(payload))

	e.indexMu.Lock()
	e.idx.remove(string(key))
	e.indexMu.Unlock()

	if e.size > e.opts.CompactionThreshold {
		if err := e.compactLocked(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Compact rewrites the log keeping exactly one record per live key, then
// atomically replaces the active log (spec §4.5, §4.6).
func (e *Engine) Compact() error {
	e.writerMu.Lock()
	defer e.writerMu.Unlock()
	if e.closed.Load() {
		return ErrClosed
	}
	return e.compactLocked()
}

