// Compaction: rewrite the log keeping exactly one record per live key, then
// atomically replace the active log. Grounded on the teacher's repair.go
// (which rewrites a document store to a fresh file) and on
// calvinalkan-agent-task's lock.go/ticket.go, which route a rewrite-on-save
// through github.com/natefinch/atomic rather than a raw os.Rename.
//
// The temp file is opened for read-write up front and kept open across the
// rename: renaming a path never invalidates an already-open handle to the
// same inode, so the handle that wrote the temp file's content is, after
// the rename, already a valid writer handle for the active log — no
// reopen is needed, and the rename really is the last step that can fail.
package caskdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// compactLocked implements spec §4.5's compact procedure. Caller must hold
// writerMu; it is called both from Compact and from the auto-compaction
// hook in Set/Del.
func (e *Engine) compactLocked() error {
	// Step 1: snapshot the live key set under the index lock, so the
	// snapshot reflects a single consistent point in time.
	e.indexMu.RLock()
	live := e.idx.iter()
	e.indexMu.RUnlock()

	tmpPath := filepath.Join(filepath.Dir(e.path), ".compact-"+filepath.Base(e.path)+".tmp")
	tmpFile, newSize, newIdx, err := e.rewriteLiveRecords(tmpPath, live)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	// Step 2: atomically rename the temp file over the active log.
	// tmpFile stays open throughout: it names the same inode before and
	// after the rename, so it is already the correct writer handle for
	// e.path once this returns. Everything from here on (handle swap,
	// pool reset, index swap) is in-memory bookkeeping that cannot fail.
	// The index write lock is taken before the rename and held through the
	// index swap, so the rename waits for every in-flight Get.
	e.indexMu.Lock()
	if err := atomic.ReplaceFile(tmpPath, e.path); err != nil {
		e.indexMu.Unlock()
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("caskdb: compaction swap: %w", err)
	}

	// Step 3: swap in the new writer handle.
	oldWriter := e.writer
	e.writer = tmpFile
	oldWriter.Close()

	// Step 4: redirect the read-handle pool at the new file first,
	// draining handles opened against the old (now-unlinked) one, and
	// only then publish the new index. A Get that starts after this
	// point and observes the swapped index via indexMu must also see a
	// pool already pointed at the rewritten file — never the other way
	// around, or it could pair a post-compaction offset with a
	// pre-compaction handle.
	e.pool.reset(e.path)

	e.idx.replaceAll(newIdx)
	e.indexMu.Unlock()

	e.size = newSize
	e.log.Infow("caskdb: compacted", "path", e.path, "size", newSize, "keys", newIdx.len())
	return nil
}

// rewriteLiveRecords writes one fresh record per entry in live to a new
// temp file at tmpPath and returns the still-open handle, the file's final
// size, and an index built against the new offsets. It reads from its own
// handle on the active log rather than the pool, since it needs arbitrary
// historical offsets that may not correspond to the current writer
// position.
func (e *Engine) rewriteLiveRecords(tmpPath string, live []indexSnapshotEntry) (*os.File, int64, *index, error) {
	src, err := os.OpenFile(e.path, os.O_RDONLY, 0o644)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("caskdb: open source log for compaction: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("caskdb: create compaction temp file: %w", err)
	}

	newIdx := newIndex(e.opts.IndexShards)
	var offset int64
	for _, entry := range live {
		payload, err := readPayloadAt(src, entry.Entry.position, entry.Entry.length)
		if err != nil {
			dst.Close()
			return nil, 0, nil, fmt.Errorf("caskdb: read live record during compaction: %w", err)
		}

		payloadStart, err := appendRecord(dst, offset, payload)
		if err != nil {
			dst.Close()
			return nil, 0, nil, fmt.Errorf("caskdb: write live record during compaction: %w", err)
		}
		newIdx.put(entry.Key, indexEntry{position: payloadStart, length: len(payload)})
		offset = payloadStart + int64(len(payload))
	}

	if err := dst.Sync(); err != nil {
		dst.Close()
		return nil, 0, nil, fmt.Errorf("caskdb: sync compaction temp file: %w", err)
	}

	return dst, offset, newIdx, nil
}
