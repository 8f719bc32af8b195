// The append-only on-disk log: a flat byte stream framed as a sequence of
// [8-byte little-endian length][payload] blocks (spec §4.2, §6). The log
// does not interpret payloads — framing only. Partial writes at the tail
// from a crash are detected at rebuild time (see engine.go's rebuildIndex),
// never at append time.
package caskdb

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const lengthPrefixSize = 8

// appendRecord writes [u64 LE length][payload] at the given offset of w and
// returns the offset at which payload begins. Callers are responsible for
// serialising concurrent appenders (the engine's writer mutex) and for
// updating the cached file size by len(payload)+lengthPrefixSize.
func appendRecord(w *os.File, offset int64, payload []byte) (int64, error) {
	buf := make([]byte, lengthPrefixSize+len(payload))
	binary.LittleEndian.PutUint64(buf[:lengthPrefixSize], uint64(len(payload)))
	copy(buf[lengthPrefixSize:], payload)

	if _, err := w.WriteAt(buf, offset); err != nil {
		return 0, fmt.Errorf("caskdb: append at %d: %w", offset, err)
	}
	return offset + lengthPrefixSize, nil
}

// readPayloadAt performs a positioned read of exactly length bytes starting
// at pos. It returns ErrShortRead if fewer bytes are available.
func readPayloadAt(r *os.File, pos int64, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := r.ReadAt(buf, pos)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("caskdb: read at %d: %w", pos, err)
	}
	if n < length {
		return nil, ErrShortRead
	}
	return buf, nil
}

// readLengthPrefixAt reads the 8-byte length prefix at pos. It reports how
// many bytes were actually read so callers can distinguish a clean EOF
// (n == 0) from a torn prefix (0 < n < 8).
func readLengthPrefixAt(r *os.File, pos int64) (length uint64, n int, err error) {
	var buf [lengthPrefixSize]byte
	n, err = r.ReadAt(buf[:], pos)
	if err != nil && err != io.EOF {
		return 0, n, fmt.Errorf("caskdb: read length prefix at %d: %w", pos, err)
	}
	if n < lengthPrefixSize {
		return 0, n, nil
	}
	return binary.LittleEndian.Uint64(buf[:]), n, nil
}
