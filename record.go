// Record encoding for a single log entry.
//
// A record is encoded as a self-describing JSON block: {ts, k, v, t}. Key
// and value round-trip as base64 byte strings (JSON's native []byte
// encoding), so arbitrary binary keys and values are supported without a
// separate escaping scheme. The Tombstone flag is carried explicitly rather
// than inferred from a nil/absent value field, so that an empty live value
// ("") and a deleted key (tombstone) are never confused by a JSON library's
// null-vs-empty-string handling.
package caskdb

import (
	json "github.com/goccy/go-json"
)

// record is the decoded form of a single log entry.
type record struct {
	Timestamp int64  `json:"ts"`
	Key       []byte `json:"k"`
	Value     []byte `json:"v"`
	Tombstone bool   `json:"t,omitempty"`
}

// encodeRecord serialises r to its on-disk payload (without the length
// prefix — that is the log file's concern, see log.go).
func encodeRecord(r *record) ([]byte, error) {
	return json.Marshal(r)
}

// decodeRecord parses a payload produced by encodeRecord. It returns
// ErrCorruptRecord if buf is not a valid encoding.
func decodeRecord(buf []byte) (*record, error) {
	var r record
	if err := json.Unmarshal(buf, &r); err != nil {
		return nil, ErrCorruptRecord
	}
	return &r, nil
}

// newPutRecord builds a live record carrying value (which may be a
// zero-length, non-nil slice for an explicit empty value).
func newPutRecord(key, value []byte, ts int64) *record {
	return &record{Timestamp: ts, Key: key, Value: value, Tombstone: false}
}

// newTombstoneRecord builds a tombstone record for key.
func newTombstoneRecord(key []byte, ts int64) *record {
	return &record{Timestamp: ts, Key: key, Value: nil, Tombstone: true}
}
