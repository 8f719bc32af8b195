// The in-memory index: an authoritative key -> (position, length) mapping
// for every currently-live key (spec §4.3). A key is live iff it appears
// here; tombstoned keys have no entry.
//
// Internally the index is split into a fixed number of shards, each a plain
// map, selected by an xxh3 hash of the key. This is purely a data-structure
// choice to bound per-bucket map growth and rehash cost — it introduces no
// locking of its own. The type is not safe for concurrent use by itself;
// the engine's single index RWMutex (spec §5) guards all shards together,
// exactly as if this were one flat map.
package caskdb

import (
	"github.com/zeebo/xxh3"
)

// indexEntry locates a live record's payload in the active log.
type indexEntry struct {
	position int64
	length   int
}

// index is the engine's key -> indexEntry map, sharded for locality.
type index struct {
	shards []map[string]indexEntry
}

// newIndex returns an empty index with the given shard count. n must be at
// least 1; callers (Options defaulting) are responsible for that.
func newIndex(n int) *index {
	shards := make([]map[string]indexEntry, n)
	for i := range shards {
		shards[i] = make(map[string]indexEntry)
	}
	return &index{shards: shards}
}

func (ix *index) shardFor(key string) map[string]indexEntry {
	h := xxh3.HashString(key)
	return ix.shards[h%uint64(len(ix.shards))]
}

// get returns the entry for key and whether it was present.
func (ix *index) get(key string) (indexEntry, bool) {
	e, ok := ix.shardFor(key)[key]
	return e, ok
}

// put inserts or replaces the entry for key.
func (ix *index) put(key string, e indexEntry) {
	ix.shardFor(key)[key] = e
}

// remove deletes key if present and reports whether it was present.
func (ix *index) remove(key string) bool {
	shard := ix.shardFor(key)
	if _, ok := shard[key]; !ok {
		return false
	}
	delete(shard, key)
	return true
}

// len returns the number of live keys across all shards.
func (ix *index) len() int {
	n := 0
	for _, shard := range ix.shards {
		n += len(shard)
	}
	return n
}

// replaceAll atomically swaps the whole index for newIx's contents. Used
// only by compaction, under the writer and index write locks.
func (ix *index) replaceAll(newIx *index) {
	ix.shards = newIx.shards
}

// indexSnapshotEntry is one (key, entry) pair yielded by iter.
type indexSnapshotEntry struct {
	Key   string
	Entry indexEntry
}

// iter returns a snapshot of every (key, entry) pair, in unspecified order.
// Compaction materialises this snapshot since the live set is bounded by
// the number of distinct keys.
func (ix *index) iter() []indexSnapshotEntry {
	out := make([]indexSnapshotEntry, 0, ix.len())
	for _, shard := range ix.shards {
		for k, e := range shard {
			out = append(out, indexSnapshotEntry{Key: k, Entry: e})
		}
	}
	return out
}
