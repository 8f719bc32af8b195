// Package caskdb implements a durable, embeddable key-value store on the
// Bitcask model: an append-only on-disk log whose live record positions are
// fully indexed in memory.
//
// Reads resolve through one in-memory lookup and one positioned disk read.
// Writes are one sequential append plus one index update. Deletes append a
// tombstone record. A compaction pass reclaims space by rewriting only the
// records that are still live.
//
// Open a database with [Open] or [OpenWithOptions], then use [Engine.Set],
// [Engine.Get], [Engine.Del], and [Engine.Compact].
package caskdb
