package caskdb

import "testing"

func TestIndexPutGetRemove(t *testing.T) {
	ix := newIndex(4)

	if _, ok := ix.get("k"); ok {
		t.Fatalf("get on empty index returned ok=true")
	}

	ix.put("k", indexEntry{position: 10, length: 5})
	e, ok := ix.get("k")
	if !ok || e.position != 10 || e.length != 5 {
		t.Fatalf("get = %+v, %v, want {10 5}, true", e, ok)
	}

	if !ix.remove("k") {
		t.Fatalf("remove(present key) = false")
	}
	if ix.remove("k") {
		t.Fatalf("remove(absent key) = true")
	}
	if _, ok := ix.get("k"); ok {
		t.Fatalf("get after remove returned ok=true")
	}
}

func TestIndexLenAndIter(t *testing.T) {
	ix := newIndex(8)
	want := map[string]indexEntry{
		"a": {position: 0, length: 1},
		"b": {position: 1, length: 2},
		"c": {position: 3, length: 3},
	}
	for k, e := range want {
		ix.put(k, e)
	}

	if n := ix.len(); n != len(want) {
		t.Fatalf("len() = %d, want %d", n, len(want))
	}

	got := make(map[string]indexEntry)
	for _, snap := range ix.iter() {
		got[snap.Key] = snap.Entry
	}
	if len(got) != len(want) {
		t.Fatalf("iter() yielded %d entries, want %d", len(got), len(want))
	}
	for k, e := range want {
		if got[k] != e {
			t.Fatalf("iter()[%q] = %+v, want %+v", k, got[k], e)
		}
	}
}

func TestIndexReplaceAll(t *testing.T) {
	ix := newIndex(4)
	ix.put("old", indexEntry{position: 0, length: 1})

	replacement := newIndex(4)
	replacement.put("new", indexEntry{position: 5, length: 2})

	ix.replaceAll(replacement)

	if _, ok := ix.get("old"); ok {
		t.Fatalf("old key survived replaceAll")
	}
	if e, ok := ix.get("new"); !ok || e.position != 5 {
		t.Fatalf("get(new) = %+v, %v, want {5 2}, true", e, ok)
	}
}

func TestIndexShardDistribution(t *testing.T) {
	ix := newIndex(16)
	for i := 0; i < 500; i++ {
		ix.put(string(rune(i)), indexEntry{position: int64(i), length: 1})
	}
	nonEmpty := 0
	for _, shard := range ix.shards {
		if len(shard) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty < 8 {
		t.Fatalf("only %d/16 shards populated across 500 keys, hash distribution looks broken", nonEmpty)
	}
}
