package caskdb

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	value := bytes.Repeat([]byte("compress me please"), 100)
	compressed := compressValue(value)
	if len(compressed) >= len(value) {
		t.Fatalf("compressed size %d not smaller than original %d for repetitive input", len(compressed), len(value))
	}

	got, err := decompressValue(compressed)
	if err != nil {
		t.Fatalf("decompressValue: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("round trip mismatch")
	}
}

func TestCompressEmptyValue(t *testing.T) {
	if c := compressValue(nil); len(c) != 0 {
		t.Fatalf("compressValue(nil) = %v, want empty", c)
	}
	got, err := decompressValue(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("decompressValue(nil) = %v, %v", got, err)
	}
}

func TestEngineWithCompressValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compressed.cask")
	e, err := OpenWithOptions(path, Options{CompressValues: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	value := bytes.Repeat([]byte("abc"), 1000)
	if err := e.Set([]byte("k"), value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := e.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("Get mismatch with CompressValues enabled")
	}
}
