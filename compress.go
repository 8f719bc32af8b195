// Optional value compression, gated by Options.CompressValues. Grounded on
// the teacher's compress.go, minus the ascii85 encoding step: caskdb's log
// framing is length-prefixed binary, not line-delimited text, so compressed
// bytes need no printable-string escaping before they're embedded in the
// JSON record (they go into the "v" field's base64 the same as any other
// value bytes).
package caskdb

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder, both documented safe for concurrent use. Built
// once at package init since constructing either is comparatively
// expensive. SpeedFastest favours the hot Set path over the cold Get path.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

func compressValue(v []byte) []byte {
	if len(v) == 0 {
		return v
	}
	return zstdEncoder.EncodeAll(v, nil)
}

func decompressValue(v []byte) ([]byte, error) {
	if len(v) == 0 {
		return v, nil
	}
	out, err := zstdDecoder.DecodeAll(v, nil)
	if err != nil {
		return nil, fmt.Errorf("caskdb: decompress value: %w", err)
	}
	return out, nil
}
