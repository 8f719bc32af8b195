package caskdb

import "go.uber.org/zap"

// nopLogger returns a logger that discards everything, used whenever
// Options.Logger is left nil. Constructing it is cheap enough to do per
// Open call; zap's no-op core allocates nothing per log call.
func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
