// Package telemetry holds the package-level logger the rest of pstkit logs
// through. It defaults to discarding everything, so importing pstkit as a
// library never prints unless the embedding program opts in.
package telemetry

import (
	"io"
	"log/slog"
)

// Logger is used by ndb and msgstore for open-time diagnostics (Debug) and
// recovered per-row/per-property decode failures (Warn). It is never used
// for expected "not found" conditions, which are reported through errors.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init points Logger at w at the given level, replacing the default
// discarding handler. Call once, before opening any files, from a program
// embedding pstkit that wants to see its diagnostics.
func Init(w io.Writer, level slog.Level) {
	Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
