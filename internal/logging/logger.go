// Package logging builds the zerolog logger shared by the server and
// provides an Echo middleware that writes one structured line per request.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w (stdout when nil).  format "console"
// selects the human-readable writer; anything else emits JSON lines.
func New(w io.Writer, level, format string) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Integrity returns an error-level event tagged for operator alerting.  It
// is used for conditions that indicate stored state may be inconsistent.
func Integrity(l zerolog.Logger) *zerolog.Event {
	return l.Error().Str("alert", "integrity")
}
