// Package report provides severity-filtered output for check results.
//
// Check outcomes are user-facing product output, not diagnostics: they are
// written to a plain io.Writer (normally stdout) and filtered against a
// verbosity threshold chosen on the command line. Operational diagnostics
// belong to the structured logger, not to this package.
package report

import (
	"fmt"
	"io"
	"strings"
)

// Level is the severity of a check result, ordered from most to least
// critical: LevelError < LevelWarning < LevelInfo.
type Level int

const (
	// LevelError marks a failed check.
	LevelError Level = iota
	// LevelWarning marks a degraded or skipped check.
	LevelWarning
	// LevelInfo marks a passed check or informational output.
	LevelInfo
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a level name (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warning":
		return LevelWarning, nil
	case "info":
		return LevelInfo, nil
	default:
		return 0, fmt.Errorf("invalid verbosity level %q (must be error, warning or info)", s)
	}
}

// Reporter emits messages whose severity passes the configured threshold.
// A message at severity s is written iff s <= threshold, so an "info"
// threshold shows everything and an "error" threshold shows only errors.
//
// The threshold is explicit state held by the Reporter; there is no
// package-level verbosity.
type Reporter struct {
	out       io.Writer
	threshold Level
}

// New creates a Reporter writing to out with the given threshold.
func New(out io.Writer, threshold Level) *Reporter {
	return &Reporter{out: out, threshold: threshold}
}

// Threshold returns the configured verbosity threshold.
func (r *Reporter) Threshold() Level {
	return r.threshold
}

// Report writes msg followed by a newline iff severity passes the threshold.
func (r *Reporter) Report(severity Level, msg string) {
	if severity > r.threshold {
		return
	}
	fmt.Fprintln(r.out, msg)
}

// Errorf reports a formatted message at LevelError.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.Report(LevelError, fmt.Sprintf(format, args...))
}

// Warnf reports a formatted message at LevelWarning.
func (r *Reporter) Warnf(format string, args ...interface{}) {
	r.Report(LevelWarning, fmt.Sprintf(format, args...))
}

// Infof reports a formatted message at LevelInfo.
func (r *Reporter) Infof(format string, args ...interface{}) {
	r.Report(LevelInfo, fmt.Sprintf(format, args...))
}
