package editor

import (
	"github.com/wudi/redact/observability"
	"github.com/wudi/redact/scripting"
)

// RGB is a fill color with components in [0,1].
type RGB struct {
	R, G, B float64
}

// Black is the default overlay fill.
var Black = RGB{0, 0, 0}

// SecurityLevel tunes how aggressively positional traces of removed
// content are scrubbed.
type SecurityLevel int

const (
	// Standard normalizes spacing around removals.
	Standard SecurityLevel = iota
	// Enhanced also coalesces adjacent kept runs to hide gap boundaries.
	Enhanced
	// Paranoid additionally removes path operations that merely touch a
	// redaction rectangle.
	Paranoid
)

// Options configures a redaction batch.
type Options struct {
	// FillColor paints the opaque overlay. Default opaque black.
	FillColor RGB

	// SanitizeMetadata scrubs the redacted terms from document info
	// fields and outline titles after the content pass.
	SanitizeMetadata bool

	// RemoveAllMetadata clears all info fields instead.
	RemoveAllMetadata bool

	// NormalizePositions rewrites positioning around removals so the
	// gap no longer encodes the removed run's width. Default true.
	NormalizePositions bool

	// SecurityLevel defaults to Standard.
	SecurityLevel SecurityLevel

	// Rule, if set, may remove additional operations. It can never keep
	// an operation that geometric selection removed.
	Rule scripting.Rule

	// Logger defaults to the no-op logger.
	Logger observability.Logger
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		FillColor:          Black,
		NormalizePositions: true,
		SecurityLevel:      Standard,
	}
}

func (o *Options) logger() observability.Logger {
	if o.Logger == nil {
		return observability.NopLogger{}
	}
	return o.Logger
}

// minGap is the fixed horizontal gap, in display points, that replaces
// whatever distance removed content used to occupy. Tunable, not part
// of any wire format.
const minGap = 2.0

// touchEpsilon inflates rectangles for Paranoid path tests.
const touchEpsilon = 0.25
