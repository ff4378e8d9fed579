package extraction

import "slices"

// Trigger names a size threshold that pushed a file past Standard synthesis.
type Trigger string

const (
	TriggerExcessiveLines   Trigger = "excessive_lines"
	TriggerExcessiveSymbols Trigger = "excessive_symbols"
)

// RoundFailure records a synthesis round that failed and was recovered by fallback.
type RoundFailure struct {
	Round  int    `json:"round" yaml:"round"`
	Reason string `json:"reason" yaml:"reason"`
}

// UnsupportedConstruct records a syntax form an adapter skipped.
type UnsupportedConstruct struct {
	Construct string `json:"construct" yaml:"construct"`
	Line      int    `json:"line" yaml:"line"`
}

// Diagnostics are machine-readable markers attached to a ParseUnit instead of errors.
type Diagnostics struct {
	Truncated         bool                   `json:"truncated" yaml:"truncated"`
	Oversized         bool                   `json:"oversized" yaml:"oversized"`
	Triggers          []Trigger              `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Strategy          string                 `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	RoundFailures     []RoundFailure         `json:"round_failures,omitempty" yaml:"round_failures,omitempty"`
	Unsupported       []UnsupportedConstruct `json:"unsupported,omitempty" yaml:"unsupported,omitempty"`
	WildcardImports   []string               `json:"wildcard_imports,omitempty" yaml:"wildcard_imports,omitempty"`
	LowConfidence     int                    `json:"low_confidence" yaml:"low_confidence"`
	Unresolved        int                    `json:"unresolved" yaml:"unresolved"`
	DepthExceeded     int                    `json:"depth_exceeded,omitempty" yaml:"depth_exceeded,omitempty"`
	InheritanceCycles [][]string             `json:"inheritance_cycles,omitempty" yaml:"inheritance_cycles,omitempty"`
}

func (d Diagnostics) clone() Diagnostics {
	c := d
	c.Triggers = slices.Clone(d.Triggers)
	c.RoundFailures = slices.Clone(d.RoundFailures)
	c.Unsupported = slices.Clone(d.Unsupported)
	c.WildcardImports = slices.Clone(d.WildcardImports)
	if d.InheritanceCycles != nil {
		c.InheritanceCycles = make([][]string, len(d.InheritanceCycles))
		for i, cyc := range d.InheritanceCycles {
			c.InheritanceCycles[i] = slices.Clone(cyc)
		}
	}
	return c
}
