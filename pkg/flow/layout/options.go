package layout

import (
	"fmt"

	apperrors "github.com/voxhive/callflow/pkg/errors"
)

// Direction selects the main axis ranks are laid out along.
type Direction string

const (
	// TopToBottom places rank 0 at the top and grows downward.
	TopToBottom Direction = "TB"

	// LeftToRight places rank 0 at the left and grows rightward.
	LeftToRight Direction = "LR"
)

// Default footprint and spacing values, sized for the editor's node cards.
const (
	// DefaultNodeWidth is the horizontal footprint reserved per node.
	DefaultNodeWidth = 260.0

	// DefaultNodeHeight is the vertical footprint reserved per node.
	DefaultNodeHeight = 120.0

	// DefaultRankGap is the spacing between consecutive ranks.
	DefaultRankGap = 90.0

	// DefaultNodeGap is the spacing between nodes within a rank.
	DefaultNodeGap = 60.0

	// DefaultZigzag is the cross-axis offset applied to single-node ranks.
	DefaultZigzag = 80.0

	// DefaultSweeps bounds the barycenter ordering passes.
	DefaultSweeps = 4
)

// ValidDirections is the set of supported layout directions.
var ValidDirections = map[Direction]bool{
	TopToBottom: true,
	LeftToRight: true,
}

// Options configures a layout computation. The zero value is usable:
// [Compute] fills defaults via ValidateAndSetDefaults.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Direction selects the main axis. Defaults to TopToBottom.
	Direction Direction `json:"direction,omitempty"`

	// NodeWidth and NodeHeight are the footprint reserved per node, in
	// canvas units. The layout spaces ranks and rank-mates by footprint
	// plus gap; it does not measure actual node content.
	NodeWidth  float64 `json:"node_width,omitempty"`
	NodeHeight float64 `json:"node_height,omitempty"`

	// RankGap is the spacing between consecutive ranks along the main
	// axis. NodeGap is the spacing between nodes within a rank.
	RankGap float64 `json:"rank_gap,omitempty"`
	NodeGap float64 `json:"node_gap,omitempty"`

	// Zigzag is the cross-axis offset alternately applied to ranks that
	// hold a single non-terminal node, so long linear chains read as a
	// path instead of a plumb line.
	Zigzag float64 `json:"zigzag,omitempty"`

	// Sweeps bounds the barycenter ordering passes. Each sweep runs a
	// full down-and-up pass and is kept only if it strictly reduces the
	// total crossing count.
	Sweeps int `json:"sweeps,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// DefaultOptions returns the options used when callers pass the zero value.
func DefaultOptions() Options {
	return Options{
		Direction:  TopToBottom,
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		RankGap:    DefaultRankGap,
		NodeGap:    DefaultNodeGap,
		Zigzag:     DefaultZigzag,
		Sweeps:     DefaultSweeps,
	}
}

// ValidateAndSetDefaults checks the options and applies defaults for zero
// values. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Direction == "" {
		o.Direction = TopToBottom
	}
	if !ValidDirections[o.Direction] {
		return apperrors.New(apperrors.ErrCodeInvalidDirection,
			fmt.Sprintf("unsupported layout direction %q (valid: TB, LR)", o.Direction))
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.RankGap <= 0 {
		o.RankGap = DefaultRankGap
	}
	if o.NodeGap <= 0 {
		o.NodeGap = DefaultNodeGap
	}
	if o.Zigzag == 0 {
		o.Zigzag = DefaultZigzag
	}
	if o.Sweeps <= 0 {
		o.Sweeps = DefaultSweeps
	}
	o.validated = true
	return nil
}
