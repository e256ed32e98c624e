// Package normalize rewrites decoded datasets into a canonical form: vendor
// fields folded into their standard counterparts, a stop code and depth
// range per sounding, coordinates in a common reference system and textual
// investigation point identifiers.
//
// Every stage fills attributes only when they are unset, so explicit values
// from the field crew are never overwritten, and every stage is a no-op when
// its inputs are missing.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/geodesy"
	"github.com/reoring/sgfdata/metadata"
)

// Stage names one normalization step.
type Stage string

const (
	StageFold        Stage = "fold"
	StageStopCode    Stage = "stopcode"
	StageDepth       Stage = "depth"
	StageCoordinates Stage = "coordinates"
	StageIdentifiers Stage = "identifiers"
	StageOrder       Stage = "order"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageFold, StageStopCode, StageDepth, StageCoordinates, StageIdentifiers, StageOrder}

// ParseStage resolves a stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("normalize: unknown stage %q", s)
}

// DefaultRockStopCodes are the stop code labels that mean the sounding ended
// on bedrock.
var DefaultRockStopCodes = []string{"stop_against_presumed_rock"}

// Options bundles normalizer settings. When several are passed to New the
// last one wins.
type Options struct {
	// Projection is the target EPSG code; zero selects the most common
	// projection among the sections.
	Projection int
	// Reprojector performs coordinate conversions. Without one the
	// coordinates stage does nothing.
	Reprojector geodesy.Reprojector
	// Sort enables the order stage.
	Sort bool
	// Skip disables individual stages.
	Skip []Stage
	// RockStopCodes overrides DefaultRockStopCodes.
	RockStopCodes []string
	// GenerateIdentifiers assigns a random UUID to sections without an
	// investigation point.
	GenerateIdentifiers bool
	// PropagateIdentifier copies the investigation point into every data and
	// method record that lacks one.
	PropagateIdentifier bool
	Logger              *slog.Logger
}

// Normalizer runs the stages. It is safe for concurrent use.
type Normalizer struct {
	reg *metadata.Registry
	opt Options
}

// New returns a Normalizer using reg for normalization targets and labels.
func New(reg *metadata.Registry, opts ...Options) *Normalizer {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if len(opt.RockStopCodes) == 0 {
		opt.RockStopCodes = DefaultRockStopCodes
	}
	return &Normalizer{reg: reg, opt: opt}
}

var _ sgf.Normalizer = (*Normalizer)(nil)

// Normalize runs all enabled stages on a clone of d.
func (n *Normalizer) Normalize(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, error) {
	out := d.Clone()
	for _, st := range Stages {
		if !n.enabled(st) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := n.run(ctx, st, out); err != nil {
			return nil, fmt.Errorf("normalize: %s: %w", st, err)
		}
	}
	return out, nil
}

// Transform exposes Normalize as a pipeline step.
func (n *Normalizer) Transform() sgf.Transform { return n.Normalize }

// Stage returns a transform that runs a single stage on a clone, whether or
// not it is enabled in the options.
func (n *Normalizer) Stage(st Stage) sgf.Transform {
	return func(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, error) {
		out := d.Clone()
		if err := n.run(ctx, st, out); err != nil {
			return nil, fmt.Errorf("normalize: %s: %w", st, err)
		}
		return out, nil
	}
}

func (n *Normalizer) enabled(st Stage) bool {
	if st == StageOrder && !n.opt.Sort {
		return false
	}
	return !slices.Contains(n.opt.Skip, st)
}

func (n *Normalizer) run(ctx context.Context, st Stage, d *sgf.Dataset) error {
	switch st {
	case StageFold:
		n.fold(d)
	case StageStopCode:
		n.stopCode(d)
	case StageDepth:
		n.depth(d)
	case StageCoordinates:
		return n.coordinates(ctx, d)
	case StageIdentifiers:
		n.identifiers(d)
	case StageOrder:
		order(d)
	default:
		return fmt.Errorf("unknown stage %q", st)
	}
	return nil
}
