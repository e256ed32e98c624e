package rules

import (
	"context"
	"log/slog"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/normalize"
)

// DepthMinWithinDrilled requires depth_min <= depth_max_drilled.
func DepthMinWithinDrilled() Rule {
	return Compare(sgf.KeyDepthMin, Le, sgf.KeyDepthMaxDrilled,
		sgf.CodeDepthMinExceedsDrilled, "depth_min exceeds depth_max_drilled")
}

// DepthWithinRange requires depth_min <= depth <= depth_max_drilled.
func DepthWithinRange() Rule {
	return And(
		Compare(sgf.KeyDepth, Ge, sgf.KeyDepthMin, sgf.CodeDepthOutOfRange, "depth is above depth_min"),
		Compare(sgf.KeyDepth, Le, sgf.KeyDepthMaxDrilled, sgf.CodeDepthOutOfRange, "depth is below depth_max_drilled"),
	)
}

// DepthMaxWhenRock requires depth_max on sections whose stop code is one of
// rockCodes, normalize.DefaultRockStopCodes when none are given.
func DepthMaxWhenRock(rockCodes ...string) Rule {
	if len(rockCodes) == 0 {
		rockCodes = normalize.DefaultRockStopCodes
	}
	return IfIn(sgf.KeyStopCode, rockCodes...).Then(
		Required(sgf.KeyDepthMax, sgf.CodeDepthMaxMissing, "depth_max missing for a stop against rock"),
	)
}

// DefaultRules are the section checks run by Validate.
func DefaultRules() []Rule { return []Rule{DepthMinWithinDrilled(), DepthWithinRange()} }

// UniqueInvestigationPoints reports repeated investigation points.
func UniqueInvestigationPoints() DatasetRule {
	return UniqueBy(sgf.KeyInvestigationPoint, sgf.CodeDuplicateInvestigationPoint)
}

// Options bundles validator settings. When several are passed to New the
// last one wins.
type Options struct {
	// Rules replaces DefaultRules when non-empty.
	Rules []Rule
	// DatasetRules run after the section rules. Their findings are returned
	// but do not set the errors flag.
	DatasetRules []DatasetRule
	Logger       *slog.Logger
}

// Validator runs section and dataset rules.
type Validator struct {
	rules        []Rule
	datasetRules []DatasetRule
	logger       *slog.Logger
}

// New returns a Validator.
func New(opts ...Options) *Validator {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	v := &Validator{rules: opt.Rules, datasetRules: opt.DatasetRules, logger: opt.Logger}
	if len(v.rules) == 0 {
		v.rules = DefaultRules()
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

var _ sgf.Validator = (*Validator)(nil)

// Validate is shorthand for New().Validate.
func Validate(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, sgf.Issues, error) {
	return New().Validate(ctx, d)
}

// Validate checks every section of a clone of d and records the outcome in
// the header field "errors" (1 when any section rule failed, else 0). The
// error return is reserved for cancellation.
func (v *Validator) Validate(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, sgf.Issues, error) {
	out := d.Clone()
	var all sgf.Issues
	for i, s := range out.Sections {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		x := Ctx{Ctx: ctx, Index: i, Ref: sgf.SectionPath(i)}
		iss := And(v.rules...)(x, s)
		flag := int64(0)
		if len(iss) > 0 {
			flag = 1
		}
		s.SetHeader(sgf.KeyErrors, sgf.Integer(flag))
		all = append(all, iss...)
	}
	for _, r := range v.datasetRules {
		all = append(all, r(ctx, out)...)
	}
	if len(all) > 0 {
		v.logger.Debug("validation findings", "issues", len(all), "first", all[0].Code)
	}
	return out, all, nil
}

// Transform exposes Validate as a pipeline step that discards the findings.
func (v *Validator) Transform() sgf.Transform {
	return func(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, error) {
		out, _, err := v.Validate(ctx, d)
		return out, err
	}
}
