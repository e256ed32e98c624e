package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/geodesy"
	"github.com/reoring/sgfdata/normalize"
	"github.com/reoring/sgfdata/rules"
	"github.com/reoring/sgfdata/transform"
)

// pipelineFlags selects the transforms applied between decoding and
// writing. convert and batch share them.
type pipelineFlags struct {
	normalize   bool
	skipStages  []string
	sort        bool
	projection  int
	reproject   bool
	generateIDs bool
	propagateID bool
	validate    bool

	depthSign      int
	materials      []string
	materialColumn string

	dtm        string
	dtmCRS     int
	crs        int
	overwriteZ bool
}

func (p *pipelineFlags) bind(f *pflag.FlagSet) {
	f.BoolVar(&p.normalize, "normalize", false, "run the normalization stages")
	f.StringSliceVar(&p.skipStages, "skip-stage", nil, "normalization stage to skip (repeatable)")
	f.BoolVar(&p.sort, "sort", false, "sort sections by investigation point and rows by depth")
	f.IntVar(&p.projection, "projection", 0, "target EPSG code of the coordinates stage (0: config or most common)")
	f.BoolVar(&p.reproject, "reproject", false, "reproject coordinates with cs2cs during normalization")
	f.BoolVar(&p.generateIDs, "generate-ids", false, "assign a UUID to sections without investigation point")
	f.BoolVar(&p.propagateID, "propagate-id", false, "copy the investigation point into method and data rows")
	f.BoolVar(&p.validate, "validate", false, "check depth consistency and set the errors flag")
	f.IntVar(&p.depthSign, "depth-sign", 0, "rewrite depths as positive (1) or negative (-1)")
	f.StringArrayVar(&p.materials, "depth-to-material", nil, "material word marking bedrock (repeatable, in priority order)")
	f.StringVar(&p.materialColumn, "material-column", transform.DefaultMaterialColumn, "data column searched for material words")
	f.StringVar(&p.dtm, "sample-dtm", "", "elevation raster used to fill z_coordinate")
	f.IntVar(&p.dtmCRS, "dtm-crs", 0, "EPSG code of the elevation raster")
	f.IntVar(&p.crs, "crs", 0, "EPSG code of the input coordinates (0: each section's projection)")
	f.BoolVar(&p.overwriteZ, "overwrite-z", false, "replace existing z_coordinate values with sampled ones")
}

// pipeline is a ready to run chain plus the validator whose findings the
// commands report.
type pipeline struct {
	run       sgf.Transform
	validator *rules.Validator
}

func (a *app) buildPipeline(p pipelineFlags) (*pipeline, error) {
	var steps []sgf.Transform
	if p.depthSign != 0 {
		t, err := transform.DepthSign(p.depthSign)
		if err != nil {
			return nil, err
		}
		steps = append(steps, t)
	}
	// The rock stop code set here feeds the depth stage of normalization.
	if len(p.materials) > 0 {
		steps = append(steps, transform.DepthToMaterial(p.materials, p.materialColumn))
	}
	cs2cs := geodesy.CS2CS{Path: a.cfg.Tools.CS2CS, Logger: a.log}
	if p.normalize {
		opt := normalize.Options{
			Projection:          a.cfg.Projection,
			Sort:                p.sort,
			GenerateIdentifiers: p.generateIDs,
			PropagateIdentifier: p.propagateID,
			Logger:              a.log,
		}
		if p.projection != 0 {
			opt.Projection = p.projection
		}
		if p.reproject {
			opt.Reprojector = cs2cs
		}
		for _, s := range p.skipStages {
			st, err := normalize.ParseStage(s)
			if err != nil {
				return nil, err
			}
			opt.Skip = append(opt.Skip, st)
		}
		steps = append(steps, transform.Normalize(a.reg, opt))
	}
	if p.dtm != "" {
		if p.dtmCRS == 0 {
			return nil, fmt.Errorf("--sample-dtm needs --dtm-crs")
		}
		sampler := geodesy.GDALSampler{Raster: p.dtm, EPSG: p.dtmCRS, Path: a.cfg.Tools.GDALLocationInfo}
		steps = append(steps, transform.SampleElevation(sampler, cs2cs, p.crs, p.overwriteZ))
	}
	pl := &pipeline{run: sgf.Chain(steps...)}
	if p.validate {
		pl.validator = rules.New(rules.Options{
			Rules:        append(rules.DefaultRules(), rules.DepthMaxWhenRock()),
			DatasetRules: []rules.DatasetRule{rules.UniqueInvestigationPoints()},
			Logger:       a.log,
		})
	}
	return pl, nil
}

// apply runs the chain and then the validator.
func (pl *pipeline) apply(ctx context.Context, d *sgf.Dataset) (*sgf.Dataset, sgf.Issues, error) {
	out, err := pl.run(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	if pl.validator == nil {
		return out, nil, nil
	}
	return pl.validator.Validate(ctx, out)
}
