package sgfdata

import "context"

// Transform is a pluggable dataset rewrite. Implementations must not mutate
// their argument; they clone and return a new Dataset.
type Transform func(ctx context.Context, d *Dataset) (*Dataset, error)

// Chain composes transforms left to right. Nil entries are skipped.
func Chain(ts ...Transform) Transform {
	return func(ctx context.Context, d *Dataset) (*Dataset, error) {
		var err error
		for _, t := range ts {
			if t == nil {
				continue
			}
			if err = ctx.Err(); err != nil {
				return nil, err
			}
			if d, err = t(ctx, d); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
}

// Normalizer rewrites a dataset into canonical form.
type Normalizer interface {
	Normalize(ctx context.Context, d *Dataset) (*Dataset, error)
}

// Validator annotates a dataset with consistency findings.
type Validator interface {
	Validate(ctx context.Context, d *Dataset) (*Dataset, Issues, error)
}

// ApplyNormalize calls n when non-nil.
func ApplyNormalize(ctx context.Context, d *Dataset, n Normalizer) (*Dataset, error) {
	if n == nil {
		return d, nil
	}
	return n.Normalize(ctx, d)
}

// ApplyValidate calls v when non-nil.
func ApplyValidate(ctx context.Context, d *Dataset, v Validator) (*Dataset, Issues, error) {
	if v == nil {
		return d, nil, nil
	}
	return v.Validate(ctx, d)
}
