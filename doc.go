// Package sgfdata reads and writes borehole sounding files in the SGF format
// (Swedish Geotechnical Society, report 3:2012E) and exposes them as a
// semantically labelled in-memory model.
//
// The package provides:
//
//   - A Decoder that tokenizes SGF text, renames legacy field codes to
//     readable identifiers and coerces values to numbers, dates and labels.
//   - An Encoder that is the exact inverse of the Decoder.
//   - A stable error model via Issues (JSON Pointer, code, message) and a
//     fatal *SyntaxError for malformed input.
//   - Transform, the (ctx, *Dataset) -> *Dataset hook used by the normalize,
//     rules and transform packages.
//
// Design policy:
//   - Keep the data model and codec entry points in the root package; field
//     dictionaries live under metadata/, scalar codecs under codec/, charset
//     handling under source/ and tokenization under internal/engine.
//   - Every operation that changes a Dataset works on a clone and returns a
//     new value; inputs are never mutated.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	reg, _ := metadata.LoadDefault()
//	ds, err := sgfdata.NewDecoder(reg).Decode(ctx, r)
//	ds, err = normalize.New(reg).Normalize(ctx, ds)
//	ds, issues, err := rules.Validate(ctx, ds)
//	err = sgfdata.NewEncoder(reg).Encode(ctx, w, ds)
package sgfdata
