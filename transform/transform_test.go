package transform_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/geodesy"
	"github.com/reoring/sgfdata/metadata"
	"github.com/reoring/sgfdata/normalize"
	"github.com/reoring/sgfdata/transform"
)

func dataSection(rows ...*sgf.Record) *sgf.Section {
	s := sgf.NewSection()
	s.Data = sgf.NewBlock(metadata.Data, rows...)
	return s
}

func TestDepthSign(t *testing.T) {
	d := &sgf.Dataset{Sections: []*sgf.Section{dataSection(
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(1.5)), sgf.P("K", sgf.Integer(7))),
		sgf.NewRecord(sgf.P(sgf.KeyStartDepth, sgf.Integer(-2)), sgf.P(sgf.KeyEndDepth, sgf.Float(-3))),
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Text("n/a"))),
	)}}

	neg, err := transform.DepthSign(-1)
	require.NoError(t, err)
	out, err := neg(context.Background(), d)
	require.NoError(t, err)

	rows := out.Sections[0].Data.Records
	v, _ := rows[0].Get(sgf.KeyDepth)
	assert.True(t, v.Equal(sgf.Float(-1.5)))
	v, _ = rows[0].Get("K")
	assert.True(t, v.Equal(sgf.Integer(7)), "non-depth columns untouched")
	v, _ = rows[1].Get(sgf.KeyStartDepth)
	assert.True(t, v.Equal(sgf.Integer(-2)))
	v, _ = rows[1].Get(sgf.KeyEndDepth)
	assert.True(t, v.Equal(sgf.Float(-3)))
	v, _ = rows[2].Get(sgf.KeyDepth)
	assert.True(t, v.Equal(sgf.Text("n/a")))

	pos, err := transform.DepthSign(1)
	require.NoError(t, err)
	out, err = pos(context.Background(), out)
	require.NoError(t, err)
	v, _ = out.Sections[0].Data.Records[1].Get(sgf.KeyStartDepth)
	assert.True(t, v.Equal(sgf.Integer(2)))

	// input untouched
	v, _ = d.Sections[0].Data.Records[0].Get(sgf.KeyDepth)
	assert.True(t, v.Equal(sgf.Float(1.5)))
}

func TestDepthSign_Invalid(t *testing.T) {
	_, err := transform.DepthSign(0)
	assert.ErrorIs(t, err, transform.ErrInvalidSign)
}

func TestDepthToMaterial(t *testing.T) {
	d := &sgf.Dataset{Sections: []*sgf.Section{
		dataSection(
			sgf.NewRecord(sgf.P(sgf.KeyStartDepth, sgf.Float(-1)), sgf.P(sgf.KeyComments, sgf.Text("clay"))),
			sgf.NewRecord(sgf.P(sgf.KeyStartDepth, sgf.Float(-6)), sgf.P(sgf.KeyComments, sgf.Text("gravel, rock"))),
			sgf.NewRecord(sgf.P(sgf.KeyStartDepth, sgf.Float(-4.5)), sgf.P(sgf.KeyComments, sgf.Text("rock"))),
			sgf.NewRecord(sgf.P(sgf.KeyStartDepth, sgf.Float(-2)), sgf.P(sgf.KeyComments, sgf.Text("rocky_soil"))),
		),
		dataSection(
			sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(3)), sgf.P(sgf.KeyComments, sgf.Text("sand"))),
		),
		dataSection(
			sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(8)), sgf.P(sgf.KeyComments, sgf.Text("moraine"))),
			sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(9)), sgf.P(sgf.KeyComments, sgf.Text("rock"))),
		),
	}}

	out, err := transform.DepthToMaterial([]string{"rock", "moraine"}, "")(context.Background(), d)
	require.NoError(t, err)

	v, ok := out.Sections[0].Header(sgf.KeyDepthBedrock)
	require.True(t, ok)
	assert.True(t, v.Equal(sgf.Float(4.5)), "got %v", v)
	v, _ = out.Sections[0].Header(sgf.KeyStopCode)
	assert.Equal(t, transform.StopAgainstPresumedRock, v.String())

	assert.False(t, out.Sections[1].HasHeader(sgf.KeyDepthBedrock))
	assert.False(t, out.Sections[1].HasHeader(sgf.KeyStopCode))

	// earlier materials win even when a later one is shallower
	v, _ = out.Sections[2].Header(sgf.KeyDepthBedrock)
	assert.True(t, v.Equal(sgf.Float(9)), "got %v", v)

	assert.False(t, d.Sections[0].HasHeader(sgf.KeyDepthBedrock))
}

func TestDepthToMaterial_QuotesMaterial(t *testing.T) {
	d := &sgf.Dataset{Sections: []*sgf.Section{dataSection(
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(2)), sgf.P("note", sgf.Text("sandXstone"))),
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(5)), sgf.P("note", sgf.Text("sand.stone"))),
	)}}
	out, err := transform.DepthToMaterial([]string{"sand.stone"}, "note")(context.Background(), d)
	require.NoError(t, err)
	v, _ := out.Sections[0].Header(sgf.KeyDepthBedrock)
	assert.True(t, v.Equal(sgf.Float(5)), "got %v", v)
}

type fakeSampler struct {
	crs   int
	calls [][]geodesy.Point
	err   error
}

func (f *fakeSampler) CRS() int { return f.crs }

func (f *fakeSampler) Sample(_ context.Context, pts []geodesy.Point) ([]float64, error) {
	f.calls = append(f.calls, pts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(pts))
	for i, p := range pts {
		if p.X < 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = p.X + p.Y
	}
	return out, nil
}

func located(x, y float64, epsg int64, extra ...sgf.Pair) *sgf.Section {
	s := sgf.NewSection()
	s.SetHeader(sgf.KeyX, sgf.Float(x))
	s.SetHeader(sgf.KeyY, sgf.Float(y))
	s.SetHeader(sgf.KeyProjection, sgf.Integer(epsg))
	for _, p := range extra {
		s.SetHeader(p.Key, p.Value)
	}
	return s
}

func TestSampleElevation(t *testing.T) {
	d := &sgf.Dataset{Sections: []*sgf.Section{
		located(10, 20, 3006),
		located(1, 2, 3006, sgf.P(sgf.KeyZ, sgf.Float(99))),
		located(-5, 2, 3006),
		sgf.NewSection(),
	}}
	sampler := &fakeSampler{crs: 3006}

	out, err := transform.SampleElevation(sampler, nil, 0, false)(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, sampler.calls, 1)
	assert.Len(t, sampler.calls[0], 2)

	v, _ := out.Sections[0].Header(sgf.KeyZ)
	assert.True(t, v.Equal(sgf.Float(30)))
	v, _ = out.Sections[1].Header(sgf.KeyZ)
	assert.True(t, v.Equal(sgf.Float(99)), "existing z kept without overwrite")
	assert.False(t, out.Sections[2].HasHeader(sgf.KeyZ), "no data leaves z unset")

	out, err = transform.SampleElevation(sampler, nil, 0, true)(context.Background(), d)
	require.NoError(t, err)
	v, _ = out.Sections[1].Header(sgf.KeyZ)
	assert.True(t, v.Equal(sgf.Float(3)))
}

func TestSampleElevation_Reprojects(t *testing.T) {
	var srcs []int
	rp := geodesy.ReprojectorFunc(func(_ context.Context, src, dst int, pts []geodesy.Point) ([]geodesy.Point, error) {
		srcs = append(srcs, src)
		out := make([]geodesy.Point, len(pts))
		for i, p := range pts {
			out[i] = geodesy.Point{X: p.X + 100, Y: p.Y, Z: p.Z}
		}
		return out, nil
	})
	d := &sgf.Dataset{Sections: []*sgf.Section{located(1, 1, 4326)}}
	sampler := &fakeSampler{crs: 3006}

	out, err := transform.SampleElevation(sampler, rp, 3021, false)(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []int{3021}, srcs, "explicit crs overrides the section projection")
	v, _ := out.Sections[0].Header(sgf.KeyZ)
	assert.True(t, v.Equal(sgf.Float(102)))
}

func TestSampleElevation_Failures(t *testing.T) {
	d := &sgf.Dataset{Sections: []*sgf.Section{located(1, 1, 4326)}}

	_, err := transform.SampleElevation(&fakeSampler{crs: 3006}, nil, 0, false)(context.Background(), d)
	iss, ok := sgf.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, sgf.CodeDependencyUnavailable, iss[0].Code)

	boom := errors.New("raster missing")
	_, err = transform.SampleElevation(&fakeSampler{crs: 4326, err: boom}, nil, 0, false)(context.Background(), d)
	assert.ErrorIs(t, err, boom)
}

func TestChain_NormalizeThenValidate(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)
	s := dataSection(
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(3))),
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(7.5))),
	)
	d := &sgf.Dataset{Sections: []*sgf.Section{s}}

	out, err := sgf.Chain(
		transform.Normalize(reg, normalize.Options{}),
		transform.Validate(),
	)(context.Background(), d)
	require.NoError(t, err)
	v, _ := out.Sections[0].Header(sgf.KeyDepthMaxDrilled)
	assert.True(t, v.Equal(sgf.Float(7.5)))
	v, _ = out.Sections[0].Header(sgf.KeyErrors)
	assert.True(t, v.Equal(sgf.Integer(0)))
}
