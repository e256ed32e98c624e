package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/sgfdata/metadata"
)

func TestRegistry_Default_CodeIdentRoundTrip(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)

	cases := []struct {
		kind  metadata.BlockKind
		code  string
		ident string
	}{
		{metadata.Main, "HN", "investigation_point"},
		{metadata.Main, "HM", "method_code"},
		{metadata.Main, "HT", "stop_code"},
		{metadata.Main, "HX", "x_coordinate"},
		{metadata.Data, "D", "depth"},
		{metadata.Data, "K", "comments"},
		{metadata.Data, "AZ", "allocated_value_during_performance_of_sounding"},
		{metadata.Method, "MB", "probe_type"},
	}
	for _, c := range cases {
		require.Equal(t, c.ident, reg.Ident(c.kind, c.code), "ident of %s/%s", c.kind, c.code)
		require.Equal(t, c.code, reg.Code(c.kind, c.ident), "code of %s/%s", c.kind, c.ident)
	}
}

func TestRegistry_Disambiguation_ByUnit(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)

	require.Equal(t, "rotation_rpm", reg.Ident(metadata.Data, "R"))
	require.Equal(t, "rotation_flag", reg.Ident(metadata.Data, "AR"))
	require.Equal(t, "flushing_flag", reg.Ident(metadata.Data, "I"))
	require.Equal(t, "flushing_l_min", reg.Ident(metadata.Data, "Q"))
	// A unique name never carries its unit.
	require.Equal(t, "hammering", reg.Ident(metadata.Data, "H"))
}

func TestRegistry_Disambiguation_SingleUnit(t *testing.T) {
	reg, err := metadata.New(metadata.Tables{
		Fields: map[metadata.BlockKind][]metadata.FieldDef{
			metadata.Data: {
				{Code: "X1", Name: "Force", Unit: "kN"},
				{Code: "X2", Name: "Force", Unit: "kN"},
			},
		},
	})
	require.NoError(t, err)
	// Same name and same unit cannot be told apart by unit; the code breaks the tie.
	require.Equal(t, "force_x1", reg.Ident(metadata.Data, "X1"))
	require.Equal(t, "force_x2", reg.Ident(metadata.Data, "X2"))
}

func TestRegistry_PassThrough(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)

	require.Equal(t, "ZZ", reg.Ident(metadata.Main, "ZZ"))
	require.Equal(t, "ZZ", reg.Code(metadata.Main, "ZZ"))
	require.Equal(t, "depth_min", reg.Code(metadata.Main, "depth_min"))
	require.Equal(t, "999", reg.Label(metadata.Comments, "999"))
	require.Equal(t, "not_a_label", reg.Unlabel(metadata.Comments, "not_a_label"))
	require.Equal(t, metadata.TypeNone, reg.TypeOf(metadata.Main, "ZZ"))
}

func TestRegistry_Labels_Idempotent(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)

	for _, kind := range []metadata.LabelKind{metadata.Methods, metadata.Comments, metadata.DataFlags} {
		for _, l := range reg.Labels(kind) {
			id := reg.Label(kind, l.Code)
			require.Equal(t, id, reg.Label(kind, reg.Unlabel(kind, id)), "%s/%s", kind, l.Code)
		}
	}
	require.Equal(t, "stop_against_presumed_rock", reg.Label(metadata.Comments, "90"))
	require.Equal(t, "90", reg.Unlabel(metadata.Comments, "stop_against_presumed_rock"))
	require.True(t, reg.HasLabel(metadata.Methods, "24"))
}

func TestRegistry_Types(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)

	require.Equal(t, metadata.TypeDate, reg.TypeOf(metadata.Main, "date"))
	require.Equal(t, metadata.TypeTime, reg.TypeOf(metadata.Main, "start_time"))
	require.Equal(t, metadata.TypeDateTime, reg.TypeOfCode(metadata.Data, "AK"))
	require.Equal(t, metadata.TypeDateTime, reg.TypeOfCode(metadata.Data, "%"))

	def, ok := reg.Field(metadata.Data, "DatumTid")
	require.True(t, ok)
	require.Equal(t, metadata.PrecisionMillisecond, def.Precision)
}

func TestRegistry_NormalizationTargets(t *testing.T) {
	reg, err := metadata.LoadDefault()
	require.NoError(t, err)

	got := reg.NormalizationTargets(metadata.Data)
	require.Equal(t, map[string]string{
		"date_and_time_geotech": "date_and_time",
		"timestamp":             "date_and_time",
	}, got)

	// The returned map is a copy.
	got["timestamp"] = "x"
	require.Equal(t, "date_and_time", reg.NormalizationTargets(metadata.Data)["timestamp"])

	require.Equal(t, map[string]string{"investigation_point_geotech": "investigation_point"},
		reg.NormalizationTargets(metadata.Main))
	require.Empty(t, reg.NormalizationTargets(metadata.Method))
}

func TestNew_Errors(t *testing.T) {
	_, err := metadata.New(metadata.Tables{Fields: map[metadata.BlockKind][]metadata.FieldDef{
		metadata.Main: {{Code: "HA", Name: "A"}, {Code: "HA", Name: "B"}},
	}})
	require.ErrorContains(t, err, "duplicate field code")

	_, err = metadata.New(metadata.Tables{Fields: map[metadata.BlockKind][]metadata.FieldDef{
		metadata.Main: {{Code: "HA", Name: "A", Normalization: "QQ"}},
	}})
	require.ErrorContains(t, err, "unknown code")

	_, err = metadata.New(metadata.Tables{Labels: map[metadata.LabelKind][]metadata.Label{
		metadata.Comments: {{Code: "1", Name: "a"}, {Code: "1", Name: "b"}},
	}})
	require.ErrorContains(t, err, "duplicate label code")
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Depth":               "depth",
		"Rotation-0=off 1=on": "rotation_0_off_1_on",
		"Flushing-l/min":      "flushing_l_min",
		"  X coordinate ":     "x_coordinate",
	}
	for in, want := range cases {
		if got := metadata.Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
