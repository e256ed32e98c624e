package geodesy

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestReproject_SameSystemCopies(t *testing.T) {
	called := false
	r := ReprojectorFunc(func(context.Context, int, int, []Point) ([]Point, error) {
		called = true
		return nil, nil
	})
	in := []Point{{1, 2, math.NaN()}}
	out, err := Reproject(context.Background(), r, 3006, 3006, in)
	if err != nil || called {
		t.Fatalf("expected no collaborator call, err=%v called=%v", err, called)
	}
	out[0].X = 9
	if in[0].X != 1 {
		t.Fatalf("input was aliased")
	}
}

func TestReproject_LengthMismatch(t *testing.T) {
	r := ReprojectorFunc(func(context.Context, int, int, []Point) ([]Point, error) { return nil, nil })
	_, err := Reproject(context.Background(), r, 3006, 4326, []Point{{1, 2, 3}})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("want ErrLengthMismatch, got %v", err)
	}
}

func TestParseColumns(t *testing.T) {
	rows, err := parseColumns([]byte("1.5\t2.5 0.0\n*\t* 0\n"), 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != 1.5 || rows[0][1] != 2.5 {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if !math.IsNaN(rows[1][0]) {
		t.Fatalf("failure marker should parse as NaN: %v", rows[1])
	}
	if _, err := parseColumns([]byte("1 2\n"), 3); err == nil {
		t.Fatalf("expected column count error")
	}
}

func TestCS2CS_MissingBinary(t *testing.T) {
	c := CS2CS{Path: "/nonexistent/cs2cs"}
	if _, err := c.Reproject(context.Background(), 3006, 4326, []Point{{1, 2, 3}}); err == nil {
		t.Fatalf("expected error for missing binary")
	}
}
