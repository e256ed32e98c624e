// Package rules validates derived section attributes. Findings are reported
// as Issues and summarized in the header field "errors"; validation never
// fails a dataset.
package rules

import (
	"context"
	"fmt"
	"slices"

	sgf "github.com/reoring/sgfdata"
)

// Op is a comparison operator for Compare.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op Op) String() string {
	switch op {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Ctx is the position of the section a rule is looking at.
type Ctx struct {
	Ctx   context.Context
	Index int
	Ref   sgf.PathRef // /sections/<Index>
}

// Rule checks one section.
type Rule = func(Ctx, *sgf.Section) []sgf.Issue

// DatasetRule checks properties spanning sections.
type DatasetRule = func(context.Context, *sgf.Dataset) []sgf.Issue

// Conditional gates rules on a header value.
type Conditional struct {
	key string
	in  []string
}

// IfIn holds when the header value, rendered as text, is one of values.
func IfIn(key string, values ...string) Conditional {
	return Conditional{key: key, in: values}
}

// Then attaches rules to run when the condition is satisfied.
func (c Conditional) Then(rules ...Rule) Rule {
	return func(x Ctx, s *sgf.Section) []sgf.Issue {
		v, ok := s.Header(c.key)
		if !ok || v.IsEmpty() || !slices.Contains(c.in, v.String()) {
			return nil
		}
		return And(rules...)(x, s)
	}
}

// Required reports key when it is missing or empty.
func Required(key, code, msg string) Rule {
	return func(x Ctx, s *sgf.Section) []sgf.Issue {
		if v, ok := s.Header(key); ok && !v.IsEmpty() {
			return nil
		}
		return []sgf.Issue{x.Ref.Field("main").Field(key).Issue(code, msg)}
	}
}

// Compare requires header a to stand in relation op to header b. The check
// is vacuously satisfied when either operand is missing or not numeric. The
// issue is reported at a.
func Compare(a string, op Op, b string, code, msg string) Rule {
	return func(x Ctx, s *sgf.Section) []sgf.Issue {
		av, okA := s.HeaderNumber(a)
		bv, okB := s.HeaderNumber(b)
		if !okA || !okB || compare(av, op, bv) {
			return nil
		}
		return []sgf.Issue{x.Ref.Field("main").Field(a).Issue(code, msg, a, av, b, bv, "op", op.String())}
	}
}

// UniqueBy reports sections whose header key repeats an earlier section's
// value. Sections without the key are ignored.
func UniqueBy(key, code string) DatasetRule {
	return func(_ context.Context, d *sgf.Dataset) []sgf.Issue {
		seen := map[string]int{}
		var out []sgf.Issue
		for i, s := range d.Sections {
			v, ok := s.Header(key)
			if !ok || v.IsEmpty() {
				continue
			}
			k := v.String()
			if j, dup := seen[k]; dup {
				out = append(out, sgf.SectionPath(i).Field("main").Field(key).Issue(
					code, "duplicate value", "first", j, "dup", i, key, k,
				))
				continue
			}
			seen[k] = i
		}
		return out
	}
}

// ---------- Rule combinators ----------

// And executes all rules and concatenates Issues.
func And(rules ...Rule) Rule {
	return func(x Ctx, s *sgf.Section) []sgf.Issue {
		var out []sgf.Issue
		for _, r := range rules {
			if r == nil {
				continue
			}
			out = append(out, r(x, s)...)
		}
		return out
	}
}

// ------- helpers -------

func compare(a float64, op Op, b float64) bool {
	switch op {
	case Eq:
		return a == b
	case Ne:
		return a != b
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

