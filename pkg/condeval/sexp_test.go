package condeval_test

import (
	"testing"

	"github.com/randalmurphal/condeval/pkg/condeval"
	"github.com/randalmurphal/condeval/pkg/condeval/numexpr"
	"github.com/randalmurphal/condeval/pkg/condeval/sexp"
	"github.com/stretchr/testify/assert"
)

// opaque is an expression without an S-expression projection.
type opaque struct{ name string }

func (o opaque) Evaluate([]int) (int, error) { return 0, nil }
func (o opaque) String() string              { return o.name }

func TestToSexp(t *testing.T) {
	x, y := numexpr.Var[int](0), numexpr.Const(2)

	tests := []struct {
		name string
		cond *condeval.Condition[int]
		want string
	}{
		{"true", condeval.True[int](), "true"},
		{"false", condeval.False[int](), "false"},
		{"not", condeval.Not(condeval.True[int]()), "(not true)"},
		{"and", condeval.And(condeval.True[int](), condeval.False[int]()), "(and true false)"},
		{"or", condeval.Or(condeval.False[int](), condeval.True[int]()), "(or false true)"},
		{"equal", condeval.Equal(x, y), "(== $0 2)"},
		{"less", condeval.Less(x, y), "(< $0 2)"},
		{"greater", condeval.Greater(x, y), "(> $0 2)"},
		{"less equal", condeval.LessEqual(x, y), "(<= $0 2)"},
		{"greater equal", condeval.GreaterEqual(x, y), "(>= $0 2)"},
		{
			name: "nested",
			cond: condeval.Or(
				condeval.Not(condeval.Greater(numexpr.Add(x, y), numexpr.Const(10))),
				condeval.And(condeval.True[int](), condeval.Equal(x, x)),
			),
			want: "(or (not (> (+ $0 2) 10)) (and true (== $0 $0)))",
		},
		{
			name: "expression without projection",
			cond: condeval.Less[int](opaque{"limit"}, y),
			want: "(< limit 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, condeval.ToSexp(tt.cond).String())
			assert.Equal(t, tt.want, tt.cond.String())
		})
	}
}

func TestToSexp_DistinctTokens(t *testing.T) {
	x, y := numexpr.Const(1.0), numexpr.Const(2.0)
	tr, fa := condeval.True[float64](), condeval.False[float64]()

	conds := []*condeval.Condition[float64]{
		tr, fa,
		condeval.Not(tr),
		condeval.And(tr, fa),
		condeval.Or(tr, fa),
		condeval.Equal(x, y),
		condeval.Less(x, y),
		condeval.Greater(x, y),
		condeval.LessEqual(x, y),
		condeval.GreaterEqual(x, y),
	}

	seen := make(map[string]condeval.Op)
	for _, c := range conds {
		s := c.Sexp()
		head := s.Token()
		if !s.IsAtom() {
			head = s.Items()[0].Token()
		}
		assert.Equal(t, c.Op().String(), head)
		if prev, dup := seen[head]; dup {
			t.Errorf("token %q shared by %v and %v", head, prev, c.Op())
		}
		seen[head] = c.Op()
	}
	assert.Len(t, seen, 10)
}

func TestToSexp_Deterministic(t *testing.T) {
	build := func() *condeval.Condition[float64] {
		return condeval.And(
			condeval.GreaterEqual(numexpr.Var[float64](1), numexpr.Const(0.5)),
			condeval.Not(condeval.False[float64]()),
		)
	}
	a, b := build(), build()

	assert.True(t, a.Equal(b))
	assert.True(t, sexp.Equal(a.Sexp(), b.Sexp()))
	assert.True(t, sexp.Equal(a.Sexp(), a.Sexp()))
	assert.Equal(t, "(and (>= $1 0.5) (not false))", a.String())
}
