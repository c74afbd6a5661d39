package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		vars    map[string]float64
		want    float64
	}{
		{name: "empty formula", formula: "", vars: map[string]float64{}, want: 0},
		{name: "blank formula", formula: "   ", vars: nil, want: 0},
		{name: "simple sum", formula: "a+b", vars: map[string]float64{"a": 2, "b": 3}, want: 5},
		{
			name:    "whole-token match with shared prefix",
			formula: "width*height",
			vars:    map[string]float64{"width": 10, "widthExtra": 7, "height": 4},
			want:    40,
		},
		{
			name:    "longer name not shadowed by shorter",
			formula: "widthExtra - width",
			vars:    map[string]float64{"width": 10, "widthExtra": 17},
			want:    7,
		},
		{
			name:    "single letter inside longer name",
			formula: "w + width",
			vars:    map[string]float64{"w": 1, "width": 10},
			want:    11,
		},
		{name: "precedence", formula: "2 + 3 * 4", vars: nil, want: 14},
		{name: "parentheses", formula: "(2 + 3) * 4", vars: nil, want: 20},
		{name: "unary minus", formula: "-a * 2", vars: map[string]float64{"a": 3}, want: -6},
		{name: "left associative division", formula: "12 / 3 / 2", vars: nil, want: 2},
		{name: "decimal literal", formula: "3.14159 * r * r", vars: map[string]float64{"r": 2}, want: 12.56636},
		{
			name:    "box surface area",
			formula: "2*(length*width + length*thickness + width*thickness)",
			vars:    map[string]float64{"length": 20, "width": 10, "thickness": 2},
			want:    520,
		},
		{name: "undefined variable", formula: "a + c", vars: map[string]float64{"a": 1}, want: 0},
		{name: "malformed expression", formula: "a + * b", vars: map[string]float64{"a": 1, "b": 2}, want: 0},
		{name: "unbalanced parentheses", formula: "(a + b", vars: map[string]float64{"a": 1, "b": 2}, want: 0},
		{name: "zero over zero", formula: "a / b", vars: map[string]float64{"a": 0, "b": 0}, want: 0},
		{name: "division by zero", formula: "a / 0", vars: map[string]float64{"a": 4}, want: 0},
		{name: "code injection rejected", formula: "alert(1)", vars: nil, want: 0},
		{name: "unknown character", formula: "a; b", vars: map[string]float64{"a": 1, "b": 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Evaluate(tt.formula, tt.vars), 1e-9)
		})
	}
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	vars := map[string]float64{"a": 1.1, "b": 2.2, "c": 3.3}
	first := Evaluate("a * b / c + (a - c)", vars)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate("a * b / c + (a - c)", vars))
	}
}

func TestEvaluateErr_ReportsReason(t *testing.T) {
	v, err := EvaluateErr("a +", map[string]float64{"a": 1})
	assert.Equal(t, 0.0, v)
	require.Error(t, err)

	v, err = EvaluateErr("", nil)
	assert.Equal(t, 0.0, v)
	assert.NoError(t, err)
}

func TestCompile_Identifiers(t *testing.T) {
	expr, err := Compile("depth * (width + widthExtra) / depth")
	require.NoError(t, err)
	assert.Equal(t, []string{"depth", "width", "widthExtra"}, expr.Identifiers())
	assert.Equal(t, "depth * (width + widthExtra) / depth", expr.String())
}

func TestCompile_RejectsBadInput(t *testing.T) {
	for _, src := range []string{"1..2", "a b", ")", "a +", "x[0]", "f(x)"} {
		_, err := Compile(src)
		assert.Error(t, err, src)
	}
}
