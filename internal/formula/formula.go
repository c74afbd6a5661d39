// Package formula evaluates the arithmetic expressions shops use to describe
// shape surface areas and volumes.
package formula

import (
	"fmt"
	"math"
	"strings"
)

// Evaluate computes formula against vars. It never fails: an empty formula, a
// parse or evaluation error, or a non-finite result all yield 0.
func Evaluate(formula string, vars map[string]float64) float64 {
	v, _ := EvaluateErr(formula, vars)
	return v
}

// EvaluateErr is Evaluate with the reason for a zero result exposed so callers
// can log it for the configuration author.
func EvaluateErr(formula string, vars map[string]float64) (float64, error) {
	if strings.TrimSpace(formula) == "" {
		return 0, nil
	}

	expr, err := Compile(formula)
	if err != nil {
		return 0, fmt.Errorf("compile %q: %w", formula, err)
	}

	v, err := expr.Eval(vars)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", formula, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("evaluate %q: non-finite result", formula)
	}
	return v, nil
}
