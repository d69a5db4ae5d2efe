package mission

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// comparatorExpr maps each supported comparator to its expression form.
var comparatorExpr = map[Operator]string{
	OpGreaterThan:    "value > threshold",
	OpLessThan:       "value < threshold",
	OpEqual:          "value == threshold",
	OpGreaterOrEqual: "value >= threshold",
	OpLessOrEqual:    "value <= threshold",
}

// comparatorPrograms holds the compiled program for each comparator. The set
// is closed, so everything compiles once at startup.
var comparatorPrograms = compileComparators()

func compileComparators() map[Operator]*vm.Program {
	env := map[string]interface{}{
		"value":     float64(0),
		"threshold": float64(0),
	}

	programs := make(map[Operator]*vm.Program, len(comparatorExpr))
	for op, source := range comparatorExpr {
		program, err := expr.Compile(source, expr.Env(env), expr.AsBool())
		if err != nil {
			panic(fmt.Sprintf("compile comparator %q: %v", op, err))
		}
		programs[op] = program
	}
	return programs
}

// SupportedOperator reports whether op is in the comparator set.
func SupportedOperator(op Operator) bool {
	_, ok := comparatorExpr[op]
	return ok
}

// Evaluate applies rule to a submitted value and reports whether the value
// satisfies the rule. Comparisons are strict: gt with threshold 4.0 and value
// 4.0 is false, gte is true. Non-numeric values fail with TypeMismatchError,
// comparators outside the set with UnsupportedComparatorError.
func Evaluate(rule Rule, value interface{}) (bool, error) {
	num, ok := toFloat(value)
	if !ok {
		return false, &TypeMismatchError{Field: "value", Value: value}
	}
	return evaluateNumber(rule, num)
}

func evaluateNumber(rule Rule, value float64) (bool, error) {
	program, ok := comparatorPrograms[rule.Operator]
	if !ok {
		return false, &UnsupportedComparatorError{Operator: string(rule.Operator)}
	}

	out, err := expr.Run(program, map[string]interface{}{
		"value":     value,
		"threshold": rule.Threshold,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate rule: %w", err)
	}

	pass, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate rule: comparator %q produced %T, want bool", rule.Operator, out)
	}
	return pass, nil
}

// toFloat widens the numeric types a decoded JSON payload can carry.
// Booleans and strings deliberately do not convert.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
