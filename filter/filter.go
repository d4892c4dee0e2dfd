package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/keviinplz/go-dentalink/dentalink"
)

// defaultCompiler backs the package-level helpers so repeated
// invocations share one compilation cache.
var defaultCompiler = NewExprCompiler(WithCache(100))

// CompileFilter compiles an expression with the shared default compiler.
// Legacy shorthand syntax is converted before compilation.
func CompileFilter(expression string) (CompiledFilter, error) {
	if IsLegacyFilter(expression) {
		converted, err := ConvertLegacyFilter(expression)
		if err != nil {
			return nil, fmt.Errorf("failed to convert legacy filter: %w", err)
		}
		expression = converted
	}

	return defaultCompiler.Compile(expression)
}

// ParseAndCreateFilter parses a filter expression and returns a predicate
// over appointments. An empty expression matches everything.
func ParseAndCreateFilter(expression string) (func(dentalink.AppointmentInfo) bool, error) {
	if strings.TrimSpace(expression) == "" {
		return func(dentalink.AppointmentInfo) bool { return true }, nil
	}

	filter, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}

	return filter.Evaluate, nil
}

// EvaluateFilters evaluates a set of named expressions against the given
// appointments and returns the matches per filter name.
func EvaluateFilters(ctx context.Context, expressions map[string]string, appointments []dentalink.AppointmentInfo) (map[string][]dentalink.AppointmentInfo, error) {
	manager := NewManager()
	defer manager.Close(context.Background())

	if err := manager.RegisterFilters(expressions); err != nil {
		return nil, err
	}

	return manager.EvaluateAll(ctx, appointments)
}
