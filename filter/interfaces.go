package filter

import (
	"context"

	"github.com/keviinplz/go-dentalink/dentalink"
)

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	// Evaluate checks if an appointment matches the filter criteria
	Evaluate(appointment dentalink.AppointmentInfo) bool

	// Expression returns the original filter expression
	Expression() string

	// IsThreadSafe indicates if the filter can be evaluated concurrently
	IsThreadSafe() bool
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against appointments
type Evaluator interface {
	// Evaluate evaluates a filter against all appointments
	Evaluate(ctx context.Context, filter CompiledFilter, appointments []dentalink.AppointmentInfo) ([]dentalink.AppointmentInfo, error)
}

// BatchEvaluator evaluates multiple filters concurrently
type BatchEvaluator interface {
	// EvaluateBatch evaluates multiple filters against appointments concurrently
	EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, appointments []dentalink.AppointmentInfo) (map[string][]dentalink.AppointmentInfo, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// BatchResult represents the result of evaluating a filter
type BatchResult struct {
	FilterName string
	Matches    []dentalink.AppointmentInfo
	Error      error
}

// WorkerPool defines the interface for concurrent work execution
type WorkerPool interface {
	// Submit submits work to the pool
	Submit(work func()) error

	// Stop gracefully stops the worker pool
	Stop(ctx context.Context) error
}
