package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/keviinplz/go-dentalink/dentalink"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.batchSize = size
	}
}

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate evaluates a single filter against all appointments
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, appointments []dentalink.AppointmentInfo) ([]dentalink.AppointmentInfo, error) {
	if len(appointments) == 0 {
		return []dentalink.AppointmentInfo{}, nil
	}

	// Small sets are cheaper to evaluate in place
	if len(appointments) < e.batchSize {
		return e.evaluateSequential(filter, appointments), nil
	}

	return e.evaluateConcurrent(ctx, filter, appointments)
}

// EvaluateBatch evaluates multiple filters against appointments concurrently
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, appointments []dentalink.AppointmentInfo) (map[string][]dentalink.AppointmentInfo, error) {
	if len(filters) == 0 || len(appointments) == 0 {
		return make(map[string][]dentalink.AppointmentInfo), nil
	}

	results := make(map[string][]dentalink.AppointmentInfo)
	resultChan := make(chan BatchResult, len(filters))

	var wg sync.WaitGroup
	for name, filter := range filters {
		wg.Add(1)

		err := e.pool.Submit(func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				resultChan <- BatchResult{
					FilterName: name,
					Error:      ctx.Err(),
				}
				return
			default:
			}

			matches, err := e.Evaluate(ctx, filter, appointments)
			resultChan <- BatchResult{
				FilterName: name,
				Matches:    matches,
				Error:      err,
			}
		})

		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		if result.Error != nil {
			// Skip filters that error
			continue
		}
		results[result.FilterName] = result.Matches
	}

	return results, nil
}

func (e *ConcurrentEvaluator) evaluateSequential(filter CompiledFilter, appointments []dentalink.AppointmentInfo) []dentalink.AppointmentInfo {
	matches := make([]dentalink.AppointmentInfo, 0, len(appointments)/10)
	for _, appointment := range appointments {
		if filter.Evaluate(appointment) {
			matches = append(matches, appointment)
		}
	}
	return matches
}

// evaluateConcurrent splits the appointments into chunks and evaluates
// them on the worker pool, preserving input order in the result.
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, appointments []dentalink.AppointmentInfo) ([]dentalink.AppointmentInfo, error) {
	chunkSize := max(len(appointments)/e.workerCount, e.batchSize)

	type chunkResult struct {
		matches []dentalink.AppointmentInfo
		order   int
	}

	resultChan := make(chan chunkResult, (len(appointments)/chunkSize)+1)
	var wg sync.WaitGroup

	chunkIndex := 0
	for i := 0; i < len(appointments); i += chunkSize {
		end := min(i+chunkSize, len(appointments))

		wg.Add(1)
		chunk := appointments[i:end]
		index := chunkIndex
		chunkIndex++

		err := e.pool.Submit(func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			default:
			}

			matches := make([]dentalink.AppointmentInfo, 0, len(chunk)/10)
			for _, appointment := range chunk {
				if filter.Evaluate(appointment) {
					matches = append(matches, appointment)
				}
			}

			resultChan <- chunkResult{matches: matches, order: index}
		})

		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make(map[int][]dentalink.AppointmentInfo)
	for result := range resultChan {
		results[result.order] = result.matches
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	totalMatches := 0
	for i := 0; i < len(results); i++ {
		totalMatches += len(results[i])
	}

	allMatches := make([]dentalink.AppointmentInfo, 0, totalMatches)
	for i := 0; i < len(results); i++ {
		allMatches = append(allMatches, results[i]...)
	}

	return allMatches, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
