package filter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/keviinplz/go-dentalink/dentalink"
)

// generateTestAppointments creates test appointment data
func generateTestAppointments(count int) []dentalink.AppointmentInfo {
	statuses := []string{"Confirmada", "No confirmada", "Anulada", "Atendida"}
	dentists := []string{"Dra. Carolina Soto", "Dr. Andrés Valdivia", "Dr. Pablo Rojas"}
	branches := []string{"Providencia", "Las Condes"}

	appointments := make([]dentalink.AppointmentInfo, count)

	for i := 0; i < count; i++ {
		date := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%30)
		start := date.Add(time.Duration(9+i%8) * time.Hour)
		duration := 15 * ((i % 3) + 1)

		appointments[i] = dentalink.AppointmentInfo{
			ID:            i + 1,
			PatientID:     (i % 200) + 1,
			PatientName:   fmt.Sprintf("Paciente %d", (i%200)+1),
			DentistName:   dentists[i%3],
			TreatmentName: "Control",
			StatusID:      (i % 4) + 7,
			StatusName:    statuses[i%4],
			Cancelled:     i%4 == 2,
			Confirmed:     i%2 == 0,
			BranchID:      (i % 2) + 1,
			BranchName:    branches[i%2],
			BranchCity:    "Santiago",
			Date:          date,
			StartsAt:      start,
			EndsAt:        start.Add(time.Duration(duration) * time.Minute),
			Duration:      duration,
			UpdatedAt:     date.Add(-24 * time.Hour),
		}
	}

	return appointments
}

// Benchmark filter compilation
func BenchmarkCompileFilter(b *testing.B) {
	expressions := []struct {
		name string
		expr string
	}{
		{"simple", `hasStatus("Confirmada")`},
		{"complex", `hasStatus("Confirmada") and Duration >= 30 and atBranch("Providencia")`},
	}

	for _, tc := range expressions {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := CompileFilter(tc.expr)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark filter compilation with caching
func BenchmarkCompileFilterWithCache(b *testing.B) {
	compiler := NewExprCompiler(WithCache(100))
	expression := `hasStatus("Confirmada") and Duration > 30`

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := compiler.Compile(expression)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark single filter evaluation
func BenchmarkEvaluateFilter(b *testing.B) {
	appointments := generateTestAppointments(1000)
	filter, _ := CompileFilter(`hasStatus("Confirmada") and Duration > 30`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		matches := 0
		for _, appointment := range appointments {
			if filter.Evaluate(appointment) {
				matches++
			}
		}
		_ = matches
	}
}

// Benchmark concurrent evaluation
func BenchmarkEvaluateConcurrent(b *testing.B) {
	appointments := generateTestAppointments(10000)
	filter, _ := CompileFilter(`hasStatus("Confirmada") and Duration > 30`)
	ctx := context.Background()

	evaluators := []struct {
		name      string
		evaluator *ConcurrentEvaluator
	}{
		{"workers-1", NewConcurrentEvaluator(WithWorkers(1))},
		{"workers-4", NewConcurrentEvaluator(WithWorkers(4))},
		{"workers-8", NewConcurrentEvaluator(WithWorkers(8))},
		{"workers-default", NewConcurrentEvaluator()},
	}

	for _, tc := range evaluators {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := tc.evaluator.Evaluate(ctx, filter, appointments)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark batch evaluation
func BenchmarkEvaluateBatch(b *testing.B) {
	appointments := generateTestAppointments(5000)
	filters := map[string]string{
		"confirmed": `Confirmed == true`,
		"cancelled": `Cancelled == true`,
		"long":      `Duration >= 45`,
		"morning":   `startsBefore("12:00")`,
		"complex":   `hasStatus("Confirmada") and atBranch("Providencia") and Duration >= 30`,
	}

	compiled := make(map[string]CompiledFilter)
	for name, expr := range filters {
		filter, _ := CompileFilter(expr)
		compiled[name] = filter
	}

	ctx := context.Background()
	evaluator := NewConcurrentEvaluator()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := evaluator.EvaluateBatch(ctx, compiled, appointments)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark helper function performance
func BenchmarkHelperFunctions(b *testing.B) {
	b.Run("hasStatus", func(b *testing.B) {
		hasStatus := createHasStatusFunc("Confirmada")
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = hasStatus("confirmada")
		}
	})

	b.Run("forPatient", func(b *testing.B) {
		forPatient := createNameMatchFunc("María Pérez Soto")
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = forPatient("soto")
		}
	})

	b.Run("startsBefore", func(b *testing.B) {
		startsBefore := createClockCompareFunc(time.Date(2023, 11, 14, 10, 30, 0, 0, time.UTC), true)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = startsBefore("12:00")
		}
	})
}
