package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/keviinplz/go-dentalink/dentalink"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached.(CompiledFilter), nil
		}
	}

	// Compile with the static environment for validation; appointment
	// properties are only known at evaluation time.
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against an appointment
func (f *exprFilter) Evaluate(appointment dentalink.AppointmentInfo) bool {
	env := createRuntimeEnvironment(appointment)

	result, err := expr.Run(f.program, env)
	if err != nil {
		// Appointments that cause evaluation errors are skipped
		return false
	}

	// Result is guaranteed to be bool due to AsBool() during compilation
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)
	return funcs
}

// addHelperFunctions adds the appointment-independent helpers to the map
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = time.Now
}

// createRuntimeEnvironment creates the evaluation environment for one appointment
func createRuntimeEnvironment(appointment dentalink.AppointmentInfo) map[string]any {
	env := make(map[string]any, 48)

	addHelperFunctions(env)

	env["Appointment"] = appointment

	// Appointment-specific helpers
	env["hasStatus"] = createHasStatusFunc(appointment.StatusName)
	env["atBranch"] = createAtBranchFunc(appointment.BranchName)
	env["inCity"] = createInCityFunc(appointment.BranchCity)
	env["forPatient"] = createNameMatchFunc(appointment.PatientName)
	env["treatedBy"] = createNameMatchFunc(appointment.DentistName)
	env["onDate"] = createOnDateFunc(appointment.Date)
	env["startsBefore"] = createClockCompareFunc(appointment.StartsAt, true)
	env["startsAfter"] = createClockCompareFunc(appointment.StartsAt, false)
	env["longerThan"] = createDurationFunc(appointment.Duration, true)
	env["shorterThan"] = createDurationFunc(appointment.Duration, false)

	// Direct appointment properties for convenience
	env["ID"] = appointment.ID
	env["PatientID"] = appointment.PatientID
	env["PatientName"] = appointment.PatientName
	env["DentistName"] = appointment.DentistName
	env["TreatmentName"] = appointment.TreatmentName
	env["StatusID"] = appointment.StatusID
	env["StatusName"] = appointment.StatusName
	env["StatusColor"] = appointment.StatusColor
	env["Cancelled"] = appointment.Cancelled
	env["Confirmed"] = appointment.Confirmed
	env["BranchID"] = appointment.BranchID
	env["BranchName"] = appointment.BranchName
	env["BranchCity"] = appointment.BranchCity
	env["Date"] = appointment.Date
	env["StartsAt"] = appointment.StartsAt
	env["EndsAt"] = appointment.EndsAt
	env["Duration"] = appointment.Duration
	env["Comments"] = appointment.Comments
	env["UpdatedAt"] = appointment.UpdatedAt

	return env
}

// Helper factory functions

func createHasStatusFunc(statusName string) func(string) bool {
	return func(name string) bool {
		return strings.EqualFold(statusName, name)
	}
}

func createAtBranchFunc(branchName string) func(string) bool {
	return func(name string) bool {
		return strings.EqualFold(branchName, name)
	}
}

func createInCityFunc(city string) func(string) bool {
	return func(name string) bool {
		return strings.EqualFold(city, name)
	}
}

// createNameMatchFunc matches people by case-insensitive substring, so
// "soto" matches "Dra. Carolina Soto".
func createNameMatchFunc(fullName string) func(string) bool {
	lowerName := strings.ToLower(fullName)
	return func(name string) bool {
		return strings.Contains(lowerName, strings.ToLower(name))
	}
}

func createOnDateFunc(date time.Time) func(string) bool {
	return func(dateStr string) bool {
		target, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return false
		}
		y1, m1, d1 := date.Date()
		y2, m2, d2 := target.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
}

// createClockCompareFunc compares the time of day of t against a
// "HH:MM" or "HH:MM:SS" clock string.
func createClockCompareFunc(t time.Time, before bool) func(string) bool {
	minutes := t.Hour()*60 + t.Minute()
	return func(clock string) bool {
		target, ok := clockMinutes(clock)
		if !ok {
			return false
		}
		if before {
			return minutes < target
		}
		return minutes >= target
	}
}

func createDurationFunc(duration int, longer bool) func(int) bool {
	return func(minutes int) bool {
		if longer {
			return duration > minutes
		}
		return duration < minutes
	}
}

func clockMinutes(clock string) (int, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}
