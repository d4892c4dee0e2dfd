// Package filter compiles and evaluates appointment filter expressions.
//
// Expressions use the expr language (github.com/expr-lang/expr) and run
// against dentalink.AppointmentInfo values:
//
//	hasStatus("Confirmada") and Duration >= 30
//	atBranch("Providencia") and not Cancelled
//	forPatient("maría") and Date < daysAgo(7)
//	startsAfter("09:00") and startsBefore("13:00")
//
// A shorthand syntax is also accepted and converted before compilation:
//
//	status:"Confirmada" AND duration:>=30
//	branch:"Providencia" AND cancelled:false
//
// Compiled filters are thread-safe; the ConcurrentEvaluator and Manager
// run them against large appointment sets in parallel.
package filter
