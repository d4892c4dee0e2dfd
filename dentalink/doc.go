// Package dentalink provides a client for interacting with the Dentalink API.
//
// Dentalink is a dental clinic management platform. This package implements
// a clean, idiomatic Go client for its appointment, status and branch
// endpoints.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: The main API client with filter query support
//   - Types: Domain models representing Dentalink entities (appointments, statuses, branches)
//   - Operations: Higher-level workflows built on top of the client
//   - API: Interface definitions for testability and modularity
//   - Errors: Structured error types for better error handling
//
// # Usage
//
// Create a new client with your Dentalink URL and API token:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := dentalink.NewClient(
//		"https://api.dentalink.healthatom.com/api/v1",
//		"your-api-token",
//		logger,
//		dentalink.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Fetch today's appointments for a branch
//	ctx := context.Background()
//	today := time.Now()
//	resp, err := client.ListAppointments(ctx, dentalink.AppointmentFilter{
//		StartDate: dentalink.Time(today),
//		EndDate:   dentalink.Time(today),
//		BranchID:  dentalink.Int(3),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Filters use pointer fields so that absent values are simply left out of
// the request; the Int, String, Time, True and False helpers build them
// inline.
//
// # Error Handling
//
// Non-200 responses become an *APIError carrying the status code, the
// message from the API's error envelope (or the raw body when the envelope
// does not decode) and the full response body:
//
//	if apiErr, ok := err.(*dentalink.APIError); ok {
//		if apiErr.IsUnauthorized() {
//			// Handle auth failure
//		}
//	}
package dentalink
