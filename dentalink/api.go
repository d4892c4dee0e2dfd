package dentalink

import (
	"context"
)

// API defines the interface for Dentalink operations
type API interface {
	// TestConnection verifies the client can reach the Dentalink API
	TestConnection(ctx context.Context) error

	// ListAppointments retrieves the appointments matching the filter
	ListAppointments(ctx context.Context, filter AppointmentFilter) (*Response[[]Appointment], error)

	// ListAppointmentStatuses retrieves the appointment status catalog
	ListAppointmentStatuses(ctx context.Context, filter AppointmentStatusFilter) (*Response[[]AppointmentStatus], error)

	// ListBranches retrieves the clinic's branches
	ListBranches(ctx context.Context, filter BranchFilter) (*Response[[]Branch], error)

	// GetAppointment retrieves a single appointment by ID
	GetAppointment(ctx context.Context, id int) (*Response[Appointment], error)

	// UpdateAppointment modifies an appointment and returns its updated form
	UpdateAppointment(ctx context.Context, id int, req UpdateAppointmentRequest) (*Response[Appointment], error)

	// ChangeAppointmentStatus moves an appointment to the given status
	ChangeAppointmentStatus(ctx context.Context, id, statusID int) (*Response[Appointment], error)
}
