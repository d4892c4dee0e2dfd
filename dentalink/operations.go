package dentalink

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// updateConcurrency caps the number of in-flight appointment updates.
const updateConcurrency = 5

// Operations provides the higher-level workflows built on the client:
// listing appointments enriched with catalog data and bulk status changes.
type Operations struct {
	client *Client
	logger zerolog.Logger
}

// NewOperations creates a new Operations instance
func NewOperations(client *Client, logger zerolog.Logger) *Operations {
	return &Operations{
		client: client,
		logger: logger,
	}
}

// AppointmentInfo is an appointment projected for display and filtering,
// with names resolved against the status and branch catalogs.
type AppointmentInfo struct {
	ID            int
	PatientID     int
	PatientName   string
	DentistName   string
	TreatmentName string
	StatusID      int
	StatusName    string
	StatusColor   string
	Cancelled     bool
	Confirmed     bool
	BranchID      int
	BranchName    string
	BranchCity    string
	Date          time.Time
	StartsAt      time.Time
	EndsAt        time.Time
	Duration      int
	Comments      string
	UpdatedAt     time.Time
}

// SearchOptions narrows the appointments fetched before filtering.
type SearchOptions struct {
	From     *time.Time
	To       *time.Time
	BranchID *int
	StatusID *int
}

// SearchAppointments fetches appointments in the given window, resolves
// their status and branch data and returns the ones matching filterFunc.
// A nil filterFunc matches everything.
func (o *Operations) SearchAppointments(ctx context.Context, opts SearchOptions, filterFunc func(AppointmentInfo) bool) ([]AppointmentInfo, error) {
	var (
		statuses map[int]AppointmentStatus
		branches map[int]Branch
	)

	// Fetch both catalogs concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = o.statusCatalog(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		branches, err = o.branchCatalog(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp, err := o.client.ListAppointments(ctx, AppointmentFilter{
		StartDate: opts.From,
		EndDate:   opts.To,
		BranchID:  opts.BranchID,
		StatusID:  opts.StatusID,
	})
	if err != nil {
		return nil, err
	}

	var results []AppointmentInfo
	for i := range resp.Data {
		info := o.appointmentInfo(&resp.Data[i], statuses, branches)
		if filterFunc != nil && !filterFunc(info) {
			continue
		}
		results = append(results, info)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].StartsAt.Equal(results[j].StartsAt) {
			return results[i].StartsAt.Before(results[j].StartsAt)
		}
		return results[i].ID < results[j].ID
	})

	o.logger.Debug().
		Int("matched", len(results)).
		Int("total", len(resp.Data)).
		Msg("Filtered appointments")

	return results, nil
}

// GetAppointmentInfo fetches a single appointment with catalog data resolved.
func (o *Operations) GetAppointmentInfo(ctx context.Context, id int) (*AppointmentInfo, error) {
	var (
		statuses map[int]AppointmentStatus
		branches map[int]Branch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		statuses, err = o.statusCatalog(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		branches, err = o.branchCatalog(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp, err := o.client.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	info := o.appointmentInfo(&resp.Data, statuses, branches)
	return &info, nil
}

func (o *Operations) statusCatalog(ctx context.Context) (map[int]AppointmentStatus, error) {
	resp, err := o.client.ListAppointmentStatuses(ctx, AppointmentStatusFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment statuses: %w", err)
	}

	catalog := make(map[int]AppointmentStatus, len(resp.Data))
	for _, status := range resp.Data {
		catalog[status.ID] = status
	}
	return catalog, nil
}

func (o *Operations) branchCatalog(ctx context.Context) (map[int]Branch, error) {
	resp, err := o.client.ListBranches(ctx, BranchFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	catalog := make(map[int]Branch, len(resp.Data))
	for _, branch := range resp.Data {
		catalog[branch.ID] = branch
	}
	return catalog, nil
}

// appointmentInfo projects an Appointment, resolving catalog names. Times
// that fail to parse stay zero.
func (o *Operations) appointmentInfo(a *Appointment, statuses map[int]AppointmentStatus, branches map[int]Branch) AppointmentInfo {
	info := AppointmentInfo{
		ID:            a.ID,
		PatientID:     a.PatientID,
		PatientName:   a.PatientName,
		DentistName:   a.DentistName,
		TreatmentName: a.TreatmentName,
		StatusID:      a.StatusID,
		StatusName:    a.StatusName,
		Cancelled:     a.IsCancelled(),
		Confirmed:     a.IsConfirmed(),
		BranchID:      a.BranchID,
		BranchName:    a.BranchName,
		Date:          a.Date.Time,
		Duration:      a.Duration,
		Comments:      a.Comments,
		UpdatedAt:     a.UpdatedAt.Time,
	}

	if starts, err := a.StartsAt(); err == nil {
		info.StartsAt = starts
	}
	if ends, err := a.EndsAt(); err == nil {
		info.EndsAt = ends
	}

	if status, ok := statuses[a.StatusID]; ok {
		info.StatusColor = status.Color
		if info.StatusName == "" {
			info.StatusName = status.Name
		}
		if status.Cancellation {
			info.Cancelled = true
		}
	}

	if branch, ok := branches[a.BranchID]; ok {
		info.BranchCity = branch.City
		if info.BranchName == "" {
			info.BranchName = branch.Name
		}
	}

	return info
}

// BatchUpdateResult contains the results of a batch status change
type BatchUpdateResult struct {
	Requested  int
	Successful []int
	Failed     []UpdateError
}

// UpdateError contains information about a failed update operation
type UpdateError struct {
	AppointmentID int
	Err           error
}

// Error implements the error interface
func (e UpdateError) Error() string {
	return fmt.Sprintf("failed to update appointment %d: %v", e.AppointmentID, e.Err)
}

// ChangeStatus moves every appointment to the given status, collecting
// per-appointment failures instead of stopping at the first.
func (o *Operations) ChangeStatus(ctx context.Context, ids []int, statusID int, notify bool) BatchUpdateResult {
	result := BatchUpdateResult{
		Requested: len(ids),
	}

	if len(ids) == 0 {
		return result
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(updateConcurrency)

	successChan := make(chan int, len(ids))
	errorChan := make(chan UpdateError, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			req := UpdateAppointmentRequest{
				StatusID:           statusID,
				NotifyCancellation: notify,
			}
			if _, err := o.client.UpdateAppointment(ctx, id, req); err != nil {
				errorChan <- UpdateError{
					AppointmentID: id,
					Err:           err,
				}
			} else {
				successChan <- id
			}
			return nil // Don't stop on individual errors
		})
	}

	g.Wait()
	close(successChan)
	close(errorChan)

	for id := range successChan {
		result.Successful = append(result.Successful, id)
	}
	for err := range errorChan {
		result.Failed = append(result.Failed, err)
	}

	sort.Ints(result.Successful)

	o.logger.Info().
		Int("requested", result.Requested).
		Int("updated", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Int("status_id", statusID).
		Msg("Finished status change")

	return result
}
