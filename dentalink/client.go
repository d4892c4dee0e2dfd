package dentalink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keviinplz/go-dentalink/query"
)

// API endpoints.
const (
	endpointAppointments        = "/citas"
	endpointAppointmentStatuses = "/citas/estados"
	endpointBranches            = "/sucursales"
)

// Client is a Dentalink API client.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new Dentalink API client. The token is sent on every
// request as an Authorization header. Pass zerolog.Nop() to keep the client
// silent.
func NewClient(baseURL, token string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingURL
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// doRequest makes an HTTP request to the Dentalink API and returns the raw
// response body. Non-200 responses become an *APIError.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, q *query.Query, payload any) ([]byte, error) {
	uri, err := c.makeURI(endpoint, q)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", uri).
		Msg("Making Dentalink API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp.StatusCode, data)
	}

	return data, nil
}

// decodeResponse decodes a success envelope into its typed form.
func decodeResponse[T any](body []byte) (*Response[T], error) {
	var resp Response[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// AppointmentFilter narrows ListAppointments. Nil fields are left out of
// the query entirely.
type AppointmentFilter struct {
	// StartDate and EndDate bound the appointment date, inclusive.
	StartDate *time.Time
	EndDate   *time.Time
	// BranchID and StatusID match exactly.
	BranchID *int
	StatusID *int
}

// ListAppointments retrieves the appointments matching the filter.
func (c *Client) ListAppointments(ctx context.Context, filter AppointmentFilter) (*Response[[]Appointment], error) {
	q, err := query.New("fecha").
		Gte(filter.StartDate).
		Lte(filter.EndDate).
		Field("id_sucursal").
		Eq(filter.BranchID).
		Field("id_estado").
		Eq(filter.StatusID).
		Parse()
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodGet, endpointAppointments, q, nil)
	if err != nil {
		return nil, err
	}

	return decodeResponse[[]Appointment](body)
}

// AppointmentStatusFilter narrows ListAppointmentStatuses. Nil fields are
// left out of the query entirely.
type AppointmentStatusFilter struct {
	Name         *string
	Reserved     *bool
	Cancellation *bool
	InternalUse  *bool
	Enabled      *bool
}

// ListAppointmentStatuses retrieves the clinic's appointment status catalog.
func (c *Client) ListAppointmentStatuses(ctx context.Context, filter AppointmentStatusFilter) (*Response[[]AppointmentStatus], error) {
	q, err := query.New("nombre").
		Eq(filter.Name).
		Field("reservado").
		Eq(filter.Reserved).
		Field("anulacion").
		Eq(filter.Cancellation).
		Field("uso_interno").
		Eq(filter.InternalUse).
		Field("habilitado").
		Eq(filter.Enabled).
		Parse()
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodGet, endpointAppointmentStatuses, q, nil)
	if err != nil {
		return nil, err
	}

	return decodeResponse[[]AppointmentStatus](body)
}

// BranchFilter narrows ListBranches. Nil fields are left out of the query
// entirely.
type BranchFilter struct {
	Name    *string
	Enabled *bool
}

// ListBranches retrieves the clinic's branches.
func (c *Client) ListBranches(ctx context.Context, filter BranchFilter) (*Response[[]Branch], error) {
	q, err := query.New("nombre").
		Eq(filter.Name).
		Field("habilitada").
		Eq(filter.Enabled).
		Parse()
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodGet, endpointBranches, q, nil)
	if err != nil {
		return nil, err
	}

	return decodeResponse[[]Branch](body)
}

// GetAppointment retrieves a single appointment by ID.
func (c *Client) GetAppointment(ctx context.Context, id int) (*Response[Appointment], error) {
	endpoint := fmt.Sprintf("%s/%d", endpointAppointments, id)

	body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	return decodeResponse[Appointment](body)
}

// UpdateAppointmentRequest carries the mutable fields of an appointment.
// Zero values mean "not provided" and are left out of the request body, so
// a zero duration or an empty comment cannot be sent. NotifyCancellation
// is only ever sent as true.
type UpdateAppointmentRequest struct {
	Duration           int
	StatusID           int
	Comment            string
	NotifyCancellation bool
}

// body returns the wire form of the request with unset fields omitted.
func (r UpdateAppointmentRequest) body() map[string]any {
	payload := make(map[string]any)
	if r.Duration != 0 {
		payload["duracion"] = r.Duration
	}
	if r.StatusID != 0 {
		payload["id_estado"] = r.StatusID
	}
	if r.Comment != "" {
		payload["comentarios"] = r.Comment
	}
	if r.NotifyCancellation {
		payload["notificar_anulacion"] = true
	}
	return payload
}

// UpdateAppointment modifies an appointment and returns its updated form.
func (c *Client) UpdateAppointment(ctx context.Context, id int, req UpdateAppointmentRequest) (*Response[Appointment], error) {
	endpoint := fmt.Sprintf("%s/%d", endpointAppointments, id)

	body, err := c.doRequest(ctx, http.MethodPut, endpoint, nil, req.body())
	if err != nil {
		return nil, err
	}

	return decodeResponse[Appointment](body)
}

// ChangeAppointmentStatus moves an appointment to the given status.
func (c *Client) ChangeAppointmentStatus(ctx context.Context, id, statusID int) (*Response[Appointment], error) {
	return c.UpdateAppointment(ctx, id, UpdateAppointmentRequest{StatusID: statusID})
}

// TestConnection verifies the base URL and token by listing branches.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.ListBranches(ctx, BranchFilter{}); err != nil {
		return fmt.Errorf("failed to connect to Dentalink: %w", err)
	}
	return nil
}
