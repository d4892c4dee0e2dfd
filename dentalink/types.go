package dentalink

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date layouts used on the wire. Appointment dates come as YYYY-MM-DD,
// timestamps add a clock part.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Response is the envelope every Dentalink endpoint returns: the payload
// under data plus an optional pagination cursor.
type Response[T any] struct {
	Links *Cursor `json:"links,omitempty"`
	Data  T       `json:"data"`
}

// Cursor is the pagination block of a list response.
type Cursor struct {
	Current string  `json:"current"`
	Next    *string `json:"next,omitempty"`
	Prev    *string `json:"prev,omitempty"`
}

// HasNext reports whether another page is available.
func (c *Cursor) HasNext() bool {
	return c != nil && c.Next != nil && *c.Next != ""
}

// HasPrev reports whether a previous page is available.
func (c *Cursor) HasPrev() bool {
	return c != nil && c.Prev != nil && *c.Prev != ""
}

// Link is an action reference attached to every record.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Appointment is a cita as returned by the API.
type Appointment struct {
	ID                  int      `json:"id"`
	PatientID           int      `json:"id_paciente"`
	PatientName         string   `json:"nombre_paciente"`
	PatientSocialName   string   `json:"nombre_social_paciente"`
	StatusID            int      `json:"id_estado"`
	StatusName          string   `json:"estado_cita"`
	CancellationState   int      `json:"estado_anulacion"`
	ConfirmationState   int      `json:"estado_confirmacion"`
	TreatmentID         int      `json:"id_tratamiento"`
	TreatmentName       string   `json:"nombre_tratamiento"`
	TreatmentUnassigned int      `json:"tratamiento_sin_asignar"`
	Date                Date     `json:"fecha"`
	StartTime           string   `json:"hora_inicio"`
	EndTime             string   `json:"hora_fin"`
	Duration            int      `json:"duracion"`
	DentistID           int      `json:"id_dentista"`
	DentistName         string   `json:"nombre_dentista"`
	BranchID            int      `json:"id_sucursal"`
	BranchName          string   `json:"nombre_sucursal"`
	AttentionReason     *string  `json:"motivo_atencion"`
	ChairID             int      `json:"id_sillon"`
	ChairName           string   `json:"nombre_sillon"`
	AttentionPlaceID    *int     `json:"id_lugar_atencion"`
	AttentionPlaceName  *string  `json:"nombre_lugar_atencion"`
	Comments            string   `json:"comentarios"`
	UpdatedAt           DateTime `json:"fecha_actualizacion"`
	Links               []Link   `json:"links"`
}

// StartsAt returns the appointment's starting instant, combining the date
// with hora_inicio.
func (a *Appointment) StartsAt() (time.Time, error) {
	return a.at(a.StartTime)
}

// EndsAt returns the appointment's ending instant, combining the date
// with hora_fin.
func (a *Appointment) EndsAt() (time.Time, error) {
	return a.at(a.EndTime)
}

func (a *Appointment) at(clock string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		d := a.Date.Time
		return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, d.Location()), nil
	}
	return time.Time{}, fmt.Errorf("invalid time of day %q", clock)
}

// IsCancelled reports whether the appointment has been annulled.
func (a *Appointment) IsCancelled() bool {
	return a.CancellationState != 0
}

// IsConfirmed reports whether the appointment has been confirmed.
func (a *Appointment) IsConfirmed() bool {
	return a.ConfirmationState != 0
}

// AppointmentStatus is an estado de cita from the clinic's catalog.
type AppointmentStatus struct {
	ID           int    `json:"id"`
	Name         string `json:"nombre"`
	Color        string `json:"color"`
	Reserved     Bool   `json:"reservado"`
	Cancellation Bool   `json:"anulacion"`
	InternalUse  Bool   `json:"uso_interno"`
	Enabled      Bool   `json:"habilitado"`
	Links        []Link `json:"links"`
}

// Branch is a sucursal of the clinic.
type Branch struct {
	ID      int    `json:"id"`
	Name    string `json:"nombre"`
	Phone   string `json:"telefono"`
	City    string `json:"ciudad"`
	Commune string `json:"comuna"`
	Address string `json:"direccion"`
	Enabled Bool   `json:"habilitada"`
	Links   []Link `json:"links"`
}

// Date is a time.Time that decodes from the API's YYYY-MM-DD fields.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode date: %w", err)
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}

	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// DateTime is a time.Time that decodes from the API's
// "YYYY-MM-DD HH:MM:SS" timestamps.
type DateTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode timestamp: %w", err)
	}

	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}

	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateTimeLayout))
}

// Bool is a bool that tolerates the API's mixed encodings: true/false,
// 0/1 and "0"/"1" all decode.
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
	case "false", "0", `"0"`, `"false"`:
		*b = false
	default:
		return fmt.Errorf("invalid boolean value %s", data)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}
