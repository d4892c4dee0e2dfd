package dentalink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	statusCatalogJSON = `{
		"data": [
			{"id": 7, "nombre": "Confirmada", "color": "#4CAF50", "reservado": true, "anulacion": false, "uso_interno": false, "habilitado": true, "links": []},
			{"id": 9, "nombre": "Anulada", "color": "#F44336", "reservado": false, "anulacion": true, "uso_interno": false, "habilitado": true, "links": []}
		]
	}`

	branchCatalogJSON = `{
		"data": [
			{"id": 3, "nombre": "Providencia", "telefono": "", "ciudad": "Santiago", "comuna": "Providencia", "direccion": "", "habilitada": true, "links": []}
		]
	}`

	searchAppointmentsJSON = `{
		"data": [
			{
				"id": 101, "id_paciente": 55, "nombre_paciente": "María Pérez",
				"id_estado": 7, "estado_cita": "Confirmada", "estado_anulacion": 0, "estado_confirmacion": 1,
				"fecha": "2023-11-12", "hora_inicio": "10:30:00", "hora_fin": "11:00:00", "duracion": 30,
				"id_sucursal": 3, "nombre_sucursal": "Providencia",
				"fecha_actualizacion": "2023-11-10 09:15:00", "links": []
			},
			{
				"id": 102, "id_paciente": 56, "nombre_paciente": "Pedro Rojas",
				"id_estado": 9, "estado_cita": "Anulada", "estado_anulacion": 0, "estado_confirmacion": 0,
				"fecha": "2023-11-12", "hora_inicio": "09:00:00", "hora_fin": "09:30:00", "duracion": 30,
				"id_sucursal": 4, "nombre_sucursal": "Las Condes",
				"fecha_actualizacion": "2023-11-09 18:00:00", "links": []
			}
		]
	}`
)

// newOperationsServer serves the status and branch catalogs plus whatever
// the citas handler decides.
func newOperationsServer(t *testing.T, citas http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/citas/estados", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statusCatalogJSON))
	})
	mux.HandleFunc("/sucursales", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(branchCatalogJSON))
	})
	mux.HandleFunc("/citas", citas)
	mux.HandleFunc("/citas/", citas)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestOperations(t *testing.T, serverURL string) *Operations {
	t.Helper()

	client, err := NewClient(serverURL, "test-token", zerolog.Nop())
	require.NoError(t, err)
	return NewOperations(client, zerolog.Nop())
}

func TestSearchAppointments(t *testing.T) {
	server := newOperationsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(searchAppointmentsJSON))
	})

	ops := newTestOperations(t, server.URL)

	t.Run("nil filter matches everything", func(t *testing.T) {
		results, err := ops.SearchAppointments(context.Background(), SearchOptions{}, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)

		// Sorted by start time: 09:00 before 10:30
		first := results[0]
		assert.Equal(t, 102, first.ID)
		assert.Equal(t, "Pedro Rojas", first.PatientName)
		assert.Equal(t, "#F44336", first.StatusColor)
		assert.True(t, first.Cancelled)
		assert.Equal(t, "Las Condes", first.BranchName)
		assert.Empty(t, first.BranchCity)

		second := results[1]
		assert.Equal(t, 101, second.ID)
		assert.Equal(t, "#4CAF50", second.StatusColor)
		assert.False(t, second.Cancelled)
		assert.Equal(t, "Providencia", second.BranchName)
		assert.Equal(t, "Santiago", second.BranchCity)
		assert.Equal(t, 10, second.StartsAt.Hour())
		assert.Equal(t, 30, second.StartsAt.Minute())
	})

	t.Run("filter func narrows results", func(t *testing.T) {
		results, err := ops.SearchAppointments(context.Background(), SearchOptions{}, func(a AppointmentInfo) bool {
			return !a.Cancelled
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 101, results[0].ID)
	})
}

func TestSearchAppointmentsCatalogError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/citas/estados", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"code": 500, "message": "Error interno"}}`))
	})
	mux.HandleFunc("/sucursales", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(branchCatalogJSON))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	ops := newTestOperations(t, server.URL)

	_, err := ops.SearchAppointments(context.Background(), SearchOptions{}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestGetAppointmentInfo(t *testing.T) {
	server := newOperationsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/citas/101", r.URL.Path)
		w.Write([]byte(`{
			"data": {
				"id": 101, "id_paciente": 55, "nombre_paciente": "María Pérez",
				"id_estado": 7, "estado_cita": "Confirmada",
				"fecha": "2023-11-12", "hora_inicio": "10:30:00", "hora_fin": "11:00:00", "duracion": 30,
				"id_sucursal": 3, "nombre_sucursal": "Providencia",
				"fecha_actualizacion": "2023-11-10 09:15:00", "links": []
			}
		}`))
	})

	ops := newTestOperations(t, server.URL)

	info, err := ops.GetAppointmentInfo(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, 101, info.ID)
	assert.Equal(t, "#4CAF50", info.StatusColor)
	assert.Equal(t, "Santiago", info.BranchCity)
}

func TestChangeStatus(t *testing.T) {
	server := newOperationsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, float64(9), body["id_estado"])
		assert.Equal(t, true, body["notificar_anulacion"])

		if r.URL.Path == "/citas/999" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"code": 404, "message": "Cita no encontrada"}}`))
			return
		}

		w.Write([]byte(`{"data": {"id": 101, "id_estado": 9, "fecha": "2023-11-12", "fecha_actualizacion": "2023-11-11 10:00:00"}}`))
	})

	ops := newTestOperations(t, server.URL)

	result := ops.ChangeStatus(context.Background(), []int{101, 102, 999}, 9, true)

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, []int{101, 102}, result.Successful)
	require.Len(t, result.Failed, 1)

	failed := result.Failed[0]
	assert.Equal(t, 999, failed.AppointmentID)
	assert.Contains(t, failed.Error(), "failed to update appointment 999")

	var apiErr *APIError
	require.ErrorAs(t, failed.Err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestChangeStatusEmpty(t *testing.T) {
	ops := newTestOperations(t, "https://example.com")

	result := ops.ChangeStatus(context.Background(), nil, 9, false)
	assert.Equal(t, 0, result.Requested)
	assert.Empty(t, result.Successful)
	assert.Empty(t, result.Failed)
}
