package dentalink

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Run("unmarshal", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2023-11-12"`), &d))
		assert.True(t, d.Equal(time.Date(2023, time.November, 12, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("unmarshal invalid", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"12/11/2023"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`20231112`), &d))
	})

	t.Run("marshal", func(t *testing.T) {
		d := Date{Time: time.Date(2023, time.November, 12, 0, 0, 0, 0, time.UTC)}
		data, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2023-11-12"`, string(data))
	})
}

func TestDateTime(t *testing.T) {
	t.Run("unmarshal", func(t *testing.T) {
		var d DateTime
		require.NoError(t, json.Unmarshal([]byte(`"2023-11-10 09:15:00"`), &d))
		assert.True(t, d.Equal(time.Date(2023, time.November, 10, 9, 15, 0, 0, time.UTC)))
	})

	t.Run("unmarshal invalid", func(t *testing.T) {
		var d DateTime
		assert.Error(t, json.Unmarshal([]byte(`"2023-11-10T09:15:00Z"`), &d))
	})

	t.Run("marshal", func(t *testing.T) {
		d := DateTime{Time: time.Date(2023, time.November, 10, 9, 15, 0, 0, time.UTC)}
		data, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2023-11-10 09:15:00"`, string(data))
	})
}

func TestBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		wantErr  bool
	}{
		{input: "true", expected: true},
		{input: "false", expected: false},
		{input: "1", expected: true},
		{input: "0", expected: false},
		{input: `"1"`, expected: true},
		{input: `"0"`, expected: false},
		{input: `"true"`, expected: true},
		{input: `"false"`, expected: false},
		{input: "2", wantErr: true},
		{input: `"yes"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var b Bool
			err := json.Unmarshal([]byte(tt.input), &b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bool(b))
		})
	}

	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(Bool(true))
		require.NoError(t, err)
		assert.Equal(t, "true", string(data))
	})
}

func TestCursor(t *testing.T) {
	next := "https://api.dentalink.healthatom.com/api/v1/citas?offset=10"

	t.Run("nil cursor", func(t *testing.T) {
		var c *Cursor
		assert.False(t, c.HasNext())
		assert.False(t, c.HasPrev())
	})

	t.Run("next set", func(t *testing.T) {
		c := &Cursor{Current: "current", Next: &next}
		assert.True(t, c.HasNext())
		assert.False(t, c.HasPrev())
	})

	t.Run("empty next", func(t *testing.T) {
		empty := ""
		c := &Cursor{Current: "current", Next: &empty}
		assert.False(t, c.HasNext())
	})

	t.Run("prev set", func(t *testing.T) {
		c := &Cursor{Current: "current", Prev: &next}
		assert.True(t, c.HasPrev())
	})
}

func TestAppointmentTimes(t *testing.T) {
	appt := Appointment{
		Date:      Date{Time: time.Date(2023, time.November, 12, 0, 0, 0, 0, time.UTC)},
		StartTime: "10:30:00",
		EndTime:   "11:00",
	}

	starts, err := appt.StartsAt()
	require.NoError(t, err)
	assert.True(t, starts.Equal(time.Date(2023, time.November, 12, 10, 30, 0, 0, time.UTC)))

	ends, err := appt.EndsAt()
	require.NoError(t, err)
	assert.True(t, ends.Equal(time.Date(2023, time.November, 12, 11, 0, 0, 0, time.UTC)))

	t.Run("invalid clock", func(t *testing.T) {
		appt := Appointment{StartTime: "mediodía"}
		_, err := appt.StartsAt()
		assert.Error(t, err)
	})
}

func TestAppointmentFlags(t *testing.T) {
	appt := Appointment{CancellationState: 0, ConfirmationState: 1}
	assert.False(t, appt.IsCancelled())
	assert.True(t, appt.IsConfirmed())

	appt.CancellationState = 2
	assert.True(t, appt.IsCancelled())
}
