package dentalink

import "time"

// Pointer helpers for filling filter structs inline.

// Int returns a pointer to the given int.
func Int(v int) *int { return &v }

// String returns a pointer to the given string.
func String(v string) *string { return &v }

// Time returns a pointer to the given time.
func Time(v time.Time) *time.Time { return &v }

// True returns a pointer to a true bool.
func True() *bool {
	v := true
	return &v
}

// False returns a pointer to a false bool.
func False() *bool {
	v := false
	return &v
}
