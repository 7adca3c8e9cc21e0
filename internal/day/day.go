// Package day holds the fixed table of the five periods of the day,
// each associated with an hour and a greeting message.
package day

import (
	"errors"
	"fmt"
	"strings"
)

// Day identifies one period of the day.
// The zero value is Morning; values outside the declared constants are invalid.
type Day int

const (
	Morning Day = iota
	Noon
	Afternoon
	Evening
	Night
)

// Count is the number of periods in the table.
const Count = 5

// ErrUnknown is returned when a name does not match any period.
var ErrUnknown = errors.New("unknown period of day")

type entry struct {
	key     string
	hour    int
	message string
}

// table is indexed by Day and never written after initialization.
var table = [Count]entry{
	Morning:   {key: "morning", hour: 8, message: "Il est l'heure de se lever"},
	Noon:      {key: "noon", hour: 12, message: "A table"},
	Afternoon: {key: "afternoon", hour: 15, message: "Bon escalade"},
	Evening:   {key: "evening", hour: 22, message: "Bonne nuit"},
	Night:     {key: "night", hour: 2, message: "Fais de beaux rêves"},
}

// All returns every period in declaration order.
// A new slice is returned on each call.
func All() []Day {
	return []Day{Morning, Noon, Afternoon, Evening, Night}
}

// Valid reports whether d is one of the declared periods.
func (d Day) Valid() bool {
	return d >= Morning && d <= Night
}

// Hour returns the hour of day (0-23) associated with d, or -1 if d is invalid.
func (d Day) Hour() int {
	if !d.Valid() {
		return -1
	}
	return table[d].hour
}

// Message returns the greeting associated with d, or "" if d is invalid.
func (d Day) Message() string {
	if !d.Valid() {
		return ""
	}
	return table[d].message
}

func (d Day) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return table[d].key
}

// Parse resolves a period from its name, ignoring case and surrounding spaces.
func Parse(s string) (Day, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, e := range table {
		if e.key == name {
			return Day(i), nil
		}
	}
	return Morning, fmt.Errorf("%w: %q", ErrUnknown, s)
}

// MarshalText encodes d as its name.
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknown, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText.
// It lets envconfig and encoding/json populate Day fields directly.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
