package engine

import (
	"time"

	"github.com/tartampluch/go-daytime/internal/day"
)

// GreetingEntry is a display-ready view of one row of the period table.
type GreetingEntry struct {
	// Day is the period this entry describes.
	Day day.Day `json:"day"`

	// Label is the localized name of the period.
	Label string `json:"label"`

	Hour int `json:"hour"`

	// Message is the localized greeting; it equals Day.Message() without a translator.
	Message string `json:"message"`

	// NextOccurrence is the next time the clock reaches Hour, today included.
	NextOccurrence time.Time `json:"next_occurrence"`
}
