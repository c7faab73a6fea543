package entity

import "time"

// PollState is what a consumer sees of a polled snapshot.
// Data keeps the last successful result when a later cycle fails.
type PollState[T any] struct {
	Data      T         `json:"data"`
	HasData   bool      `json:"hasData"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
