package sessions

import "time"

// CreateInput is the validated payload for opening a counting session.
type CreateInput struct {
	LocationID       int64
	Type             string
	ScheduledStartAt *time.Time
	ScheduledEndAt   *time.Time
	Notes            string
}

type createRequest struct {
	LocationID       int64      `json:"location_id"`
	Type             string     `json:"type"`
	ScheduledStartAt *time.Time `json:"scheduled_start_at"`
	ScheduledEndAt   *time.Time `json:"scheduled_end_at"`
	Notes            string     `json:"notes"`
}
