package scans

import "time"

// BatchInput is one submitted RFID scan batch for a session.
type BatchInput struct {
	Zone      string
	ScannedAt *time.Time
	Tags      []string
}

type batchRequest struct {
	Zone      string     `json:"zone"`
	ScannedAt *time.Time `json:"scanned_at"`
	Tags      []string   `json:"tags"`
}

type batchSummary struct {
	BatchRef     string `json:"batch_ref"`
	NewTags      int    `json:"new_tags"`
	DuplicateTag int    `json:"duplicate_tags"`
	ItemsTouched int    `json:"items_touched"`
}
