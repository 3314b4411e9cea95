package model

import "time"

type Snapshot struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	StartedAt   time.Time  `json:"started_at"`
	Synced      int        `json:"synced"`
	Failed      int        `json:"failed"`
	Pending     bool       `json:"pending"`
	LastRunID   string     `json:"last_run_id,omitempty"`
	LastSync    *time.Time `json:"last_sync"`
	LastError   string     `json:"last_error,omitempty"`
}
