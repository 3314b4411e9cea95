package model

import (
	"time"

	"gorm.io/gorm"
)

type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS"
	StatusFailed  SyncStatus = "FAILED"
)

type SyncReason string

const (
	ReasonStartup SyncReason = "startup"
	ReasonChange  SyncReason = "change"
	ReasonManual  SyncReason = "manual"
)

type SyncRun struct {
	ID        string
	Reason    SyncReason
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

func (r SyncRun) Status() SyncStatus {
	if r.Err != nil {
		return StatusFailed
	}
	return StatusSuccess
}

type History struct {
	gorm.Model
	RunID      string     `gorm:"not null;index" json:"run_id"`
	Reason     SyncReason `gorm:"not null" json:"reason"`
	Status     SyncStatus `gorm:"not null" json:"status"`
	ErrMsg     string     `json:"err_msg"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	DurationMs int64      `json:"duration_ms"`
}

type HistoryStats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}
