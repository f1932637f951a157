package store

import (
	"time"
)

// Outcomes recorded for a finished analysis.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Analysis is one completed submit of the single or batch workflow.
type Analysis struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"size:64;index"`
	Mode       string `gorm:"size:16;index"`
	Input      string `gorm:"type:text"`
	Source     string `gorm:"size:32"`
	LinkHost   string `gorm:"size:255"`
	PostID     string `gorm:"size:64"`
	Outcome    string `gorm:"size:16;index"`
	ErrorKind  string `gorm:"size:16"`
	Message    string `gorm:"type:text"`
	Total      int
	Flagged    int
	Safe       int
	Errored    int
	Percentage int
	DurationMs int64
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

// AnalysisItem is one classified comment of an analysis, in response order.
type AnalysisItem struct {
	ID           uint   `gorm:"primaryKey"`
	AnalysisID   uint   `gorm:"index"`
	Position     int
	Comment      string `gorm:"type:text"`
	IsHateSpeech bool
	Confidence   float64
	Error        string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}
