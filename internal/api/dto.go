package api

import (
	"time"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/store"
)

// SingleRequest submits one comment.
type SingleRequest struct {
	Comment string `json:"comment"`
}

// BatchRequest submits a social post link for batch analysis.
type BatchRequest struct {
	URL string `json:"url"`
}

// UpstreamResponse reports the prediction API status.
type UpstreamResponse struct {
	BaseURL   string             `json:"base_url"`
	Reachable bool               `json:"reachable"`
	Health    *classifier.Health `json:"health,omitempty"`
	ModelInfo map[string]any     `json:"model_info,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// AnalysisDTO is the API representation of a recorded analysis.
type AnalysisDTO struct {
	ID         uint      `json:"id"`
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"`
	Input      string    `json:"input"`
	Source     string    `json:"source,omitempty"`
	LinkHost   string    `json:"link_host,omitempty"`
	PostID     string    `json:"post_id,omitempty"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Message    string    `json:"message,omitempty"`
	Total      int       `json:"total"`
	Flagged    int       `json:"flagged"`
	Safe       int       `json:"safe"`
	Errored    int       `json:"errored"`
	Percentage int       `json:"percentage"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalysisItemDTO is one classified comment of a recorded analysis.
type AnalysisItemDTO struct {
	Position     int     `json:"position"`
	Comment      string  `json:"comment"`
	IsHateSpeech bool    `json:"is_hate_speech"`
	Confidence   float64 `json:"confidence"`
	Error        string  `json:"error,omitempty"`
}

// AnalysisDetailResponse bundles an analysis with its items.
type AnalysisDetailResponse struct {
	AnalysisDTO
	Items []AnalysisItemDTO `json:"items"`
}

// HistoryResponse is the paginated list of analyses.
type HistoryResponse struct {
	Items []AnalysisDTO `json:"items"`
	Total int64         `json:"total"`
}

// FromModel converts a store.Analysis into the DTO representation.
func FromModel(a store.Analysis) AnalysisDTO {
	return AnalysisDTO{
		ID:         a.ID,
		SessionID:  a.SessionID,
		Mode:       a.Mode,
		Input:      a.Input,
		Source:     a.Source,
		LinkHost:   a.LinkHost,
		PostID:     a.PostID,
		Outcome:    a.Outcome,
		ErrorKind:  a.ErrorKind,
		Message:    a.Message,
		Total:      a.Total,
		Flagged:    a.Flagged,
		Safe:       a.Safe,
		Errored:    a.Errored,
		Percentage: a.Percentage,
		DurationMs: a.DurationMs,
		CreatedAt:  a.CreatedAt,
	}
}

// ItemFromModel converts a store.AnalysisItem into a DTO.
func ItemFromModel(item store.AnalysisItem) AnalysisItemDTO {
	return AnalysisItemDTO{
		Position:     item.Position,
		Comment:      item.Comment,
		IsHateSpeech: item.IsHateSpeech,
		Confidence:   item.Confidence,
		Error:        item.Error,
	}
}
