package render

import (
	"math"
	"strconv"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
)

// Placeholder is shown instead of an empty category list.
const Placeholder = "No comments found in this category."

// Presentation variants for a single verdict.
const (
	VariantFlagged = "hate-speech"
	VariantSafe    = "not-hate-speech"
)

// SingleView is the display form of one prediction.
type SingleView struct {
	Flagged    bool   `json:"flagged"`
	Variant    string `json:"variant"`
	Icon       string `json:"icon"`
	Label      string `json:"label"`
	Confidence string `json:"confidence"`
	Comment    string `json:"comment"`
}

// Row is one comment line within a batch category.
type Row struct {
	Comment    string `json:"comment"`
	Confidence string `json:"confidence"`
}

// ErrorRow is a batch item the API could not classify.
type ErrorRow struct {
	Comment string `json:"comment"`
	Error   string `json:"error"`
}

// Stats aggregates a batch, ignoring items that carry an error.
type Stats struct {
	Total      int `json:"total"`
	Flagged    int `json:"flagged"`
	Safe       int `json:"safe"`
	Errored    int `json:"errored"`
	Percentage int `json:"percentage"`
}

// BatchView is the display form of a batch response.
type BatchView struct {
	Stats
	PercentageLabel string     `json:"percentage_label"`
	FlaggedRows     []Row      `json:"flagged_rows"`
	SafeRows        []Row      `json:"safe_rows"`
	ErroredRows     []ErrorRow `json:"errored_rows"`
}

// FlaggedEmpty reports whether the flagged list renders the placeholder.
func (v BatchView) FlaggedEmpty() bool { return len(v.FlaggedRows) == 0 }

// SafeEmpty reports whether the safe list renders the placeholder.
func (v BatchView) SafeEmpty() bool { return len(v.SafeRows) == 0 }

// Single maps a prediction to its flagged or safe presentation.
func Single(result classifier.Result) SingleView {
	view := SingleView{
		Flagged:    result.IsHateSpeech,
		Confidence: FormatConfidence(result.Confidence),
		Comment:    result.Comment,
	}
	if result.IsHateSpeech {
		view.Variant = VariantFlagged
		view.Icon = "fas fa-exclamation-triangle"
		view.Label = "Hate Speech Detected"
	} else {
		view.Variant = VariantSafe
		view.Icon = "fas fa-check-circle"
		view.Label = "Safe Comment"
	}
	return view
}

// Summarize counts the error-free results of a batch.
func Summarize(results []classifier.Result) Stats {
	var stats Stats
	for _, r := range results {
		switch {
		case r.Failed():
			stats.Errored++
		case r.IsHateSpeech:
			stats.Flagged++
		default:
			stats.Safe++
		}
	}
	stats.Total = stats.Flagged + stats.Safe
	stats.Percentage = Percentage(stats.Flagged, stats.Total)
	return stats
}

// Percentage returns flagged/total as a whole percent rounded half up, or 0
// for an empty total.
func Percentage(flagged, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(flagged)/float64(total)*100 + 0.5))
}

// Batch partitions a batch response into flagged, safe and errored rows,
// keeping the response order inside each partition.
func Batch(resp classifier.BatchResponse) BatchView {
	view := BatchView{
		Stats:       Summarize(resp.Results),
		FlaggedRows: []Row{},
		SafeRows:    []Row{},
		ErroredRows: []ErrorRow{},
	}
	view.PercentageLabel = strconv.Itoa(view.Percentage) + "%"
	for _, r := range resp.Results {
		if r.Failed() {
			view.ErroredRows = append(view.ErroredRows, ErrorRow{Comment: r.Comment, Error: r.Error})
			continue
		}
		row := Row{Comment: r.Comment, Confidence: FormatConfidence(r.Confidence)}
		if r.IsHateSpeech {
			view.FlaggedRows = append(view.FlaggedRows, row)
		} else {
			view.SafeRows = append(view.SafeRows, row)
		}
	}
	return view
}

// FormatConfidence renders a 0-100 confidence with the shortest decimal form.
func FormatConfidence(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0%"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
