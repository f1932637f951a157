package console

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/source"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/store"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

type fakePredictor struct {
	mu          sync.Mutex
	single      classifier.Result
	batch       classifier.BatchResponse
	err         error
	singleCalls []string
	batchCalls  [][]string
}

func (f *fakePredictor) PredictSingle(ctx context.Context, comment string) (classifier.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleCalls = append(f.singleCalls, comment)
	if f.err != nil {
		return classifier.Result{}, f.err
	}
	out := f.single
	out.Comment = comment
	return out, nil
}

func (f *fakePredictor) PredictBatch(ctx context.Context, comments []string) (classifier.BatchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls = append(f.batchCalls, comments)
	if f.err != nil {
		return classifier.BatchResponse{}, f.err
	}
	return f.batch, nil
}

type fakeRecorder struct {
	analyses []store.Analysis
	items    [][]store.AnalysisItem
}

func (f *fakeRecorder) SaveAnalysis(a *store.Analysis, items []store.AnalysisItem) error {
	f.analyses = append(f.analyses, *a)
	f.items = append(f.items, items)
	return nil
}

type staticSource struct {
	comments []string
	err      error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Comments(context.Context, source.Link) ([]string, error) {
	return s.comments, s.err
}

func newConsole(t *testing.T, p classifier.Predictor, provider source.Provider, rec Recorder) *Console {
	t.Helper()
	c, err := New(p, provider, nil, rec)
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	return c
}

func TestAnalyzeSingleLabelsMatchVerdict(t *testing.T) {
	for _, flagged := range []bool{true, false} {
		pred := &fakePredictor{single: classifier.Result{IsHateSpeech: flagged, Confidence: 77}}
		rec := &fakeRecorder{}
		c := newConsole(t, pred, nil, rec)

		state := c.AnalyzeSingle(context.Background(), "s", "  some comment ")
		if len(pred.singleCalls) != 1 || pred.singleCalls[0] != "some comment" {
			t.Fatalf("expected one trimmed call got %v", pred.singleCalls)
		}
		if !state.Succeeded() || state.Single == nil {
			t.Fatalf("expected success got %+v", state)
		}
		if state.Single.Flagged != flagged {
			t.Fatalf("rendered flag %v does not match verdict %v", state.Single.Flagged, flagged)
		}
		if len(rec.analyses) != 1 || rec.analyses[0].Outcome != store.OutcomeSuccess {
			t.Fatalf("expected recorded success got %+v", rec.analyses)
		}
	}
}

func TestAnalyzeSingleRejectsBlank(t *testing.T) {
	pred := &fakePredictor{}
	rec := &fakeRecorder{}
	c := newConsole(t, pred, nil, rec)

	state := c.AnalyzeSingle(context.Background(), "s", " \n\t ")
	if len(pred.singleCalls) != 0 {
		t.Fatalf("no network call expected for blank input")
	}
	if !state.Failed() || state.Kind != view.KindValidation || state.Message == "" {
		t.Fatalf("expected validation failure got %+v", state)
	}
	if len(rec.analyses) != 0 {
		t.Fatalf("validation rejects are not recorded")
	}
}

func TestAnalyzeBatchUsesProvider(t *testing.T) {
	pred := &fakePredictor{batch: classifier.BatchResponse{Results: []classifier.Result{
		{Comment: "a", IsHateSpeech: true, Confidence: 90},
		{Comment: "b", Confidence: 80},
		{Comment: "c", Error: "failed"},
	}}}
	rec := &fakeRecorder{}
	c := newConsole(t, pred, nil, rec)

	state := c.AnalyzeBatch(context.Background(), "s", "https://x.com/user/status/123")
	if !state.Succeeded() || state.Batch == nil {
		t.Fatalf("expected success got %+v", state)
	}
	if len(pred.batchCalls) != 1 || len(pred.batchCalls[0]) != 10 {
		t.Fatalf("expected the mock dataset to be posted got %v", pred.batchCalls)
	}
	if state.Batch.Total != 2 || state.Batch.Errored != 1 || state.Batch.PercentageLabel != "50%" {
		t.Fatalf("unexpected batch view %+v", state.Batch.Stats)
	}
	got := rec.analyses[0]
	if got.Source != "mock" || got.LinkHost != "x.com" || got.PostID != "123" || len(rec.items[0]) != 3 {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestAnalyzeBatchRejectsLink(t *testing.T) {
	pred := &fakePredictor{}
	c := newConsole(t, pred, nil, nil)
	for _, link := range []string{"", "https://instagram.com/p/1"} {
		state := c.AnalyzeBatch(context.Background(), "s", link)
		if !state.Failed() || state.Kind != view.KindValidation {
			t.Fatalf("expected validation failure for %q got %+v", link, state)
		}
	}
	if len(pred.batchCalls) != 0 {
		t.Fatalf("no network call expected")
	}
}

func TestAnalyzeBatchProviderFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider source.Provider
		kind     view.ErrorKind
	}{
		{"provider error", staticSource{err: errors.New("scrape failed")}, view.KindProcessing},
		{"empty dataset", staticSource{}, view.KindValidation},
		{"oversized dataset", staticSource{comments: make([]string, 101)}, view.KindValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pred := &fakePredictor{}
			rec := &fakeRecorder{}
			c := newConsole(t, pred, tc.provider, rec)
			state := c.AnalyzeBatch(context.Background(), "s", "https://x.com/a/status/1")
			if !state.Failed() || state.Kind != tc.kind {
				t.Fatalf("expected %s failure got %+v", tc.kind, state)
			}
			if len(pred.batchCalls) != 0 {
				t.Fatalf("prediction API must not be called")
			}
			if len(rec.analyses) != 1 || rec.analyses[0].Outcome != store.OutcomeFailure {
				t.Fatalf("expected recorded failure got %+v", rec.analyses)
			}
		})
	}
}

func TestAnalyzeAgainstLiveServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	client := classifier.NewClient(classifier.Config{BaseURL: srv.URL})
	c := newConsole(t, client, nil, nil)

	state := c.AnalyzeSingle(context.Background(), "s", "hello")
	if state.Kind != view.KindAPI || !strings.Contains(state.Message, "500") {
		t.Fatalf("expected api failure mentioning 500 got %+v", state)
	}

	srv.Close()
	state = c.AnalyzeBatch(context.Background(), "s", "https://twitter.com/a/status/1")
	if state.Kind != view.KindTransport || state.Message != view.ConnectivityMessage {
		t.Fatalf("expected connectivity failure got %+v", state)
	}
}

func TestSwitchTabClearsSession(t *testing.T) {
	pred := &fakePredictor{single: classifier.Result{IsHateSpeech: true}}
	c := newConsole(t, pred, nil, nil)
	c.AnalyzeSingle(context.Background(), "s", "text")
	c.AnalyzeBatch(context.Background(), "s", "bad link")

	snap := c.SwitchTab("s", view.ModeBatch)
	if snap.Active != view.ModeBatch || !snap.Single.Idle() || !snap.Batch.Idle() {
		t.Fatalf("expected both modes idle got %+v", snap)
	}
	if snap.Single.Input != "" || snap.Batch.Input != "" {
		t.Fatalf("inputs must be cleared")
	}
	if other := c.Snapshot("other"); !other.Single.Idle() {
		t.Fatalf("sessions must be isolated")
	}
}

func TestNewRequiresPredictor(t *testing.T) {
	if _, err := New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error without predictor")
	}
}
