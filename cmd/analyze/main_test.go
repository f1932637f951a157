package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/store"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

func TestRunFailureClosesHistory(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	var out bytes.Buffer
	code := run([]string{"-api", base, "-db", dbPath, "hello"}, &out)
	if code != 1 {
		t.Fatalf("expected exit code 1 got %d", code)
	}
	if !strings.Contains(out.String(), view.ConnectivityMessage) {
		t.Fatalf("expected connectivity message got %q", out.String())
	}

	db, err := store.Open(dbPath, true)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer db.Close()
	count, err := db.CountAnalyses()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected failed analysis recorded got %d", count)
	}
}

func TestRunBatchPrintsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Comments []string `json:"comments"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		results := make([]map[string]any, 0, len(body.Comments))
		for _, c := range body.Comments {
			results = append(results, map[string]any{"comment": c, "is_hate_speech": strings.Contains(c, "hate"), "confidence": 90})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	var out bytes.Buffer
	code := run([]string{"-api", srv.URL, "-mode", "batch", "https://x.com/a/status/1"}, &out)
	if code != 0 {
		t.Fatalf("expected exit code 0 got %d (%s)", code, out.String())
	}
	if !strings.Contains(out.String(), "Total: 10  Hate speech: 1  Safe: 9  Share: 10%") {
		t.Fatalf("unexpected summary %q", out.String())
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"-mode", "thread", "text"}, &out); code != 2 {
		t.Fatalf("expected exit code 2 got %d", code)
	}
}
