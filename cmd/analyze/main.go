package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/console"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/render"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/source"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/store"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/util"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

const cliSession = "cli"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code so deferred cleanup completes before exit.
func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	var (
		apiURL  = fs.String("api", "", "Prediction API base URL (env PREDICTION_API_URL)")
		timeout = fs.Duration("timeout", 0, "Request timeout, 0 for none")
		mode    = fs.String("mode", "single", "Analysis mode: single or batch")
		dbPath  = fs.String("db", "", "Optional SQLite history database")
		asJSON  = fs.Bool("json", false, "Print the resulting state as JSON")
		verbose = fs.Bool("v", false, "Verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	selected, err := view.ParseMode(*mode)
	if err != nil {
		logrus.WithError(err).Error("parse mode")
		return 2
	}
	input := strings.Join(fs.Args(), " ")

	base := *apiURL
	if base == "" {
		base = os.Getenv("PREDICTION_API_URL")
	}
	client := classifier.NewClient(classifier.Config{BaseURL: base, Timeout: *timeout})

	var recorder console.Recorder
	if *dbPath != "" {
		db, err := store.Open(*dbPath, true)
		if err != nil {
			logrus.WithError(err).Error("open database")
			return 1
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logrus.WithError(cerr).Warn("close database")
			}
		}()
		recorder = db
	}

	con, err := console.New(classifier.WithLogging(client), source.NewMock(), nil, recorder)
	if err != nil {
		logrus.WithError(err).Error("create console")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timer := util.StartTimer()
	var state view.State
	if selected == view.ModeBatch {
		state = con.AnalyzeBatch(ctx, cliSession, input)
	} else {
		state = con.AnalyzeSingle(ctx, cliSession, input)
	}
	logrus.WithField("elapsed", timer.Elapsed()).Debug("analysis finished")

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			logrus.WithError(err).Error("encode state")
			return 1
		}
	} else {
		printState(out, state)
	}
	if state.Failed() {
		return 1
	}
	return 0
}

func printState(w io.Writer, state view.State) {
	if state.Failed() {
		fmt.Fprintln(w, state.Message)
		return
	}
	if state.Single != nil {
		fmt.Fprintf(w, "%s (confidence %s)\n", state.Single.Label, state.Single.Confidence)
		fmt.Fprintf(w, "  %q\n", state.Single.Comment)
	}
	if state.Batch != nil {
		b := state.Batch
		fmt.Fprintf(w, "Total: %d  Hate speech: %d  Safe: %d  Share: %s\n", b.Total, b.Flagged, b.Safe, b.PercentageLabel)
		printRows(w, "Hate speech", b.FlaggedRows)
		printRows(w, "Safe comments", b.SafeRows)
		if len(b.ErroredRows) > 0 {
			fmt.Fprintln(w, "\nNot classified")
			for _, row := range b.ErroredRows {
				fmt.Fprintf(w, "  - %s (%s)\n", row.Comment, row.Error)
			}
		}
	}
}

func printRows(w io.Writer, title string, rows []render.Row) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(rows) == 0 {
		fmt.Fprintf(w, "  %s\n", render.Placeholder)
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  - %s (%s)\n", row.Comment, row.Confidence)
	}
}
