package console

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/render"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/source"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/store"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/util"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/validate"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

// Recorder persists finished analyses.
type Recorder interface {
	SaveAnalysis(a *store.Analysis, items []store.AnalysisItem) error
}

// Console runs the submit cycle of both workflows: validate, enter loading,
// call the prediction API, then show the rendered result or a classified error.
type Console struct {
	predictor classifier.Predictor
	source    source.Provider
	sessions  *view.Registry
	history   Recorder
}

// New wires a console. history may be nil to disable recording.
func New(predictor classifier.Predictor, provider source.Provider, sessions *view.Registry, history Recorder) (*Console, error) {
	if predictor == nil {
		return nil, errors.New("predictor required")
	}
	if provider == nil {
		provider = source.NewMock()
	}
	if sessions == nil {
		sessions = view.NewRegistry(nil)
	}
	return &Console{
		predictor: predictor,
		source:    provider,
		sessions:  sessions,
		history:   history,
	}, nil
}

// SourceName reports which comment provider feeds batch analyses.
func (c *Console) SourceName() string {
	return c.source.Name()
}

// Sessions exposes the session registry.
func (c *Console) Sessions() *view.Registry {
	return c.sessions
}

// Snapshot returns both workflows of a session.
func (c *Console) Snapshot(sessionID string) view.Snapshot {
	return c.sessions.Get(sessionID).Snapshot()
}

// SwitchTab activates mode for the session and resets both workflows.
func (c *Console) SwitchTab(sessionID string, mode view.Mode) view.Snapshot {
	return c.sessions.Get(sessionID).SwitchTab(mode)
}

// Reset returns one workflow of the session to idle.
func (c *Console) Reset(sessionID string, mode view.Mode) view.State {
	return c.sessions.Get(sessionID).Reset(mode)
}

// AnalyzeSingle classifies one comment and returns the session's resulting
// single-mode state.
func (c *Console) AnalyzeSingle(ctx context.Context, sessionID, raw string) view.State {
	ctrl := c.sessions.Get(sessionID)
	comment, err := validate.Comment(raw)
	if err != nil {
		return ctrl.Reject(view.ModeSingle, raw, validate.Message(err))
	}

	token := ctrl.Begin(view.ModeSingle, comment)
	timer := util.StartTimer()
	record := &store.Analysis{
		SessionID: sessionID,
		Mode:      string(view.ModeSingle),
		Input:     comment,
	}

	result, err := c.predictor.PredictSingle(ctx, comment)
	record.DurationMs = timer.ElapsedMs()
	if err != nil {
		c.fail(ctrl, view.ModeSingle, token, err, record)
		return ctrl.State(view.ModeSingle)
	}

	rendered := render.Single(result)
	if !ctrl.Succeed(view.ModeSingle, token, view.Payload{Single: &rendered}) {
		logrus.WithFields(logrus.Fields{"session": sessionID, "token": token}).Debug("discarded stale single result")
	}
	record.Outcome = store.OutcomeSuccess
	record.Total = 1
	if result.IsHateSpeech {
		record.Flagged = 1
		record.Percentage = 100
	} else {
		record.Safe = 1
	}
	c.save(record, itemsFrom([]classifier.Result{result}))
	return ctrl.State(view.ModeSingle)
}

// AnalyzeBatch validates the post link, gathers comments from the configured
// provider and classifies them. With the mock provider the analysed comments
// never depend on the link.
func (c *Console) AnalyzeBatch(ctx context.Context, sessionID, rawLink string) view.State {
	ctrl := c.sessions.Get(sessionID)
	linkText, err := validate.SocialLink(rawLink)
	if err != nil {
		return ctrl.Reject(view.ModeBatch, rawLink, validate.Message(err))
	}

	token := ctrl.Begin(view.ModeBatch, linkText)
	timer := util.StartTimer()
	link := source.ParseLink(linkText)
	record := &store.Analysis{
		SessionID: sessionID,
		Mode:      string(view.ModeBatch),
		Input:     linkText,
		Source:    c.source.Name(),
		LinkHost:  link.Host,
		PostID:    link.PostID,
	}

	comments, err := c.source.Comments(ctx, link)
	if err == nil {
		err = validate.Batch(comments)
	}
	if err != nil {
		record.DurationMs = timer.ElapsedMs()
		c.fail(ctrl, view.ModeBatch, token, err, record)
		return ctrl.State(view.ModeBatch)
	}
	logrus.WithFields(logrus.Fields{
		"session":  sessionID,
		"source":   c.source.Name(),
		"host":     link.Host,
		"post_id":  link.PostID,
		"comments": len(comments),
	}).Info("batch comments gathered")

	resp, err := c.predictor.PredictBatch(ctx, comments)
	record.DurationMs = timer.ElapsedMs()
	if err != nil {
		c.fail(ctrl, view.ModeBatch, token, err, record)
		return ctrl.State(view.ModeBatch)
	}

	rendered := render.Batch(resp)
	if !ctrl.Succeed(view.ModeBatch, token, view.Payload{Batch: &rendered}) {
		logrus.WithFields(logrus.Fields{"session": sessionID, "token": token}).Debug("discarded stale batch result")
	}
	record.Outcome = store.OutcomeSuccess
	record.Total = rendered.Total
	record.Flagged = rendered.Flagged
	record.Safe = rendered.Safe
	record.Errored = rendered.Errored
	record.Percentage = rendered.Percentage
	c.save(record, itemsFrom(resp.Results))
	return ctrl.State(view.ModeBatch)
}

func (c *Console) fail(ctrl *view.Controller, mode view.Mode, token uint64, err error, record *store.Analysis) {
	kind, message := view.Classify(err, mode)
	logrus.WithError(err).WithFields(logrus.Fields{
		"session": record.SessionID,
		"mode":    mode,
		"kind":    kind,
	}).Warn("analysis failed")
	ctrl.Fail(mode, token, kind, message)
	record.Outcome = store.OutcomeFailure
	record.ErrorKind = string(kind)
	record.Message = message
	c.save(record, nil)
}

func (c *Console) save(record *store.Analysis, items []store.AnalysisItem) {
	if c.history == nil {
		return
	}
	if err := c.history.SaveAnalysis(record, items); err != nil {
		logrus.WithError(err).WithField("mode", record.Mode).Warn("record analysis history")
	}
}

func itemsFrom(results []classifier.Result) []store.AnalysisItem {
	items := make([]store.AnalysisItem, 0, len(results))
	for _, r := range results {
		items = append(items, store.AnalysisItem{
			Comment:      r.Comment,
			IsHateSpeech: r.IsHateSpeech,
			Confidence:   r.Confidence,
			Error:        r.Error,
		})
	}
	return items
}
