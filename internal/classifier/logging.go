package classifier

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/util"
)

type loggingPredictor struct {
	next Predictor
}

// WithLogging returns a predictor that logs latency and outcome of every call
// made through next.
func WithLogging(next Predictor) Predictor {
	if next == nil {
		return nil
	}
	return &loggingPredictor{next: next}
}

func (p *loggingPredictor) PredictSingle(ctx context.Context, comment string) (Result, error) {
	timer := util.StartTimer()
	result, err := p.next.PredictSingle(ctx, comment)
	fields := logrus.Fields{
		"endpoint":    "predict",
		"duration_ms": timer.ElapsedMs(),
		"length":      len(comment),
	}
	if err != nil {
		logrus.WithError(err).WithFields(fields).Warn("prediction failed")
		return result, err
	}
	fields["hate_speech"] = result.IsHateSpeech
	fields["confidence"] = result.Confidence
	logrus.WithFields(fields).Info("prediction completed")
	return result, nil
}

func (p *loggingPredictor) PredictBatch(ctx context.Context, comments []string) (BatchResponse, error) {
	timer := util.StartTimer()
	resp, err := p.next.PredictBatch(ctx, comments)
	fields := logrus.Fields{
		"endpoint":    "predict/batch",
		"duration_ms": timer.ElapsedMs(),
		"comments":    len(comments),
	}
	if err != nil {
		logrus.WithError(err).WithFields(fields).Warn("batch prediction failed")
		return resp, err
	}
	failed := 0
	for _, r := range resp.Results {
		if r.Failed() {
			failed++
		}
	}
	fields["results"] = len(resp.Results)
	fields["item_errors"] = failed
	logrus.WithFields(fields).Info("batch prediction completed")
	return resp, nil
}
