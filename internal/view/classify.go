package view

import (
	"errors"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/validate"
)

// ConnectivityMessage is shown when the prediction API cannot be reached.
const ConnectivityMessage = "Could not reach the server. Check that the prediction API is running."

// Classify maps a failed analysis to the kind and message shown to the user.
func Classify(err error, mode Mode) (ErrorKind, string) {
	if err == nil {
		return KindNone, ""
	}
	if validate.IsValidation(err) {
		return KindValidation, validate.Message(err)
	}
	if classifier.IsTransport(err) {
		return KindTransport, ConnectivityMessage
	}
	prefix := "Error processing the comment: "
	if mode == ModeBatch {
		prefix = "Error processing the comments: "
	}
	var apiErr *classifier.APIError
	if errors.As(err, &apiErr) {
		return KindAPI, prefix + apiErr.Error()
	}
	return KindProcessing, prefix + err.Error()
}
