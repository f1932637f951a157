package validate

import (
	"errors"
	"fmt"
	"strings"
)

// MaxBatchSize is the largest comment batch the prediction API accepts.
const MaxBatchSize = 100

// RecognizedHosts lists the host fragments a batch link must contain.
var RecognizedHosts = []string{"twitter.com", "x.com"}

// ValidationError reports user input that fails a precondition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Message extracts the user-facing text of a validation error.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Comment trims raw and rejects it when nothing is left.
func Comment(raw string) (string, error) {
	comment := strings.TrimSpace(raw)
	if comment == "" {
		return "", &ValidationError{Field: "comment", Message: "Please enter a comment to analyze."}
	}
	return comment, nil
}

// SocialLink trims raw and requires it to mention a recognized host. The check
// is a substring match, not URL parsing.
func SocialLink(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", &ValidationError{Field: "url", Message: "Please enter the post link."}
	}
	for _, host := range RecognizedHosts {
		if strings.Contains(link, host) {
			return link, nil
		}
	}
	return "", &ValidationError{Field: "url", Message: "Please enter a valid Twitter/X link."}
}

// Batch checks the comment list sent to the batch endpoint.
func Batch(comments []string) error {
	if len(comments) == 0 {
		return &ValidationError{Field: "comments", Message: "No comments available for analysis."}
	}
	if len(comments) > MaxBatchSize {
		return &ValidationError{
			Field:   "comments",
			Message: fmt.Sprintf("At most %d comments can be analyzed per request.", MaxBatchSize),
		}
	}
	return nil
}
