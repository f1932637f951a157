package classifier

// Result is the prediction returned for one comment. When Error is set the
// remaining verdict fields carry no meaning.
type Result struct {
	Comment      string  `json:"comment"`
	IsHateSpeech bool    `json:"is_hate_speech"`
	Confidence   float64 `json:"confidence"`
	Error        string  `json:"error,omitempty"`
}

// Failed reports whether the prediction API rejected this item.
func (r Result) Failed() bool {
	return r.Error != ""
}

// BatchResponse wraps per-comment results in request order.
type BatchResponse struct {
	Results []Result `json:"results"`
}

// Health mirrors the prediction API health endpoint.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}

type predictRequest struct {
	Comment string `json:"comment"`
}

type batchRequest struct {
	Comments []string `json:"comments"`
}

type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
