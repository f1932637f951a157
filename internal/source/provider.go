package source

import "context"

// Provider supplies the comments analysed for a batch link.
type Provider interface {
	Name() string
	Comments(ctx context.Context, link Link) ([]string, error)
}

// mockComments is the fixed demo dataset. It does not depend on the link.
var mockComments = []string{
	"Great post! Thanks for sharing.",
	"You people are disgusting and should not exist",
	"I love this community, everyone is so helpful!",
	"I hate all of you, you are worthless",
	"Amazing work, keep it up!",
	"This is terrible, you should be ashamed",
	"Fantastic content, very informative",
	"You are all idiots and don't deserve respect",
	"Thank you for this valuable information",
	"I can't stand people like you",
}

// Mock returns the demo dataset for every link. Batch analyses run through it
// never reflect the content behind the submitted URL.
type Mock struct{}

// NewMock constructs the mock provider.
func NewMock() *Mock {
	return &Mock{}
}

// Name identifies the provider in logs and history.
func (m *Mock) Name() string {
	return "mock"
}

// Comments returns a copy of the demo dataset in its fixed order.
func (m *Mock) Comments(ctx context.Context, _ Link) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(mockComments))
	copy(out, mockComments)
	return out, nil
}
