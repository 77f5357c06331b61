package core

import "context"

// Validation statuses returned by a CodeAdvisor.
const (
	ValidationCorrect          = "Correct"
	ValidationPartiallyCorrect = "Partially Correct"
	ValidationIncorrect        = "Incorrect"
	ValidationStatusError      = "Error"
)

type (
	ValidationResult struct {
		Status   string `json:"status"`
		Feedback string `json:"feedback"`
		Errors   string `json:"errors"`
	}

	SimulationResult struct {
		Status string `json:"status"` // "success" | "error"
		Output string `json:"output"`
	}

	ChatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// CodeAdvisor is an external service that can reason about code as
	// opaque text. Implementations must never fail hard: advisor outages
	// surface as an "Error" status, not as a transport error that aborts
	// the calling request.
	CodeAdvisor interface {
		Validate(ctx context.Context, code, taskDescription string) ValidationResult
		Simulate(ctx context.Context, code, language string) SimulationResult
		Generate(ctx context.Context, prompt, language string) (string, error)
		Chat(ctx context.Context, messages []ChatMessage) (string, error)
	}
)

// SubmitEnabled reports whether a validation outcome unlocks final submission.
func (r ValidationResult) SubmitEnabled() bool {
	return r.Status == ValidationCorrect
}
