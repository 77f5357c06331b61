package advisorsvc

import (
	"context"

	"github.com/kostask/taskboard/core"
)

// DummyAdvisor returns canned results; used in tests and when no advisor
// credentials are configured.
type DummyAdvisor struct {
	ValidationResult core.ValidationResult
	SimulationResult core.SimulationResult
	Reply            string
	Err              error
}

var _ core.CodeAdvisor = (*DummyAdvisor)(nil)

func NewDummyAdvisor() *DummyAdvisor {
	return &DummyAdvisor{
		ValidationResult: core.ValidationResult{
			Status:   core.ValidationCorrect,
			Feedback: "Looks good",
			Errors:   "None",
		},
		SimulationResult: core.SimulationResult{Status: "success", Output: "ok"},
		Reply:            "ok",
	}
}

func (svc *DummyAdvisor) Validate(context.Context, string, string) core.ValidationResult {
	return svc.ValidationResult
}

func (svc *DummyAdvisor) Simulate(context.Context, string, string) core.SimulationResult {
	return svc.SimulationResult
}

func (svc *DummyAdvisor) Generate(context.Context, string, string) (string, error) {
	return svc.Reply, svc.Err
}

func (svc *DummyAdvisor) Chat(context.Context, []core.ChatMessage) (string, error) {
	return svc.Reply, svc.Err
}
