package advisorsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kostask/taskboard/core"
)

const validateSystemPrompt = `You are an expert code validation assistant.
Your task is to validate student code against task requirements.
Provide detailed feedback on any issues found.`

const arduinoSimulateSystemPrompt = `You are an Arduino compiler and interpreter. Analyze the following Arduino code and provide feedback on any errors, warnings, or issues.
If the code is correct, simulate the output that would be printed to the serial monitor.

Provide your response in the following format:
If there are errors:
ERROR: [error message]
If there are no errors:
SUCCESS: [simulated output]

Do not provide corrected code. Only provide the error message or the simulated output.`

const pythonSimulateSystemPrompt = `You are a Python interpreter. Analyze the following Python code and provide feedback on any errors, warnings, or issues.
If the code is correct, simulate the output that would be printed to the console.

Provide your response in the following format:
If there are errors:
ERROR: [error message]
If there are no errors:
SUCCESS: [simulated output]

Do not provide corrected code. Only provide the error message or the simulated output.`

type (
	openRouterService struct {
		conf   core.OpenRouterConfig
		client *http.Client
		logger core.Logger
	}

	completionRequest struct {
		Model    string             `json:"model"`
		Messages []core.ChatMessage `json:"messages"`
	}

	completionResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
)

var _ core.CodeAdvisor = (*openRouterService)(nil)

func NewOpenRouterService(conf *core.Config, logger core.Logger) *openRouterService {
	return &openRouterService{
		conf:   conf.OpenRouter,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// complete posts a chat completion and returns the first choice, trimmed.
func (svc *openRouterService) complete(ctx context.Context, messages []core.ChatMessage) (string, error) {
	body, err := json.Marshal(completionRequest{Model: svc.conf.Model, Messages: messages})
	if err != nil {
		return "", errors.Wrap(err, "encoding completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.conf.ApiURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "creating completion request")
	}
	req.Header.Set("Authorization", "Bearer "+svc.conf.ApiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", svc.conf.Referer)
	req.Header.Set("X-Title", "TaskBoard")

	res, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "posting completion request")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("completion request failed: status %d", res.StatusCode)
	}

	var cres completionResponse
	if err := json.NewDecoder(res.Body).Decode(&cres); err != nil {
		return "", errors.Wrap(err, "decoding completion response")
	}
	if len(cres.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return strings.TrimSpace(cres.Choices[0].Message.Content), nil
}

func (svc *openRouterService) Validate(ctx context.Context, code, taskDescription string) core.ValidationResult {
	userPrompt := fmt.Sprintf(`
Task Description: %s
Student Code:
%s
Please validate if the above code is correct, partially correct, or incorrect.
Provide detailed feedback on any errors, syntax issues, or missing requirements.

Respond with:
1. Validation status: "Correct", "Partially Correct", or "Incorrect"
2. Detailed feedback explaining the issues (if any)
3. Specific error messages (if applicable)

Format your response as:
Status: [Validation Status]
Feedback: [Detailed feedback]
Errors: [Specific error messages or "None"]
`, taskDescription, code)

	result, err := svc.complete(ctx, []core.ChatMessage{
		{Role: "system", Content: validateSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("advisor validation: %v", err), err)
		return core.ValidationResult{
			Status:   core.ValidationStatusError,
			Feedback: fmt.Sprintf("Validation error: %v", err),
			Errors:   "API error",
		}
	}

	// Default hard when the advisor ignores the response format.
	vres := core.ValidationResult{
		Status:   core.ValidationIncorrect,
		Feedback: "No feedback provided",
		Errors:   "None",
	}
	for _, line := range strings.Split(result, "\n") {
		switch {
		case strings.HasPrefix(line, "Status:"):
			vres.Status = strings.TrimSpace(strings.TrimPrefix(line, "Status:"))
		case strings.HasPrefix(line, "Feedback:"):
			vres.Feedback = strings.TrimSpace(strings.TrimPrefix(line, "Feedback:"))
		case strings.HasPrefix(line, "Errors:"):
			vres.Errors = strings.TrimSpace(strings.TrimPrefix(line, "Errors:"))
		}
	}
	return vres
}

func (svc *openRouterService) Simulate(ctx context.Context, code, language string) core.SimulationResult {
	systemPrompt := pythonSimulateSystemPrompt
	if language == "arduino" {
		systemPrompt = arduinoSimulateSystemPrompt
	}

	result, err := svc.complete(ctx, []core.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Code:\n" + code},
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("advisor simulation: %v", err), err)
		return core.SimulationResult{Status: "error", Output: fmt.Sprintf("Simulation failed: %v", err)}
	}

	switch {
	case strings.HasPrefix(result, "ERROR:"):
		return core.SimulationResult{Status: "error", Output: strings.TrimSpace(strings.TrimPrefix(result, "ERROR:"))}
	case strings.HasPrefix(result, "SUCCESS:"):
		return core.SimulationResult{Status: "success", Output: strings.TrimSpace(strings.TrimPrefix(result, "SUCCESS:"))}
	}
	return core.SimulationResult{Status: "error", Output: "Unexpected response from AI: " + result}
}

func (svc *openRouterService) Generate(ctx context.Context, prompt, language string) (string, error) {
	systemPrompt := fmt.Sprintf(`
You are an expert %s programmer and educator.
Generate clean, well-commented code that solves the user's request.
Focus on educational value and best practices.
Only provide the code without explanations unless specifically asked.
`, language)

	return svc.complete(ctx, []core.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
}

func (svc *openRouterService) Chat(ctx context.Context, messages []core.ChatMessage) (string, error) {
	return svc.complete(ctx, messages)
}
