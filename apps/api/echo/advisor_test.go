package echoapi

import (
	"net/http"
	"testing"

	"github.com/kostask/taskboard/core"
)

func TestAdvisorValidate(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedStudent(t, deps, "Yamuna", "3rd Class")
	tsk := seedTask(t, deps, []string{"Yamuna"}, []string{"3rd Class"})

	tests := []struct {
		desc              string
		result            core.ValidationResult
		wantSubmitEnabled bool
	}{
		{
			desc:              "correct code unlocks submission",
			result:            core.ValidationResult{Status: core.ValidationCorrect, Feedback: "Looks good", Errors: "None"},
			wantSubmitEnabled: true,
		},
		{
			desc:              "partially correct code stays locked",
			result:            core.ValidationResult{Status: core.ValidationPartiallyCorrect, Feedback: "Almost", Errors: "Missing delay"},
			wantSubmitEnabled: false,
		},
		{
			desc:              "advisor outage stays locked",
			result:            core.ValidationResult{Status: core.ValidationStatusError, Feedback: "Validation error: timeout", Errors: "API error"},
			wantSubmitEnabled: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			deps.advisor.ValidationResult = tc.result

			req, rec := newAuthRequest(http.MethodPost, "/v1/advisor/validate", token, marshallObj(t, ValidateRequest{
				TaskID: tsk.ID,
				Code:   "void loop() {}",
			}))
			srv.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("validate returned %d; body %s", rec.Code, rec.Body.String())
			}
			var resp struct {
				ValidationResult string `json:"validation_result"`
				Feedback         string `json:"feedback"`
				Errors           string `json:"errors"`
				SubmitEnabled    bool   `json:"submit_enabled"`
			}
			decodeBody(t, rec, &resp)
			if resp.ValidationResult != tc.result.Status {
				t.Errorf("validation_result = %q; want %q", resp.ValidationResult, tc.result.Status)
			}
			if resp.Feedback != tc.result.Feedback {
				t.Errorf("feedback = %q; want %q", resp.Feedback, tc.result.Feedback)
			}
			if resp.SubmitEnabled != tc.wantSubmitEnabled {
				t.Errorf("submit_enabled = %t; want %t", resp.SubmitEnabled, tc.wantSubmitEnabled)
			}
		})
	}
}

func TestAdvisorValidateUnknownTask(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedStudent(t, deps, "Yamuna", "3rd Class")

	req, rec := newAuthRequest(http.MethodPost, "/v1/advisor/validate", token, marshallObj(t, ValidateRequest{
		TaskID: "nope",
		Code:   "void loop() {}",
	}))
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("validate returned %d; want %d; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
	}
}

func TestAdvisorSimulate(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedStudent(t, deps, "Yamuna", "3rd Class")
	deps.advisor.SimulationResult = core.SimulationResult{Status: "success", Output: "LED blinks every second"}

	req, rec := newAuthRequest(http.MethodPost, "/v1/advisor/simulate", token, marshallObj(t, SimulateRequest{
		Code: "void loop() {}",
	}))
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("simulate returned %d; body %s", rec.Code, rec.Body.String())
	}
	var resp core.SimulationResult
	decodeBody(t, rec, &resp)
	if resp.Status != "success" || resp.Output != "LED blinks every second" {
		t.Errorf("simulate returned %+v", resp)
	}
}

func TestAdvisorGenerateAndChat(t *testing.T) {
	srv, deps := setupServer(t)
	_, token := seedTeacher(t, deps, "Yamuna", false, false)
	deps.advisor.Reply = "print('hello')"

	req, rec := newAuthRequest(http.MethodPost, "/v1/advisor/generate", token, marshallObj(t, GenerateRequest{
		Prompt: "hello world",
	}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate returned %d; body %s", rec.Code, rec.Body.String())
	}
	var genResp map[string]string
	decodeBody(t, rec, &genResp)
	if genResp["code"] != "print('hello')" {
		t.Errorf("generate code = %q; want %q", genResp["code"], "print('hello')")
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/advisor/chat", token, marshallObj(t, ChatRequest{
		Messages: []core.ChatMessage{{Role: "user", Content: "hi"}},
	}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat returned %d; body %s", rec.Code, rec.Body.String())
	}
	var chatResp map[string]string
	decodeBody(t, rec, &chatResp)
	if chatResp["reply"] != "print('hello')" {
		t.Errorf("chat reply = %q; want %q", chatResp["reply"], "print('hello')")
	}

	// an empty chat is rejected before it reaches the advisor
	req, rec = newAuthRequest(http.MethodPost, "/v1/advisor/chat", token, marshallObj(t, ChatRequest{}))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty chat returned %d; want %d", rec.Code, http.StatusBadRequest)
	}
}
