package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/registrar/internal/protocol"
	"github.com/roach88/registrar/internal/registrar"
	"github.com/roach88/registrar/internal/server"
)

// Harness executes scenarios against an engine through the real
// session dispatcher.
type Harness struct {
	dispatcher *server.Dispatcher
}

// New creates a harness over the given engine.
func New(eng *registrar.Engine) *Harness {
	return &Harness{dispatcher: server.NewDispatcher(eng)}
}

// StepResult records one flow step's response and any expectation
// failures.
type StepResult struct {
	Command  string
	Response protocol.Response
	Failures []string
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string
	Steps    []StepResult
}

// Failures collects every expectation failure across all steps.
func (r *Result) Failures() []string {
	var all []string
	for i, step := range r.Steps {
		for _, f := range step.Failures {
			all = append(all, fmt.Sprintf("step %d (%s): %s", i+1, step.Command, f))
		}
	}
	return all
}

// Transcript returns the flow's responses in order.
func (r *Result) Transcript() []protocol.Response {
	responses := make([]protocol.Response, len(r.Steps))
	for i, step := range r.Steps {
		responses[i] = step.Response
	}
	return responses
}

// RunScenario executes setup then flow. Setup failures abort the run
// with an error; flow expectation mismatches are recorded in the
// result, not returned as errors.
func (h *Harness) RunScenario(ctx context.Context, sc *Scenario) (*Result, error) {
	for i, step := range sc.Setup {
		req, err := stepRequest(step)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: setup step %d: %w", sc.Name, i+1, err)
		}
		resp := h.dispatcher.Dispatch(ctx, req)
		if resp.Status != protocol.StatusSuccess {
			return nil, fmt.Errorf("scenario %s: setup step %d (%s) failed: %s",
				sc.Name, i+1, step.Command, resp.Message)
		}
	}

	result := &Result{Scenario: sc.Name}
	for i, step := range sc.Flow {
		req, err := stepRequest(step)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: flow step %d: %w", sc.Name, i+1, err)
		}
		resp := h.dispatcher.Dispatch(ctx, req)
		result.Steps = append(result.Steps, StepResult{
			Command:  step.Command,
			Response: resp,
			Failures: checkExpect(step.Expect, resp),
		})
	}
	return result, nil
}

// stepRequest builds a wire request from a step's args map by going
// through the protocol's own JSON decoding, so scenarios use exactly
// the wire field names.
func stepRequest(step Step) (protocol.Request, error) {
	args := step.Args
	if args == nil {
		args = map[string]interface{}{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return protocol.Request{}, fmt.Errorf("marshal args: %w", err)
	}

	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return protocol.Request{}, fmt.Errorf("decode args: %w", err)
	}
	req.Command = step.Command
	return req, nil
}

// checkExpect compares a response against an expectation.
func checkExpect(expect *Expect, resp protocol.Response) []string {
	if expect == nil {
		return nil
	}

	var failures []string
	if expect.Status != "" && resp.Status != expect.Status {
		failures = append(failures, fmt.Sprintf(
			"status = %q, want %q (message: %s)", resp.Status, expect.Status, resp.Message))
	}
	if expect.Code != "" && resp.Code != expect.Code {
		failures = append(failures, fmt.Sprintf(
			"code = %q, want %q (message: %s)", resp.Code, expect.Code, resp.Message))
	}
	return failures
}
