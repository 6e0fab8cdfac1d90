// package testing contains shared testing utilities
package testing

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockRoundTripper returns the same response (or error) for every request.
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// ScriptedStep is one round trip in a [ScriptedRoundTripper] sequence.
type ScriptedStep struct {
	Response *http.Response
	Err      error
}

// ScriptedRoundTripper replays a fixed sequence of responses and records the
// requests it saw. Repeats the final step once the script is exhausted.
type ScriptedRoundTripper struct {
	mu       sync.Mutex
	steps    []ScriptedStep
	Requests []*http.Request
}

func NewScriptedRoundTripper(steps ...ScriptedStep) *ScriptedRoundTripper {
	return &ScriptedRoundTripper{steps: steps}
}

func (s *ScriptedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)

	idx := len(s.Requests) - 1
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}

	step := s.steps[idx]
	return step.Response, step.Err
}

// Count returns the number of requests seen so far.
func (s *ScriptedRoundTripper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// NewJSONResponse builds an [http.Response] with a JSON body for use in
// round-tripper doubles. Each call returns a fresh body reader.
func NewJSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
