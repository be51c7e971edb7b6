// Package testkit provides test doubles for MapStack's backend calls.
//
// The central piece is MockTransport, an http.RoundTripper that matches
// outgoing requests against programmatic MockSteps and returns synthetic
// responses instead of touching the network. Install it on the shared
// client before the test:
//
//	mt := testkit.NewMockTransport(
//	    testkit.MockStep{Method: "GET", MatchURL: "/api/products", Status: 200, Body: `{"products":[]}`},
//	)
//	mapstackhttp.DefaultClient.Transport = mt
//	defer mapstackhttp.ResetTransport()
//	// ... run test ...
//	testkit.AssertMocksAllCalled(t, mt)
package testkit

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockStep describes one expected outgoing request and the canned response
// it should receive.
type MockStep struct {
	// Method matches the HTTP method exactly. Empty matches any method.
	Method string

	// MatchURL is matched as a prefix against the request URL's path (or the
	// full URL when it starts with "http"). Empty matches any URL.
	MatchURL string

	// Status is the response code. Zero means 200.
	Status int

	// Body is the raw response body. JSON content type is assumed unless
	// ContentType overrides it.
	Body string

	// ContentType overrides the response Content-Type header.
	ContentType string

	// Optional indicates the step may go uncalled without failing
	// AssertMocksAllCalled.
	Optional bool
}

// MockTransport implements http.RoundTripper over a list of MockSteps.
// Steps are matched in order; the first match wins and may match again on
// later calls.
type MockTransport struct {
	mu    sync.Mutex
	steps []mockEntry

	// Strict makes RoundTrip error on any request no step matches.
	// Default is a synthetic 404.
	Strict bool
}

type mockEntry struct {
	step      MockStep
	callCount int
}

// NewMockTransport builds a MockTransport from the given steps.
func NewMockTransport(steps ...MockStep) *MockTransport {
	mt := &MockTransport{Strict: true}
	for _, s := range steps {
		mt.steps = append(mt.steps, mockEntry{step: s})
	}
	return mt
}

// RoundTrip intercepts the outgoing request and returns a synthetic response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for i := range mt.steps {
		entry := &mt.steps[i]
		if !stepMatches(entry.step, req) {
			continue
		}

		entry.callCount++
		return buildResponse(req, entry.step), nil
	}

	if mt.Strict {
		return nil, fmt.Errorf("testkit: unexpected outgoing %s %s, no matching mock step", req.Method, req.URL)
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader(`{"message":"no mock configured"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// CallCount returns how many times the i-th step was matched.
func (mt *MockTransport) CallCount(i int) int {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if i < 0 || i >= len(mt.steps) {
		return 0
	}
	return mt.steps[i].callCount
}

// UncalledSteps returns an error per required step that was never matched.
func (mt *MockTransport) UncalledSteps() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		if !e.step.Optional && e.callCount == 0 {
			errs = append(errs, fmt.Errorf(
				"testkit: mock step %s %q was never called",
				e.step.Method, e.step.MatchURL,
			))
		}
	}
	return errs
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func stepMatches(s MockStep, req *http.Request) bool {
	if s.Method != "" && !strings.EqualFold(s.Method, req.Method) {
		return false
	}
	if s.MatchURL == "" {
		return true
	}
	if strings.HasPrefix(s.MatchURL, "http") {
		return strings.HasPrefix(req.URL.String(), s.MatchURL)
	}
	return strings.HasPrefix(req.URL.Path, s.MatchURL)
}

func buildResponse(req *http.Request, s MockStep) *http.Response {
	code := s.Status
	if code == 0 {
		code = http.StatusOK
	}

	contentType := s.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	header := make(http.Header)
	header.Set("Content-Type", contentType)

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(s.Body)),
		Request:    req,
	}
}
