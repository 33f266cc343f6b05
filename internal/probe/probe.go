// Package probe implements the destructive command-injection check. It
// is the only stage that sends attacker-style traffic, and it refuses
// to run unless the safety gate passes.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/models"
	"github.com/vulnpipe/vulnpipe/internal/safety"
)

// DefaultRequestTimeout bounds each individual probe request.
const DefaultRequestTimeout = 10 * time.Second

// snippetCap bounds the response fragment kept as evidence.
const snippetCap = 300

// payloads are appended verbatim to the target URL's query string.
var payloads = []string{";id", "&&id", "|id", "`id`"}

// markers are the command-output fragments that confirm injection.
var markers = []string{"uid=", "gid=", "groups="}

// Outcome is the explicit result variant of one probe attempt.
type Outcome int

const (
	// OutcomeMatched means the response contained a command-output marker.
	OutcomeMatched Outcome = iota
	// OutcomeClean means the request succeeded but showed no marker.
	OutcomeClean
	// OutcomeTimeout means the request exceeded its deadline.
	OutcomeTimeout
	// OutcomeTransportError means the request failed before a response.
	OutcomeTransportError
)

// String renders an outcome for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeClean:
		return "clean"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "transport-error"
	}
}

// Attempt records one payload try against the target.
type Attempt struct {
	Payload string
	URL     string
	Outcome Outcome
	Status  int
	Snippet string
	Err     string
}

// Result is the full outcome of a probe run: every attempt made, plus
// at most one finding when injection was confirmed.
type Result struct {
	Skipped    bool
	SkipReason string
	Attempts   []Attempt
	Finding    *models.Finding
}

// Doer abstracts the HTTP client for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Engine runs command-injection probes against confirmed-controlled
// targets.
type Engine struct {
	client  Doer
	timeout time.Duration
}

// New creates an Engine with the given HTTP client. A nil client gets
// the default one.
func New(client Doer) *Engine {
	if client == nil {
		client = &http.Client{}
	}
	return &Engine{client: client, timeout: DefaultRequestTimeout}
}

// WithTimeout overrides the per-request deadline.
func (e *Engine) WithTimeout(d time.Duration) *Engine {
	e.timeout = d
	return e
}

// Probe attempts command injection via the target URL's query string.
// The safety gate is checked first and a denial skips everything, no
// network traffic at all. Targets without a query string are skipped:
// there is no parameter to inject into. Attempts run in payload order
// and stop at the first confirmed match.
func (e *Engine) Probe(ctx context.Context, runDir, target string, sctx safety.Context) Result {
	if !sctx.Allowed(runDir) {
		return Result{Skipped: true, SkipReason: "destructive probing not allowed for this run"}
	}
	if !strings.Contains(target, "?") {
		return Result{Skipped: true, SkipReason: "target has no query string to inject into"}
	}

	var result Result
	for _, payload := range payloads {
		attempt := e.tryPayload(ctx, target, payload)
		result.Attempts = append(result.Attempts, attempt)

		if attempt.Outcome == OutcomeMatched {
			f := models.NewFinding("rce-command-injection", attempt.URL, models.SeverityCritical,
				"Command injection output detected", models.Source{
					Tool: "probe",
					Raw:  models.RawString(attempt.Snippet),
				})
			f.UsedURL = target
			f.Payload = payload
			f.Destructive = true
			result.Finding = &f
			break
		}
	}
	return result
}

// tryPayload sends a single injected request and classifies the
// response.
func (e *Engine) tryPayload(ctx context.Context, target, payload string) Attempt {
	injected := target + payload
	attempt := Attempt{Payload: payload, URL: injected}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, injected, nil)
	if err != nil {
		attempt.Outcome = OutcomeTransportError
		attempt.Err = err.Error()
		return attempt
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			attempt.Outcome = OutcomeTimeout
		} else {
			attempt.Outcome = OutcomeTransportError
		}
		attempt.Err = err.Error()
		return attempt
	}
	defer resp.Body.Close()

	attempt.Status = resp.StatusCode
	body, err := io.ReadAll(io.LimitReader(resp.Body, models.OutputCap))
	if err != nil {
		attempt.Outcome = OutcomeTransportError
		attempt.Err = fmt.Sprintf("reading response: %v", err)
		return attempt
	}

	text := string(body)
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			attempt.Outcome = OutcomeMatched
			attempt.Snippet = models.Truncate(text, snippetCap)
			return attempt
		}
	}
	attempt.Outcome = OutcomeClean
	return attempt
}
