// ABOUTME: Ordered fetch steps sharing one mutable attempt and an explicit continuation
// ABOUTME: Each step either finishes the attempt with an error or hands it to the next step

package fetch

import (
	"context"
	"errors"
	"net/http"

	"digests-ingest/core/interfaces"
)

// ErrNoResult is returned when every step delegated but none produced a response
var ErrNoResult = errors.New("fetch: no step produced a result")

// Result is a fully read response
type Result struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	FinalURL   string      `json:"final_url"`
	// Cached is set when the result came from the response cache
	Cached bool `json:"-"`
}

// Attempt is the per-fetch context passed through every step
type Attempt struct {
	URL    string
	Result *Result
}

// Next continues the attempt with the remaining steps
type Next func(ctx context.Context, a *Attempt) error

// Step is one named stage of the pipeline.
// A step that produces a result must do nothing when a.Result is already set.
type Step struct {
	Name string
	Run  func(ctx context.Context, a *Attempt, next Next) error
}

// Pipeline runs steps in order for each fetch
type Pipeline struct {
	steps  []Step
	logger interfaces.Logger
}

// NewPipeline creates a pipeline from steps in execution order
func NewPipeline(logger interfaces.Logger, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, logger: logger}
}

// StepNames returns the configured step names in order
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		names = append(names, s.Name)
	}
	return names
}

// Execute runs every step for url and returns the produced result
func (p *Pipeline) Execute(ctx context.Context, url string) (*Result, error) {
	attempt := &Attempt{URL: url}
	if err := p.run(ctx, attempt, 0); err != nil {
		return nil, err
	}
	if attempt.Result == nil {
		return nil, ErrNoResult
	}
	return attempt.Result, nil
}

func (p *Pipeline) run(ctx context.Context, a *Attempt, i int) error {
	if i >= len(p.steps) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	step := p.steps[i]
	var downstream error
	err := step.Run(ctx, a, func(ctx context.Context, a *Attempt) error {
		downstream = p.run(ctx, a, i+1)
		return downstream
	})
	// only the step that raised the error logs it
	if err != nil && !errors.Is(err, downstream) && p.logger != nil {
		p.logger.Debug("Fetch step stopped attempt", map[string]interface{}{
			"step":  step.Name,
			"url":   a.URL,
			"error": err.Error(),
		})
	}
	return err
}
