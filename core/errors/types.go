// ABOUTME: Custom error types for feed ingestion and fetch resilience
// ABOUTME: Separates retryable fetch failures from terminal and data-shape errors

package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error on a single input field
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an unexpected response from a remote server
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// FieldIssue is one violation found while validating a document
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SchemaError lists every violation found by a strict parser.
// Data-shape errors are never retryable.
type SchemaError struct {
	Schema string
	Issues []FieldIssue
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return fmt.Sprintf("invalid %s document: %s", e.Schema, strings.Join(parts, "; "))
}

// Retryable implements Retryer
func (e *SchemaError) Retryable() bool { return false }

// Paths returns the offending field paths in order
func (e *SchemaError) Paths() []string {
	paths := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		paths = append(paths, issue.Path)
	}
	return paths
}

// RateLimitError reports a domain in cool-down
type RateLimitError struct {
	URL string
	// RetryAfter is the remaining cool-down when known, zero otherwise
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: %s (retry after %s)", e.URL, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited: %s", e.URL)
}

// Retryable implements Retryer
func (e *RateLimitError) Retryable() bool { return true }

// GuardedPageError reports a fetched body that matched a bot-defense signature
type GuardedPageError struct {
	URL       string
	Signature string
}

// Error implements the error interface
func (e *GuardedPageError) Error() string {
	return fmt.Sprintf("guarded page %s (%s)", e.URL, e.Signature)
}

// Retryable implements Retryer
func (e *GuardedPageError) Retryable() bool { return false }

// GuardedURLError reports a URL that matched a bot-defense signature
type GuardedURLError struct {
	URL       string
	Signature string
}

// Error implements the error interface
func (e *GuardedURLError) Error() string {
	return fmt.Sprintf("guarded url %s (%s)", e.URL, e.Signature)
}

// Retryable implements Retryer
func (e *GuardedURLError) Retryable() bool { return false }

// Retryer is implemented by errors that carry an explicit retry decision
type Retryer interface {
	Retryable() bool
}

// IsRetryable reports whether err explicitly asks to be retried
func IsRetryable(err error) bool {
	var r Retryer
	return errors.As(err, &r) && r.Retryable()
}

// IsTerminal reports whether err explicitly forbids a retry
func IsTerminal(err error) bool {
	var r Retryer
	return errors.As(err, &r) && !r.Retryable()
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsSchema checks if an error is a SchemaError
func IsSchema(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsRateLimited checks if an error is a RateLimitError
func IsRateLimited(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// IsGuarded checks if an error is a GuardedPageError or GuardedURLError
func IsGuarded(err error) bool {
	var pageErr *GuardedPageError
	var urlErr *GuardedURLError
	return errors.As(err, &pageErr) || errors.As(err, &urlErr)
}

// GuardSignature returns the signature name carried by a guard error
func GuardSignature(err error) (string, bool) {
	var pageErr *GuardedPageError
	if errors.As(err, &pageErr) {
		return pageErr.Signature, true
	}
	var urlErr *GuardedURLError
	if errors.As(err, &urlErr) {
		return urlErr.Signature, true
	}
	return "", false
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
