// Package errors provides centralized error definitions for the application.
// Errors are grouped by the stage that raises them.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Report matching errors.
var (
	// ErrNoCandidates indicates the scraped table held no usable report names.
	ErrNoCandidates = errors.New("no report candidates found")

	// ErrAmbiguousMatch indicates several reports match and nobody can choose.
	ErrAmbiguousMatch = errors.New("ambiguous report match")

	// ErrInvalidSelection indicates a selection index outside the offered list.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrSelectionCancelled indicates the operator declined every offered report.
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Browser automation errors.
var (
	// ErrLoginFailed indicates the SSO flow did not reach the application.
	ErrLoginFailed = errors.New("login failed")

	// ErrElementNotFound indicates none of the candidate selectors matched.
	ErrElementNotFound = errors.New("element not found")

	// ErrDownloadFailed indicates the report file never arrived.
	ErrDownloadFailed = errors.New("download failed")
)

// Spreadsheet errors.
var (
	// ErrSheetNotFound indicates a tab is missing from the spreadsheet.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrMissingCredentials indicates no service account credentials were supplied.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrUnsupportedFormat indicates a downloaded report in an unknown format.
	ErrUnsupportedFormat = errors.New("unsupported report format")
)

// Model errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrClassifierUnavailable indicates the semantic classifier could not be initialised.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)

// Run control errors.
var (
	// ErrRunInProgress indicates an automation run is already active.
	ErrRunInProgress = errors.New("run already in progress")

	// ErrNoRunInProgress indicates there is no active run to act on.
	ErrNoRunInProgress = errors.New("no run in progress")

	// ErrRunAborted indicates a run ended without reporting an outcome.
	ErrRunAborted = errors.New("run aborted")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
