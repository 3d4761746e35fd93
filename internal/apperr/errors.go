// Package apperr defines application error kinds and central error handling.
package apperr

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes, one per failure kind of the order flow.
const (
	CodeInvalidInput = "E100" // input fails validation for the current step
	CodeOutOfStep    = "E110" // event type is valid but arrived in the wrong step
	CodeLocked       = "E120" // a previous event for the same user is still processing
	CodePersistence  = "E200" // client or order write failed
	CodeRendering    = "E300" // receipt document generation failed
	CodeDelivery     = "E310" // receipt email could not be sent
)

// AppError carries both an operator-facing message and a user-facing one.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewInvalidInput reports input rejected by the current step. The session is
// left unchanged and the user message tells them how to proceed.
func NewInvalidInput(userMsg string) *AppError {
	return &AppError{
		Code:        CodeInvalidInput,
		Message:     "invalid input for current step",
		UserMessage: userMsg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewOutOfStep reports an event that belongs to a different step of the flow.
func NewOutOfStep(userMsg string) *AppError {
	return &AppError{
		Code:        CodeOutOfStep,
		Message:     "event does not match current step",
		UserMessage: userMsg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewLocked reports that a concurrent event for the same user holds the
// session lock.
func NewLocked(userMsg string) *AppError {
	return &AppError{
		Code:        CodeLocked,
		Message:     "session is locked by a concurrent event",
		UserMessage: userMsg,
		Severity:    SeverityLow,
		Retryable:   true,
	}
}

// NewPersistence wraps a failed client or order write. Retryable: the user may
// re-submit their email and the pipeline will run again.
func NewPersistence(userMsg string, cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodePersistence,
		Message:     fmt.Sprintf("persistence failure: %s", underlyingMsg),
		UserMessage: userMsg,
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewRendering wraps a receipt generation failure. This signals a defect, not
// user error, so severity is critical and the user message stays generic.
func NewRendering(userMsg string, cause error) *AppError {
	return &AppError{
		Code:        CodeRendering,
		Message:     "receipt rendering failure",
		UserMessage: userMsg,
		Severity:    SeverityCritical,
		Retryable:   false,
		cause:       cause,
	}
}

// NewDelivery wraps a failed receipt email. The order is already recorded, so
// this is reported distinctly from persistence failures.
func NewDelivery(userMsg string, cause error) *AppError {
	return &AppError{
		Code:        CodeDelivery,
		Message:     "receipt delivery failure",
		UserMessage: userMsg,
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}
