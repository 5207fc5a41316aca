package usecase

import "fmt"

type ErrorCode string

const (
	ErrorValidation    ErrorCode = "VALIDATION_ERROR"
	ErrorConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrorProvider      ErrorCode = "PROVIDER_ERROR"
)

const (
	msgInvalidMessages = "Invalid or missing messages in request body"
	msgNotInitialized  = "Provider client is not initialized. Check server logs for details."
	msgNoChoices       = "No choices returned from provider"
	msgRequestFailed   = "An error occurred during your request."
)

// Error is returned by RelayService. Message and Details are safe to show to
// callers; Reason and Err stay in logs.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func validationError(reason string, err error) *Error {
	return &Error{Code: ErrorValidation, Reason: reason, Message: msgInvalidMessages, Err: err}
}

func configurationError(err error) *Error {
	return &Error{Code: ErrorConfiguration, Reason: "provider_unconfigured", Message: msgNotInitialized, Err: err}
}

func providerError(reason, message, details string, err error) *Error {
	return &Error{Code: ErrorProvider, Reason: reason, Message: message, Details: details, Err: err}
}
