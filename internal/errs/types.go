// Package errs defines the typed errors that the HTTP layer maps to status codes.
package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// LoadError reports a failed dataset fetch or parse. Nothing is memoized for
// a failed load.
type LoadError struct {
	ErrorMessage
	Dataset string
	Err     error
}

func (e *LoadError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewLoadError(dataset string, err error) *LoadError {
	return &LoadError{
		ErrorMessage: ErrorMessage{Message: "load " + dataset + " dataset: " + err.Error()},
		Dataset:      dataset,
		Err:          err,
	}
}
