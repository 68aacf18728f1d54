package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSyncInProgress = errors.New("sync already in progress for source")
)

// FeedError represents a failure fetching or parsing an agency feed
type FeedError struct {
	Agency   string
	URL      string
	Attempts int
	Err      error
}

func (e FeedError) Error() string {
	return fmt.Sprintf("feed error for %s (%s) after %d attempts: %v", e.Agency, e.URL, e.Attempts, e.Err)
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// StoreError represents a persistence failure
type StoreError struct {
	Operation string
	Err       error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Operation, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// DetectorError represents a gap-detection failure for one alert
type DetectorError struct {
	AlertID  string
	Analyzer string
	Err      error
}

func (e DetectorError) Error() string {
	return fmt.Sprintf("detector error in %s for alert %s: %v", e.Analyzer, e.AlertID, e.Err)
}

func (e DetectorError) Unwrap() error {
	return e.Err
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error `json:"errors"`
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

// Add adds an error to the MultiError
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}
