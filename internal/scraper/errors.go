package scraper

import (
	"fmt"
)

// TransportError is a network, timeout or HTTP status failure. Transport
// errors are retried.
type TransportError struct {
	URL        string
	StatusCode int // Zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProcessingError is a failure after a page was fetched successfully, such
// as a body that cannot be decoded or parsed. Processing errors are never
// retried.
type ProcessingError struct {
	URL string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.URL, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
