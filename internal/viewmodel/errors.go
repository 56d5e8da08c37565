package viewmodel

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a fetch failed. All kinds collapse into PhaseFailed.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network" // request never completed
	KindHTTP    ErrorKind = "http"    // status outside 2xx
	KindDecode  ErrorKind = "decode"  // body is not valid JSON or fails strict validation
)

// FetchError is returned by Fetcher implementations.
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

// Error returns the message shown to the user.
func (e *FetchError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Message reduces any fetch error to the single-line text stored in PhaseFailed.
func Message(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return err.Error()
}

// KindOf returns the failure kind; unclassified errors count as network failures.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}
