package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when the user text is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrDispatchInFlight is returned by Send while another request is outstanding.
	ErrDispatchInFlight = errors.New("a message is already being sent")

	// ErrRateLimited marks both the local cooldown rejection and a remote
	// usage-threshold response. Completion errors wrapping it close the gate.
	ErrRateLimited = errors.New("rate limited")

	// ErrDispatchTimeout is wrapped when the completion call exceeds RequestTimeout.
	ErrDispatchTimeout = errors.New("completion request timed out")

	// ErrNoHistorySource is returned when LoadHistory has nothing to call.
	ErrNoHistorySource = errors.New("no history source configured")
)

// DispatchError reports a failed completion call
type DispatchError struct {
	RequestID string
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("failed to send message: %v", e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// HistoryLoadError reports a failed conversation history call
type HistoryLoadError struct {
	Err error
}

func (e *HistoryLoadError) Error() string {
	return fmt.Sprintf("failed to load conversation history: %v", e.Err)
}

func (e *HistoryLoadError) Unwrap() error {
	return e.Err
}
