package client

import "fmt"

// ErrServiceUnavailable indicates the service kept failing (5xx or no
// response at all) after every retry. Message is the service's own error
// text when it sent one; it is then shown as is.
type ErrServiceUnavailable struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *ErrServiceUnavailable) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("exam service is unreachable, try again later: %v", e.Err)
	default:
		return fmt.Sprintf("exam service is busy, try again later (status %d)", e.StatusCode)
	}
}

func (e *ErrServiceUnavailable) Unwrap() error { return e.Err }

// ErrRequestFailed is a 4xx answer from the service. Message is the text of
// the error envelope.
type ErrRequestFailed struct {
	StatusCode int
	Message    string
}

func (e *ErrRequestFailed) Error() string {
	return e.Message
}
