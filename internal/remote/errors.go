package remote

import (
	"fmt"
	"strings"
	"time"

	"trisetra/internal/services"
)

// Error kinds reported by the client.
const (
	KindTransport = "transport"
	KindRemote    = "remote"
	KindParse     = "parse"
)

// Error is the normalized failure returned for every remote call. Callers
// react to it uniformly; Kind is kept for logging and retry decisions.
type Error struct {
	Kind       string
	Op         string
	StatusCode int
	Message    string
	Err        error

	retryAfter time.Duration
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the services marker matching the error kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindTransport:
		return target == services.ErrTransport
	case KindRemote:
		return target == services.ErrRemote
	case KindParse:
		return target == services.ErrParse
	}
	return false
}

func transportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: err.Error(), Err: err}
}

func parseError(op string, status int, err error) *Error {
	return &Error{
		Kind:       KindParse,
		Op:         op,
		StatusCode: status,
		Message:    fmt.Sprintf("decode response: %v", err),
		Err:        err,
	}
}

func remoteError(op string, status int, message string) *Error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: KindRemote, Op: op, StatusCode: status, Message: message}
}
