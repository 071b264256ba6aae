package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrorUpstreamSearch ErrorCode = "UPSTREAM_SEARCH"
	ErrorUpstreamOpenAI ErrorCode = "UPSTREAM_OPENAI"
	ErrorInternal       ErrorCode = "INTERNAL_ERROR"
)

// Error is the pipeline's tagged failure. Detail carries the verbatim
// upstream response body when the completion backend rejected the call, so
// the handler can surface it without re-parsing the wrapped error.
type Error struct {
	Code   ErrorCode
	Reason string
	Detail string
	Err    error
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

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
