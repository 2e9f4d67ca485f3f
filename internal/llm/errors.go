package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindUnavailable covers network failures and vendor 5xx replies.
	KindUnavailable ErrorKind = iota
	KindRateLimited
	// KindInvalid is a reply that is not valid JSON or breaks the schema.
	KindInvalid
	// KindTruncated is a structured reply cut off at MaxTokens.
	KindTruncated
	// KindRejected is a 4xx other than 429, e.g. a bad key or model.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalid:
		return "invalid response"
	case KindTruncated:
		return "truncated response"
	case KindRejected:
		return "request rejected"
	}
	return "provider unavailable"
}

// Error is returned by every Provider in this package.
type Error struct {
	Kind ErrorKind

	// RetryAfter is the wait the vendor asked for, if any.
	RetryAfter time.Duration

	// Content is the offending reply for KindInvalid and KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "llm: " + e.Kind.String()
	}
	return fmt.Sprintf("llm: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same request may succeed later.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindUnavailable, KindRateLimited, KindInvalid:
		return true
	}
	return false
}

// KindOf returns the kind of an *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// fromStatus maps a vendor HTTP status to an *Error.
func fromStatus(status int, err error) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Err: err}
	case status >= 400 && status < 500:
		return &Error{Kind: KindRejected, Err: err}
	}
	return &Error{Kind: KindUnavailable, Err: err}
}

func invalid(content json.RawMessage, format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Content: content, Err: fmt.Errorf(format, args...)}
}
