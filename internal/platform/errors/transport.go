package errors

// Transport and reply helpers: classify network failures and wrap undecodable reply fragments

import (
	"context"
	stderrs "errors"
	"net"
	"strings"
)

// fragmentLimit bounds the raw reply excerpt carried by a reply-invalid error
const fragmentLimit = 256

// ReplyInvalid wraps a decoding failure and keeps an excerpt of the offending raw fragment
func ReplyInvalid(orig error, fragment []byte, msg string) error {
	return &Error{code: ErrorCodeReplyInvalid, msg: msg, orig: orig, raw: excerpt(fragment)}
}

// Fragment returns the raw reply excerpt attached by ReplyInvalid, if any
func Fragment(err error) string {
	if e, ok := As(err); ok {
		return e.raw
	}
	return ""
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > fragmentLimit {
		return s[:fragmentLimit] + "..."
	}
	return s
}

// FromTransport wraps a connector failure as Unavailable unless it already carries a code
// Returns nil when err is nil
func FromTransport(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(err, ErrorCodeUnavailable, msg)
}

// IsRetryable reports whether a transport error represents a transient condition
// Local cancellations are never retryable; the caller owns higher-level retries
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ne net.Error
	if stderrs.As(err, &ne) && ne.Timeout() {
		return true
	}

	var op *net.OpError
	if stderrs.As(err, &op) {
		return true
	}

	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "connection reset by peer"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "unexpected eof"):
		return true
	}
	return IsCode(err, ErrorCodeUnavailable)
}
