// Package docerr defines the error taxonomy for document control
// operations. Services return these errors; the HTTP layer maps each
// Kind to a status code and response shape.
package docerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a document control failure.
type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindPermissionDenied       Kind = "PERMISSION_DENIED"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindESignatureFailed       Kind = "E_SIGNATURE_FAILED"
	KindContentNotViewed       Kind = "CONTENT_NOT_VIEWED"
	KindLockConflict           Kind = "LOCK_CONFLICT"
	KindLockExpired            Kind = "LOCK_EXPIRED"
	KindConcurrencyConflict    Kind = "CONCURRENCY_CONFLICT"
)

// Error is a classified document control error. The optional fields carry
// conflict detail the transport layer exposes to callers.
type Error struct {
	Kind    Kind
	Message string

	// Set on invalid state transitions.
	CurrentStatus string

	// Set on lock conflicts.
	LockOwner     string
	LockExpiresAt *time.Time

	// Set on concurrency conflicts.
	CurrentFingerprint string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound reports a missing entity.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// PermissionDenied reports an actor lacking the right to act.
func PermissionDenied(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateTransition reports an action illegal from the current status.
func InvalidStateTransition(currentStatus string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:          KindInvalidStateTransition,
		Message:       fmt.Sprintf(format, args...),
		CurrentStatus: currentStatus,
	}
}

// ESignatureFailed reports a failed electronic signature check. The message
// is deliberately generic.
func ESignatureFailed() *Error {
	return &Error{Kind: KindESignatureFailed, Message: "invalid credentials"}
}

// ContentNotViewed reports a decision attempted before opening the content.
func ContentNotViewed(format string, args ...interface{}) *Error {
	return &Error{Kind: KindContentNotViewed, Message: fmt.Sprintf(format, args...)}
}

// LockConflict reports a live edit lock held by another user.
func LockConflict(owner string, expiresAt time.Time, format string, args ...interface{}) *Error {
	return &Error{
		Kind:          KindLockConflict,
		Message:       fmt.Sprintf(format, args...),
		LockOwner:     owner,
		LockExpiresAt: &expiresAt,
	}
}

// LockExpired reports an operation against a lock that has lapsed.
func LockExpired(format string, args ...interface{}) *Error {
	return &Error{Kind: KindLockExpired, Message: fmt.Sprintf(format, args...)}
}

// ConcurrencyConflict reports a stale-fingerprint write.
func ConcurrencyConflict(currentFingerprint string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:               KindConcurrencyConflict,
		Message:            fmt.Sprintf(format, args...),
		CurrentFingerprint: currentFingerprint,
	}
}

// KindOf returns the Kind of err, or "" when err is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError returns err as *Error when it is one.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
