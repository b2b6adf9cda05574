package auth

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound         = errors.New("auth: not found")
	ErrAlreadyExists    = errors.New("auth: already exists")
	ErrInvalidInput     = errors.New("auth: invalid input")
	ErrTooManyAttempts  = errors.New("auth: too many attempts")
	ErrUnknownAlgorithm = errors.New("auth: unknown password algorithm")
)

// FailureKind classifies why an authentication attempt failed.
type FailureKind int

const (
	FailureIdentifierNotFound FailureKind = iota + 1
	FailureCredentialMismatch
	FailureUnderlying
)

func (k FailureKind) String() string {
	switch k {
	case FailureIdentifierNotFound:
		return "identifier_not_found"
	case FailureCredentialMismatch:
		return "credential_mismatch"
	case FailureUnderlying:
		return "underlying_error"
	default:
		return "unknown"
	}
}

const (
	msgInvalidCredentials = "invalid identifier or secret"
	msgGenericFailure     = "authentication failed"
)

// Failure is the only error type returned by providers.
type Failure struct {
	Kind  FailureKind
	Cause error
}

// Sentinels for errors.Is; they match any Failure of the same kind.
var (
	ErrIdentifierNotFound = &Failure{Kind: FailureIdentifierNotFound}
	ErrCredentialMismatch = &Failure{Kind: FailureCredentialMismatch}
	ErrUnderlying         = &Failure{Kind: FailureUnderlying}
)

func newFailure(kind FailureKind, cause error) *Failure {
	return &Failure{Kind: kind, Cause: cause}
}

// PublicMessage is the text safe to show to the caller. Not-found and mismatch share it.
func (f *Failure) PublicMessage() string {
	if f.Kind == FailureUnderlying {
		return msgGenericFailure
	}
	return msgInvalidCredentials
}

func (f *Failure) Error() string {
	if f.Kind == FailureUnderlying && f.Cause != nil {
		return fmt.Sprintf("%s: %v", msgGenericFailure, f.Cause)
	}
	return f.PublicMessage()
}

func (f *Failure) Unwrap() error { return f.Cause }

func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind
}

// GRPCStatus lets grpc/status.FromError translate a failure without leaking its cause.
func (f *Failure) GRPCStatus() *status.Status {
	if f.Kind == FailureUnderlying {
		return status.New(codes.Internal, f.PublicMessage())
	}
	return status.New(codes.Unauthenticated, f.PublicMessage())
}

// KindOf returns the failure kind carried by err, or 0 when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// classify turns any error into a Failure, keeping existing classifications.
func classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, ErrNotFound) {
		return newFailure(FailureIdentifierNotFound, err)
	}
	return newFailure(FailureUnderlying, err)
}
