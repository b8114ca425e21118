package types

import (
	"errors"
	"fmt"
)

// ValidationError is a local, pre-flight failure. It is never retried
// and no remote call happens before it is reported.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// ErrMissingAvatar is returned when a create-account request carries no
// avatar bytes.
var ErrMissingAvatar = &ValidationError{Field: "avatar", Reason: "an avatar image must be selected"}

// AuthKind classifies identity-service failures into a closed set.
type AuthKind string

const (
	AuthInvalidCredentials   AuthKind = "invalid_credentials"
	AuthAccountAlreadyExists AuthKind = "account_already_exists"
	AuthUnreachable          AuthKind = "unreachable"
	AuthUnknown              AuthKind = "unknown"
)

// AuthError is a classified identity-service error, never a raw
// transport error.
type AuthError struct {
	Kind   AuthKind
	Detail string
	cause  error
}

func NewAuthError(kind AuthKind, detail string, cause error) *AuthError {
	return &AuthError{Kind: kind, Detail: detail, cause: cause}
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("auth: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.cause }

// StorageKind classifies blob-store failures.
type StorageKind string

const (
	StorageQuotaExceeded StorageKind = "quota_exceeded"
	StorageUnreachable   StorageKind = "unreachable"
	StorageNotFound      StorageKind = "not_found"
	StorageUnknown       StorageKind = "unknown"
)

// StorageError is a classified blob-store error.
type StorageError struct {
	Kind   StorageKind
	Detail string
	cause  error
}

func NewStorageError(kind StorageKind, detail string, cause error) *StorageError {
	return &StorageError{Kind: kind, Detail: detail, cause: cause}
}

func (e *StorageError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("storage: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("storage: %s", e.Kind)
}

func (e *StorageError) Unwrap() error { return e.cause }

// PersistKind classifies profile-store failures.
type PersistKind string

const (
	PersistUnreachable      PersistKind = "unreachable"
	PersistPermissionDenied PersistKind = "permission_denied"
	PersistUnknown          PersistKind = "unknown"
)

// PersistError is a classified profile-store error.
type PersistError struct {
	Kind   PersistKind
	Detail string
	cause  error
}

func NewPersistError(kind PersistKind, detail string, cause error) *PersistError {
	return &PersistError{Kind: kind, Detail: detail, cause: cause}
}

func (e *PersistError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("persist: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("persist: %s", e.Kind)
}

func (e *PersistError) Unwrap() error { return e.cause }

// AsAuthError extracts an *AuthError from err, if any.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	ok := errors.As(err, &ae)
	return ae, ok
}

// AsStorageError extracts a *StorageError from err, if any.
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	ok := errors.As(err, &se)
	return se, ok
}

// AsPersistError extracts a *PersistError from err, if any.
func AsPersistError(err error) (*PersistError, bool) {
	var pe *PersistError
	ok := errors.As(err, &pe)
	return pe, ok
}
