package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/techstore/storefront-backend/pkg/enums"
)

// Provider-neutral failure codes. They mirror the identity toolkit's client
// error codes so callers can map them to user-facing messages.
const (
	CodeEmailInUse                 = "email-already-in-use"
	CodeOperationNotAllowed        = "operation-not-allowed"
	CodeWeakPassword               = "weak-password"
	CodeTooManyRequests            = "too-many-requests"
	CodeInvalidEmail               = "invalid-email"
	CodeUserDisabled               = "user-disabled"
	CodeUserNotFound               = "user-not-found"
	CodeWrongPassword              = "wrong-password"
	CodeInvalidCredential          = "invalid-credential"
	CodeAccountExistsDifferentCred = "account-exists-with-different-credential"
	CodeUnknown                    = "unknown"
)

// Error is returned by providers for rejected identity operations.
type Error struct {
	Code  string
	cause error
}

func NewError(code string, cause error) *Error {
	return &Error{Code: code, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("identity: %s: %v", e.Code, e.cause)
	}
	return "identity: " + e.Code
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the identity error code from err, or CodeUnknown.
func CodeOf(err error) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return CodeUnknown
}

// Account is the identity returned after a successful sign-up or sign-in.
type Account struct {
	UID         string
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
	Provider    enums.AuthProvider
	IsNewUser   bool
}

// Provider creates and authenticates accounts.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (Account, error)
	SignIn(ctx context.Context, email, password string) (Account, error)
	SignInWithCredential(ctx context.Context, provider enums.AuthProvider, credential string) (Account, error)
}
