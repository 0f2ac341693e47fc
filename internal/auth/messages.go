package auth

import (
	"github.com/techstore/storefront-backend/pkg/enums"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/identity"
)

type flow int

const (
	flowSignUp flow = iota
	flowSignIn
)

var signUpMessages = map[string]string{
	identity.CodeEmailInUse:                 "An account with this email already exists.",
	identity.CodeInvalidEmail:               "Invalid email address.",
	identity.CodeOperationNotAllowed:        "Email/password accounts are not enabled.",
	identity.CodeWeakPassword:               "Password is too weak.",
	identity.CodeTooManyRequests:            "Too many attempts. Please try again later.",
	identity.CodeAccountExistsDifferentCred: "An account already exists with the same email but different sign-in method.",
}

var signInMessages = map[string]string{
	identity.CodeInvalidEmail:               "Invalid email address.",
	identity.CodeUserDisabled:               "This account has been disabled.",
	identity.CodeUserNotFound:               "No account found with this email.",
	identity.CodeWrongPassword:              "Incorrect password.",
	identity.CodeInvalidCredential:          "Incorrect password.",
	identity.CodeTooManyRequests:            "Too many failed attempts. Please try again later.",
	identity.CodeAccountExistsDifferentCred: "An account already exists with the same email but different sign-in method.",
}

var codeByIdentityError = map[string]pkgerrors.Code{
	identity.CodeEmailInUse:                 pkgerrors.CodeConflict,
	identity.CodeAccountExistsDifferentCred: pkgerrors.CodeConflict,
	identity.CodeInvalidEmail:               pkgerrors.CodeValidation,
	identity.CodeWeakPassword:               pkgerrors.CodeValidation,
	identity.CodeOperationNotAllowed:        pkgerrors.CodeForbidden,
	identity.CodeUserDisabled:               pkgerrors.CodeForbidden,
	identity.CodeTooManyRequests:            pkgerrors.CodeRateLimit,
	identity.CodeUserNotFound:               pkgerrors.CodeUnauthorized,
	identity.CodeWrongPassword:              pkgerrors.CodeUnauthorized,
	identity.CodeInvalidCredential:          pkgerrors.CodeUnauthorized,
}

// errorMessage returns the user-facing message for an identity error code.
func errorMessage(f flow, code string) string {
	messages := signInMessages
	fallback := "Failed to sign in. Please try again."
	if f == flowSignUp {
		messages = signUpMessages
		fallback = "Failed to create account. Please try again."
	}
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fallback
}

// mapIdentityError turns a provider failure into a typed error carrying the
// user-facing message.
func mapIdentityError(f flow, err error) error {
	code := identity.CodeOf(err)
	errCode, ok := codeByIdentityError[code]
	if !ok {
		errCode = pkgerrors.CodeDependency
	}
	return pkgerrors.Wrap(errCode, err, errorMessage(f, code))
}

func unsupportedProvider(p enums.AuthProvider) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "unsupported sign-in provider "+string(p))
}
