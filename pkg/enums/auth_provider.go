package enums

import "fmt"

// AuthProvider identifies how a user authenticated.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
	AuthProviderGitHub   AuthProvider = "github"
)

var validAuthProviders = []AuthProvider{
	AuthProviderPassword,
	AuthProviderGoogle,
	AuthProviderGitHub,
}

// String implements fmt.Stringer.
func (p AuthProvider) String() string {
	return string(p)
}

// IsValid reports whether the value is a known AuthProvider.
func (p AuthProvider) IsValid() bool {
	for _, candidate := range validAuthProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsFederated reports whether the provider signs in through a third party.
func (p AuthProvider) IsFederated() bool {
	return p == AuthProviderGoogle || p == AuthProviderGitHub
}

// ProviderID returns the identity-toolkit provider id for federated providers.
func (p AuthProvider) ProviderID() string {
	switch p {
	case AuthProviderGoogle:
		return "google.com"
	case AuthProviderGitHub:
		return "github.com"
	default:
		return string(p)
	}
}

// ParseAuthProvider converts raw input into an AuthProvider.
func ParseAuthProvider(value string) (AuthProvider, error) {
	for _, candidate := range validAuthProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auth provider %q", value)
}
