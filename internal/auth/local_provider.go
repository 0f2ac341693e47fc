package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/techstore/storefront-backend/internal/users"
	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
	"github.com/techstore/storefront-backend/pkg/identity"
	"github.com/techstore/storefront-backend/pkg/security"
)

type credentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	Create(ctx context.Context, cred *models.Credential) error
	UpdatePasswordHash(ctx context.Context, uid, hash string) error
}

// LocalProvider authenticates against argon2id hashes kept in the SQL store.
// It has no federated sign-in.
type LocalProvider struct {
	creds credentialStore
	cfg   config.PasswordConfig
}

func NewLocalProvider(creds credentialStore, cfg config.PasswordConfig) (*LocalProvider, error) {
	if creds == nil {
		return nil, errors.New("credential store is required")
	}
	return &LocalProvider{creds: creds, cfg: cfg}, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password, displayName string) (identity.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailShape.MatchString(email) {
		return identity.Account{}, identity.NewError(identity.CodeInvalidEmail, nil)
	}
	hash, err := security.HashPassword(password, p.cfg)
	if err != nil {
		return identity.Account{}, identity.NewError(identity.CodeWeakPassword, err)
	}
	cred := &models.Credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := p.creds.Create(ctx, cred); err != nil {
		if errors.Is(err, users.ErrAlreadyExists) {
			return identity.Account{}, identity.NewError(identity.CodeEmailInUse, err)
		}
		return identity.Account{}, err
	}
	return identity.Account{
		UID:         cred.UID,
		Email:       email,
		DisplayName: displayName,
		Provider:    enums.AuthProviderPassword,
		IsNewUser:   true,
	}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (identity.Account, error) {
	cred, err := p.creds.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return identity.Account{}, identity.NewError(identity.CodeUserNotFound, err)
	}
	if err != nil {
		return identity.Account{}, err
	}
	if cred.Disabled {
		return identity.Account{}, identity.NewError(identity.CodeUserDisabled, nil)
	}
	ok, err := security.VerifyPassword(password, cred.PasswordHash)
	if err != nil {
		return identity.Account{}, err
	}
	if !ok {
		return identity.Account{}, identity.NewError(identity.CodeWrongPassword, nil)
	}
	p.upgradeHash(ctx, cred.UID, password, cred.PasswordHash)
	return identity.Account{
		UID:         cred.UID,
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
		Provider:    enums.AuthProviderPassword,
	}, nil
}

// upgradeHash re-hashes with the current costs after a successful sign-in.
// Failures keep the old hash, which still verifies.
func (p *LocalProvider) upgradeHash(ctx context.Context, uid, password, current string) {
	if !security.NeedsRehash(current, p.cfg) {
		return
	}
	if hash, err := security.HashPassword(password, p.cfg); err == nil {
		_ = p.creds.UpdatePasswordHash(ctx, uid, hash)
	}
}

func (p *LocalProvider) SignInWithCredential(context.Context, enums.AuthProvider, string) (identity.Account, error) {
	return identity.Account{}, identity.NewError(identity.CodeOperationNotAllowed, nil)
}
