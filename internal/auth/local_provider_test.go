package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/techstore/storefront-backend/internal/users"
	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
	"github.com/techstore/storefront-backend/pkg/identity"
	"github.com/techstore/storefront-backend/pkg/security"
)

type memoryCredentials struct {
	byEmail map[string]*models.Credential
}

func (m *memoryCredentials) FindByEmail(_ context.Context, email string) (*models.Credential, error) {
	cred, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, users.ErrNotFound
	}
	return cred, nil
}

func (m *memoryCredentials) Create(_ context.Context, cred *models.Credential) error {
	if _, ok := m.byEmail[cred.Email]; ok {
		return users.ErrAlreadyExists
	}
	cp := *cred
	m.byEmail[cred.Email] = &cp
	return nil
}

func (m *memoryCredentials) UpdatePasswordHash(_ context.Context, uid, hash string) error {
	for _, cred := range m.byEmail {
		if cred.UID == uid {
			cred.PasswordHash = hash
			return nil
		}
	}
	return users.ErrNotFound
}

func newLocalProvider(t *testing.T) (*LocalProvider, *memoryCredentials) {
	t.Helper()
	creds := &memoryCredentials{byEmail: map[string]*models.Credential{}}
	p, err := NewLocalProvider(creds, config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	return p, creds
}

func TestLocalProviderSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	p, _ := newLocalProvider(t)

	acct, err := p.SignUp(ctx, "Ada@Example.com", "Analytic1", "Ada Lovelace")
	require.NoError(t, err)
	require.True(t, acct.IsNewUser)
	require.Equal(t, "ada@example.com", acct.Email)
	require.NotEmpty(t, acct.UID)

	signedIn, err := p.SignIn(ctx, "ada@example.com", "Analytic1")
	require.NoError(t, err)
	require.Equal(t, acct.UID, signedIn.UID)
	require.Equal(t, enums.AuthProviderPassword, signedIn.Provider)
}

func TestLocalProviderErrorCodes(t *testing.T) {
	ctx := context.Background()
	p, creds := newLocalProvider(t)

	_, err := p.SignUp(ctx, "ada@example.com", "Analytic1", "Ada")
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "ada@example.com", "Analytic1", "Ada")
	require.Equal(t, identity.CodeEmailInUse, identity.CodeOf(err))

	_, err = p.SignUp(ctx, "nope", "Analytic1", "Ada")
	require.Equal(t, identity.CodeInvalidEmail, identity.CodeOf(err))

	_, err = p.SignIn(ctx, "ghost@example.com", "Analytic1")
	require.Equal(t, identity.CodeUserNotFound, identity.CodeOf(err))

	_, err = p.SignIn(ctx, "ada@example.com", "wrong")
	require.Equal(t, identity.CodeWrongPassword, identity.CodeOf(err))

	creds.byEmail["ada@example.com"].Disabled = true
	_, err = p.SignIn(ctx, "ada@example.com", "Analytic1")
	require.Equal(t, identity.CodeUserDisabled, identity.CodeOf(err))

	_, err = p.SignInWithCredential(ctx, enums.AuthProviderGoogle, "token")
	require.Equal(t, identity.CodeOperationNotAllowed, identity.CodeOf(err))
}

func TestLocalProviderUpgradesWeakHashOnSignIn(t *testing.T) {
	ctx := context.Background()
	p, creds := newLocalProvider(t)

	weak, err := security.HashPassword("Analytic1", config.PasswordConfig{
		ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16,
	})
	require.NoError(t, err)
	creds.byEmail["ada@example.com"] = &models.Credential{UID: "uid-ada", Email: "ada@example.com", PasswordHash: weak}

	_, err = p.SignIn(ctx, "ada@example.com", "Analytic1")
	require.NoError(t, err)

	upgraded := creds.byEmail["ada@example.com"].PasswordHash
	require.NotEqual(t, weak, upgraded)
	require.False(t, security.NeedsRehash(upgraded, p.cfg))

	_, err = p.SignIn(ctx, "ada@example.com", "Analytic1")
	require.NoError(t, err)
}
