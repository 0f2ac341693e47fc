package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/techstore/storefront-backend/internal/users"
	pkgAuth "github.com/techstore/storefront-backend/pkg/auth"
	"github.com/techstore/storefront-backend/pkg/auth/session"
	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/identity"
	"github.com/techstore/storefront-backend/pkg/logger"
)

// Service defines the behavior needed by the auth controllers.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*SessionResponse, error)
	SignInWithProvider(ctx context.Context, provider enums.AuthProvider, req FederatedRequest) (*SessionResponse, error)
	// ResolveRole returns the role to embed in tokens for a user.
	ResolveRole(ctx context.Context, uid, email string) enums.UserRole
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type service struct {
	provider    identity.Provider
	users       users.Store
	session     sessionManager
	jwtCfg      config.JWTConfig
	adminEmails map[string]struct{}
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Provider       identity.Provider
	Users          users.Store
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	AdminEmails    []string
	Logger         *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	admins := make(map[string]struct{}, len(params.AdminEmails))
	for _, email := range params.AdminEmails {
		if e := normalizeEmail(email); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &service{
		provider:    params.Provider,
		users:       params.Users,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		adminEmails: admins,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*SessionResponse, error) {
	if fieldErrs := req.Validate(); fieldErrs != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sign-up form").WithDetails(fieldErrs)
	}

	displayName := req.DisplayName()
	account, err := s.provider.SignUp(ctx, strings.TrimSpace(req.Email), req.Password, displayName)
	if err != nil {
		return nil, mapIdentityError(flowSignUp, err)
	}

	user := &models.User{
		UID:         account.UID,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       normalizeEmail(account.Email),
		DisplayName: displayName,
		Newsletter:  req.Newsletter,
		Role:        enums.UserRoleCustomer,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, account.UID), "failed to write user record", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, errorMessage(flowSignUp, identity.CodeUnknown))
	}

	return s.issue(ctx, user, true)
}

func (s *service) SignIn(ctx context.Context, req SignInRequest) (*SessionResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	account, err := s.provider.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, mapIdentityError(flowSignIn, err)
	}

	user, err := s.users.Get(ctx, account.UID)
	switch {
	case errors.Is(err, users.ErrNotFound):
		user = &models.User{
			UID:         account.UID,
			Email:       normalizeEmail(account.Email),
			DisplayName: account.DisplayName,
			Role:        enums.UserRoleCustomer,
		}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, errorMessage(flowSignIn, identity.CodeUnknown))
	}
	return s.issue(ctx, user, false)
}

// SignInWithProvider exchanges a social credential and writes a user record
// the first time the account is seen.
func (s *service) SignInWithProvider(ctx context.Context, provider enums.AuthProvider, req FederatedRequest) (*SessionResponse, error) {
	if !provider.IsFederated() {
		return nil, unsupportedProvider(provider)
	}
	if strings.TrimSpace(req.Credential) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credential is required")
	}
	account, err := s.provider.SignInWithCredential(ctx, provider, req.Credential)
	if err != nil {
		return nil, mapIdentityError(flowSignIn, err)
	}

	user, err := s.users.Get(ctx, account.UID)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, errorMessage(flowSignIn, identity.CodeUnknown))
	}
	if user != nil {
		return s.issue(ctx, user, false)
	}

	displayName := account.DisplayName
	if displayName == "" {
		displayName = strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	}
	user = &models.User{
		UID:         account.UID,
		FirstName:   firstNonEmpty(account.FirstName, req.FirstName),
		LastName:    firstNonEmpty(account.LastName, req.LastName),
		Email:       normalizeEmail(account.Email),
		DisplayName: displayName,
		Newsletter:  req.Newsletter,
		Role:        enums.UserRoleCustomer,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil && !errors.Is(err, users.ErrAlreadyExists) {
		s.logg.Error(s.logg.WithUserID(ctx, account.UID), "failed to write federated user record", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, errorMessage(flowSignIn, identity.CodeUnknown))
	}
	return s.issue(ctx, user, true)
}

// ResolveRole prefers admin from either the user record or the configured
// admin email list.
func (s *service) ResolveRole(ctx context.Context, uid, email string) enums.UserRole {
	if _, ok := s.adminEmails[normalizeEmail(email)]; ok {
		return enums.UserRoleAdmin
	}
	user, err := s.users.Get(ctx, uid)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			s.logg.Warn(s.logg.WithUserID(ctx, uid), "role lookup failed; defaulting to customer")
		}
		return enums.UserRoleCustomer
	}
	return s.roleFor(user)
}

func (s *service) roleFor(user *models.User) enums.UserRole {
	if user.Role == enums.UserRoleAdmin {
		return enums.UserRoleAdmin
	}
	if _, ok := s.adminEmails[normalizeEmail(user.Email)]; ok {
		return enums.UserRoleAdmin
	}
	return enums.UserRoleCustomer
}

func (s *service) issue(ctx context.Context, user *models.User, isNew bool) (*SessionResponse, error) {
	role := s.roleFor(user)
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.UID,
		Email:  user.Email,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	dto := FromModel(user)
	dto.Role = role
	return &SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IsNewUser:    isNew,
		User:         dto,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
