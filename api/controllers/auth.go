package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techstore/storefront-backend/api/responses"
	"github.com/techstore/storefront-backend/api/validators"
	"github.com/techstore/storefront-backend/internal/auth"
	"github.com/techstore/storefront-backend/pkg/enums"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/logger"
)

type AuthService interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.SessionResponse, error)
	SignIn(ctx context.Context, req auth.SignInRequest) (*auth.SessionResponse, error)
	SignInWithProvider(ctx context.Context, provider enums.AuthProvider, req auth.FederatedRequest) (*auth.SessionResponse, error)
}

// AuthSignUp creates an account. Field errors come back together in details.
func AuthSignUp(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.SignUpRequest
		// The form rules live on SignUpRequest.Validate, so only decode here.
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		resp, err := svc.SignUp(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

func AuthSignIn(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.SignInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.SignIn(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AuthSignInProvider exchanges a google or github credential for a session.
func AuthSignInProvider(svc AuthService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, err := enums.ParseAuthProvider(chi.URLParam(r, "provider"))
		if err != nil || !provider.IsFederated() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sign-in provider"))
			return
		}

		var body auth.FederatedRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.SignInWithProvider(r.Context(), provider, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusOK
		if resp.IsNewUser {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, resp)
	}
}

type passwordStrengthRequest struct {
	Password string `json:"password"`
}

// AuthPasswordStrength scores a candidate password for the sign-up meter.
func AuthPasswordStrength(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body passwordStrengthRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, auth.PasswordStrength(body.Password))
	}
}
