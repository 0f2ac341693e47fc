package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/enums"
	"github.com/techstore/storefront-backend/pkg/logger"
)

const requestTimeout = 10 * time.Second

// FirebaseClient talks to the Identity Toolkit REST API.
type FirebaseClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	requestURI string
	logg       *logger.Logger
}

func NewFirebaseClient(cfg config.IdentityConfig, logg *logger.Logger) (*FirebaseClient, error) {
	if strings.TrimSpace(cfg.FirebaseAPIKey) == "" {
		return nil, errors.New("firebase api key is required")
	}
	baseURL := strings.TrimRight(cfg.FirebaseAPIURL, "/")
	if baseURL == "" {
		baseURL = "https://identitytoolkit.googleapis.com/v1"
	}
	requestURI := cfg.RequestURI
	if requestURI == "" {
		requestURI = "http://localhost"
	}
	return &FirebaseClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     cfg.FirebaseAPIKey,
		requestURI: requestURI,
		logg:       logg,
	}, nil
}

type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	FullName    string `json:"fullName"`
	IDToken     string `json:"idToken"`
	IsNewUser   bool   `json:"isNewUser"`
	ErrorMsg    string `json:"errorMessage"`
}

func (c *FirebaseClient) SignUp(ctx context.Context, email, password, displayName string) (Account, error) {
	var created accountResponse
	if err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &created); err != nil {
		return Account{}, err
	}

	if displayName != "" {
		var updated accountResponse
		if err := c.call(ctx, "accounts:update", map[string]any{
			"idToken":           created.IDToken,
			"displayName":       displayName,
			"returnSecureToken": false,
		}, &updated); err != nil {
			return Account{}, err
		}
		created.DisplayName = displayName
	}

	return Account{
		UID:         created.LocalID,
		Email:       created.Email,
		DisplayName: created.DisplayName,
		Provider:    enums.AuthProviderPassword,
		IsNewUser:   true,
	}, nil
}

func (c *FirebaseClient) SignIn(ctx context.Context, email, password string) (Account, error) {
	var resp accountResponse
	if err := c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp); err != nil {
		return Account{}, err
	}
	return Account{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Provider:    enums.AuthProviderPassword,
	}, nil
}

// SignInWithCredential exchanges a federated credential (a google id token or
// a github access token) for an account.
func (c *FirebaseClient) SignInWithCredential(ctx context.Context, provider enums.AuthProvider, credential string) (Account, error) {
	if !provider.IsFederated() {
		return Account{}, NewError(CodeOperationNotAllowed, fmt.Errorf("provider %q is not federated", provider))
	}
	if strings.TrimSpace(credential) == "" {
		return Account{}, NewError(CodeInvalidCredential, errors.New("credential is required"))
	}

	post := url.Values{}
	if provider == enums.AuthProviderGoogle {
		post.Set("id_token", credential)
	} else {
		post.Set("access_token", credential)
	}
	post.Set("providerId", provider.ProviderID())

	var resp accountResponse
	if err := c.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            post.Encode(),
		"requestUri":          c.requestURI,
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}, &resp); err != nil {
		return Account{}, err
	}
	if resp.ErrorMsg == "FEDERATED_USER_ID_ALREADY_LINKED" || resp.ErrorMsg == "EMAIL_EXISTS" {
		return Account{}, NewError(CodeAccountExistsDifferentCred, errors.New(resp.ErrorMsg))
	}

	displayName := resp.DisplayName
	if displayName == "" {
		displayName = resp.FullName
	}
	return Account{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: displayName,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		Provider:    provider,
		IsNewUser:   resp.IsNewUser,
	}, nil
}

func (c *FirebaseClient) call(ctx context.Context, method string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	u := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s: %w", method, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logg != nil {
			c.logg.Warn(ctx, "identity: closing response body failed")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Message == "" {
		return fmt.Errorf("identity toolkit returned %s", resp.Status)
	}
	msg := envelope.Error.Message
	return NewError(codeForMessage(msg), errors.New(msg))
}

// codeForMessage maps toolkit messages such as "WEAK_PASSWORD : Password should
// be at least 6 characters" onto provider-neutral codes.
func codeForMessage(msg string) string {
	key, _, _ := strings.Cut(msg, " ")
	switch key {
	case "EMAIL_EXISTS":
		return CodeEmailInUse
	case "OPERATION_NOT_ALLOWED", "PASSWORD_LOGIN_DISABLED":
		return CodeOperationNotAllowed
	case "WEAK_PASSWORD":
		return CodeWeakPassword
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return CodeTooManyRequests
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return CodeInvalidEmail
	case "USER_DISABLED":
		return CodeUserDisabled
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "INVALID_PASSWORD", "MISSING_PASSWORD":
		return CodeWrongPassword
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_IDP_RESPONSE", "INVALID_ID_TOKEN":
		return CodeInvalidCredential
	case "FEDERATED_USER_ID_ALREADY_LINKED":
		return CodeAccountExistsDifferentCred
	default:
		return CodeUnknown
	}
}
