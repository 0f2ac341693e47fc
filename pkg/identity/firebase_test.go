package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/enums"
)

func newTestFirebase(t *testing.T, handler http.HandlerFunc) *FirebaseClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewFirebaseClient(config.IdentityConfig{
		FirebaseAPIKey: "key-1",
		FirebaseAPIURL: srv.URL,
		RequestURI:     "http://localhost:3000",
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestSignUpSetsDisplayName(t *testing.T) {
	var calls []string
	client := newTestFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "key-1" {
			t.Errorf("missing api key")
		}
		calls = append(calls, strings.TrimPrefix(r.URL.Path, "/"))
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/accounts:signUp":
			_, _ = w.Write([]byte(`{"localId":"uid-1","email":"ada@example.com","idToken":"tok"}`))
		case "/accounts:update":
			if body["idToken"] != "tok" || body["displayName"] != "Ada Lovelace" {
				t.Errorf("unexpected update body %v", body)
			}
			_, _ = w.Write([]byte(`{"localId":"uid-1","displayName":"Ada Lovelace"}`))
		}
	})

	acct, err := client.SignUp(context.Background(), "ada@example.com", "Secret123", "Ada Lovelace")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if acct.UID != "uid-1" || acct.DisplayName != "Ada Lovelace" || !acct.IsNewUser {
		t.Fatalf("unexpected account %+v", acct)
	}
	if len(calls) != 2 || calls[0] != "accounts:signUp" || calls[1] != "accounts:update" {
		t.Fatalf("unexpected call sequence %v", calls)
	}
}

func TestSignInMapsToolkitErrors(t *testing.T) {
	tests := []struct {
		message string
		code    string
	}{
		{message: "EMAIL_NOT_FOUND", code: CodeUserNotFound},
		{message: "INVALID_PASSWORD", code: CodeWrongPassword},
		{message: "USER_DISABLED", code: CodeUserDisabled},
		{message: "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled", code: CodeTooManyRequests},
		{message: "WEAK_PASSWORD : Password should be at least 6 characters", code: CodeWeakPassword},
		{message: "SOMETHING_NEW", code: CodeUnknown},
	}
	for _, tt := range tests {
		client := newTestFirebase(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": tt.message}})
		})
		_, err := client.SignIn(context.Background(), "a@b.co", "x")
		if got := CodeOf(err); got != tt.code {
			t.Fatalf("message %q: expected code %q, got %q (err=%v)", tt.message, tt.code, got, err)
		}
	}
}

func TestSignInWithCredentialBuildsPostBody(t *testing.T) {
	client := newTestFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		post, _ := url.ParseQuery(body["postBody"].(string))
		if post.Get("providerId") != "github.com" || post.Get("access_token") != "gh-token" {
			t.Errorf("unexpected post body %v", post)
		}
		if body["requestUri"] != "http://localhost:3000" {
			t.Errorf("unexpected request uri %v", body["requestUri"])
		}
		_, _ = w.Write([]byte(`{"localId":"uid-9","email":"grace@example.com","fullName":"Grace Hopper","firstName":"Grace","lastName":"Hopper","isNewUser":true}`))
	})

	acct, err := client.SignInWithCredential(context.Background(), enums.AuthProviderGitHub, "gh-token")
	if err != nil {
		t.Fatalf("sign in with credential: %v", err)
	}
	if acct.DisplayName != "Grace Hopper" || !acct.IsNewUser || acct.Provider != enums.AuthProviderGitHub {
		t.Fatalf("unexpected account %+v", acct)
	}
}

func TestSignInWithCredentialRejectsInput(t *testing.T) {
	client := newTestFirebase(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	if _, err := client.SignInWithCredential(context.Background(), enums.AuthProviderPassword, "x"); CodeOf(err) != CodeOperationNotAllowed {
		t.Fatalf("expected operation-not-allowed, got %v", err)
	}
	if _, err := client.SignInWithCredential(context.Background(), enums.AuthProviderGoogle, " "); CodeOf(err) != CodeInvalidCredential {
		t.Fatalf("expected invalid-credential, got %v", err)
	}
}

func TestNewFirebaseClientRequiresKey(t *testing.T) {
	if _, err := NewFirebaseClient(config.IdentityConfig{}, nil); err == nil {
		t.Fatal("expected missing key error")
	}
}
