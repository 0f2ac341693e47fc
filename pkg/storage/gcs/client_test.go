package gcs

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/techstore/storefront-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		httpClient: &http.Client{Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
			Base:   srv.Client().Transport,
		}},
		apiBase:       srv.URL,
		defaultBucket: "shop-bucket",
		urlStyle:      URLStyleFirebase,
	}
}

func TestUploadSendsMultipartRelated(t *testing.T) {
	var gotMeta map[string]any
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/upload/storage/v1/b/shop-bucket/o") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/related" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		metaPart, _ := mr.NextPart()
		_ = json.NewDecoder(metaPart).Decode(&gotMeta)
		mediaPart, _ := mr.NextPart()
		b, _ := io.ReadAll(mediaPart)
		gotBody = string(b)

		_, _ = w.Write([]byte(`{"bucket":"shop-bucket","name":"images/1_a.png","contentType":"image/png","size":"5"}`))
	})

	attrs, err := client.Upload(context.Background(), "images/1_a.png", "image/png", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotMeta["name"] != "images/1_a.png" {
		t.Fatalf("unexpected metadata %v", gotMeta)
	}
	if gotBody != "hello" {
		t.Fatalf("unexpected media body %q", gotBody)
	}
	if attrs.Size != 5 || attrs.DownloadToken == "" {
		t.Fatalf("unexpected attrs %+v", attrs)
	}

	u := client.DownloadURL(attrs)
	want := "https://firebasestorage.googleapis.com/v0/b/shop-bucket/o/images%2F1_a.png?alt=media&token="
	if !strings.HasPrefix(u, want) {
		t.Fatalf("unexpected download url %s", u)
	}
	if object, ok := client.ObjectFromURL(u); !ok || object != "images/1_a.png" {
		t.Fatalf("round trip failed: %q %v", object, ok)
	}
}

func TestUploadFailureReturnsStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})
	_, err := client.Upload(context.Background(), "images/x.png", "image/png", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestDeleteMapsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		if strings.HasSuffix(r.URL.EscapedPath(), "images%2Fgone.png") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Delete(context.Background(), "images/here.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.Delete(context.Background(), "images/gone.png"); err != ErrObjectNotFound {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestPathFromURL(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		object string
		ok     bool
	}{
		{raw: "https://firebasestorage.googleapis.com/v0/b/shop/o/images%2F1_a.jpg?alt=media&token=t", bucket: "shop", object: "images/1_a.jpg", ok: true},
		{raw: "https://storage.googleapis.com/shop/images/1_a.jpg", bucket: "shop", object: "images/1_a.jpg", ok: true},
		{raw: "gs://shop/images/1_a.jpg", bucket: "shop", object: "images/1_a.jpg", ok: true},
		{raw: "https://example.com/cat.png"},
		{raw: "https://firebasestorage.googleapis.com/v0/b/shop"},
		{raw: "::not a url"},
	}
	for _, tt := range tests {
		bucket, object, ok := PathFromURL(tt.raw)
		if ok != tt.ok || bucket != tt.bucket || object != tt.object {
			t.Fatalf("PathFromURL(%q) = %q %q %v", tt.raw, bucket, object, ok)
		}
	}
}

func TestObjectFromURLRejectsForeignBucket(t *testing.T) {
	client := &Client{defaultBucket: "shop"}
	if _, ok := client.ObjectFromURL("gs://other/images/a.png"); ok {
		t.Fatal("expected foreign bucket to be unresolvable")
	}
}

func TestDownloadURLGCSStyle(t *testing.T) {
	client := &Client{defaultBucket: "shop", urlStyle: URLStyleGCS}
	got := client.DownloadURL(ObjectAttrs{Name: "images/a b.png"})
	if got != "https://storage.googleapis.com/shop/images/a%20b.png" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestPingChecksBucketListing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/b/shop-bucket/o" || r.URL.Query().Get("maxResults") != "1" {
			t.Errorf("unexpected ping request %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"kind":"storage#objects"}`))
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	denied := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	if err := denied.Ping(context.Background()); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 ping failure, got %v", err)
	}
}

func TestTokenSourceRejectsMalformedJSON(t *testing.T) {
	if _, err := tokenSource(context.Background(), config.GCPConfig{CredentialsJSON: "{not json"}); err == nil {
		t.Fatal("expected malformed credentials to fail")
	}
}
