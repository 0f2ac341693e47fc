package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when the addressed object does not exist.
var ErrObjectNotFound = errors.New("gcs: object not found")

const firebaseTokenKey = "firebaseStorageDownloadTokens"

// ObjectAttrs describes an uploaded object.
type ObjectAttrs struct {
	Bucket        string
	Name          string
	ContentType   string
	Size          int64
	DownloadToken string
}

// Upload stores body under object in the default bucket using a single
// multipart request. A download token is attached so the object is reachable
// through the firebase download endpoint.
func (c *Client) Upload(ctx context.Context, object, contentType string, body io.Reader) (ObjectAttrs, error) {
	if object == "" {
		return ObjectAttrs{}, errors.New("gcs: object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	downloadToken := uuid.NewString()
	meta := map[string]any{
		"name":        object,
		"contentType": contentType,
		"metadata":    map[string]string{firebaseTokenKey: downloadToken},
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	metaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return ObjectAttrs{}, err
	}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return ObjectAttrs{}, fmt.Errorf("encode object metadata: %w", err)
	}
	mediaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {contentType}})
	if err != nil {
		return ObjectAttrs{}, err
	}
	if _, err := io.Copy(mediaPart, body); err != nil {
		return ObjectAttrs{}, fmt.Errorf("buffer object body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ObjectAttrs{}, err
	}

	u := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=multipart", c.apiBase, url.PathEscape(c.defaultBucket))
	resp, err := c.do(ctx, http.MethodPost, u, &buf, "multipart/related; boundary="+mw.Boundary())
	if err != nil {
		return ObjectAttrs{}, fmt.Errorf("gcs upload %s: %w", object, err)
	}
	defer c.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusOK {
		return ObjectAttrs{}, statusError("gcs upload failed", resp)
	}

	var created struct {
		Bucket      string `json:"bucket"`
		Name        string `json:"name"`
		ContentType string `json:"contentType"`
		Size        string `json:"size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return ObjectAttrs{}, fmt.Errorf("decode upload response: %w", err)
	}
	size, _ := strconv.ParseInt(created.Size, 10, 64)

	attrs := ObjectAttrs{
		Bucket:        created.Bucket,
		Name:          created.Name,
		ContentType:   created.ContentType,
		Size:          size,
		DownloadToken: downloadToken,
	}
	if attrs.Bucket == "" {
		attrs.Bucket = c.defaultBucket
	}
	if attrs.Name == "" {
		attrs.Name = object
	}
	return attrs, nil
}

// Delete removes object from the default bucket. ErrObjectNotFound is returned
// when the object is already gone.
func (c *Client) Delete(ctx context.Context, object string) error {
	if object == "" {
		return errors.New("gcs: object name is required")
	}

	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.apiBase, url.PathEscape(c.defaultBucket), url.PathEscape(object))
	resp, err := c.do(ctx, http.MethodDelete, u, nil, "")
	if err != nil {
		return fmt.Errorf("gcs delete %s: %w", object, err)
	}
	defer c.closeBody(ctx, resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrObjectNotFound
	default:
		return statusError("gcs delete failed", resp)
	}
}

// DownloadURL renders the public download URL for an uploaded object.
func (c *Client) DownloadURL(attrs ObjectAttrs) string {
	bucket := attrs.Bucket
	if bucket == "" {
		bucket = c.defaultBucket
	}
	if c.urlStyle == URLStyleGCS {
		segments := strings.Split(attrs.Name, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, strings.Join(segments, "/"))
	}

	u := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", bucket, url.PathEscape(attrs.Name))
	if attrs.DownloadToken != "" {
		u += "&token=" + url.QueryEscape(attrs.DownloadToken)
	}
	return u
}

// ObjectFromURL resolves a download URL produced for this client's bucket back
// to its object name.
func (c *Client) ObjectFromURL(raw string) (string, bool) {
	bucket, object, ok := PathFromURL(raw)
	if !ok || bucket != c.defaultBucket {
		return "", false
	}
	return object, true
}

// PathFromURL extracts the bucket and object name from a firebase download
// URL, a storage.googleapis.com URL or a gs:// URI.
func PathFromURL(raw string) (bucket, object string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", false
	}

	switch {
	case u.Scheme == "gs":
		bucket, object = u.Host, strings.TrimPrefix(u.Path, "/")

	case strings.EqualFold(u.Host, "firebasestorage.googleapis.com"):
		rest, found := strings.CutPrefix(u.Path, "/v0/b/")
		if !found {
			return "", "", false
		}
		bucket, object, found = strings.Cut(rest, "/o/")
		if !found {
			return "", "", false
		}

	case strings.EqualFold(u.Host, "storage.googleapis.com"):
		bucket, object, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")

	default:
		return "", "", false
	}

	if bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
