package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "noise cancelling headphones", SanitizeString("  noise \t cancelling\n headphones ", 0))
	assert.Equal(t, "café", SanitizeString("café au lait", 4))
	assert.Equal(t, "ab", SanitizeString("ab cd", 3))
}

func TestParseQueryList(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?brand=Apple,%20Sony&brand=Dell&brand=&brand=Apple", nil)
	assert.Equal(t, []string{"Apple", "Sony", "Dell"}, ParseQueryList(r, "brand"))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ParseQueryList(r, "brand"))
}

func TestParseQueryFloat(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?minPrice=49.5&bad=abc&neg=-2", nil)

	v, err := ParseQueryFloat(r, "minPrice", 0)
	require.NoError(t, err)
	assert.Equal(t, 49.5, v)

	v, err = ParseQueryFloat(r, "missing", 10000)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, v)

	_, err = ParseQueryFloat(r, "bad", 0)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = ParseQueryFloat(r, "neg", 0)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

type sampleBody struct {
	Name   string   `json:"name" validate:"required"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

func TestDecodeJSONBodyCollectsFieldErrors(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":9}`))
	var body sampleBody

	err := DecodeJSONBody(r, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"name": "is required", "rating": "must be at most 5"}, typed.Details())
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":true}`))
	var body sampleBody
	assert.True(t, pkgerrors.Is(DecodeJSONBody(r, &body), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyEmptyAndTrailing(t *testing.T) {
	var body sampleBody
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := DecodeJSONBody(r, &body)
	require.Error(t, err)
	assert.Equal(t, "request body is required", pkgerrors.As(err).Message())

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	assert.True(t, pkgerrors.Is(DecodeJSONBody(r, &body), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	big := `{"name":"` + strings.Repeat("x", maxJSONBody) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	var body sampleBody
	assert.True(t, pkgerrors.Is(DecodeJSONBody(r, &body), pkgerrors.CodePayloadLarge))
}

func TestNotBlankRejectsWhitespace(t *testing.T) {
	type named struct {
		Title string `json:"title" validate:"notblank"`
	}
	err := ValidateStruct(&named{Title: "   "})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"title": "is required"}, typed.Details())
	assert.NoError(t, ValidateStruct(&named{Title: "Laptop"}))
}
