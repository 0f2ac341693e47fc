package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/techstore/storefront-backend/api/responses"
	"github.com/techstore/storefront-backend/api/validators"
	"github.com/techstore/storefront-backend/internal/catalog"
	"github.com/techstore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/logger"
)

const maxSearchLength = 200

type CatalogService interface {
	Options() catalog.Options
	List(ctx context.Context, c catalog.Criteria) catalog.Listing
	Featured(ctx context.Context) []models.Product
	Detail(ctx context.Context, id string) (*catalog.Detail, error)
}

// ProductsList filters and sorts the catalog from query parameters:
// category, q, brand (repeated or comma separated), minPrice, maxPrice, sort.
func ProductsList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := parseCriteria(r, svc.Options())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.List(r.Context(), criteria))
	}
}

func ProductsFeatured(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Featured(r.Context()))
	}
}

func ProductDetail(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "productId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithProductID(ctx, id)
		}
		detail, err := svc.Detail(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// CatalogOptions exposes the filter vocabulary used to render the listing
// and the admin form.
func CatalogOptions(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Options())
	}
}

func parseCriteria(r *http.Request, opts catalog.Options) (catalog.Criteria, error) {
	c := catalog.DefaultCriteria(opts.PriceCeiling)
	q := r.URL.Query()

	category, err := opts.NormalizeCategory(q.Get("category"))
	if err != nil {
		return c, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category").WithDetails(map[string]any{"field": "category", "allowed": opts.Categories})
	}
	c.Category = category

	sortKey, err := catalog.ParseSortKey(q.Get("sort"))
	if err != nil {
		return c, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown sort key").WithDetails(map[string]any{"field": "sort", "allowed": opts.SortKeys})
	}
	c.Sort = sortKey

	c.SearchText = validators.SanitizeString(q.Get("q"), maxSearchLength)
	c.Brands = validators.ParseQueryList(r, "brand")

	if c.PriceMin, err = validators.ParseQueryFloat(r, "minPrice", c.PriceMin); err != nil {
		return c, err
	}
	if c.PriceMax, err = validators.ParseQueryFloat(r, "maxPrice", c.PriceMax); err != nil {
		return c, err
	}
	if c.PriceMin > c.PriceMax {
		return c, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	return c, nil
}
