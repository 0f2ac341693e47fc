package controllers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/techstore/storefront-backend/api/middleware"
	"github.com/techstore/storefront-backend/api/responses"
	"github.com/techstore/storefront-backend/api/validators"
	"github.com/techstore/storefront-backend/internal/productform"
	"github.com/techstore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/logger"
)

const (
	productFormField = "product"
	imagesFormField  = "images"
)

type ProductAdminService interface {
	List(ctx context.Context) []models.Product
	Create(ctx context.Context, sub productform.Submission) (*productform.Result, error)
	Update(ctx context.Context, id string, sub productform.Submission) (*productform.Result, error)
	Delete(ctx context.Context, id, actorID string) error
}

// UploadLimits bounds admin multipart requests.
type UploadLimits struct {
	MaxImageBytes int64
	MaxFiles      int
}

func (l UploadLimits) maxRequestBytes() int64 {
	files := int64(l.MaxFiles)
	if files <= 0 {
		files = 1
	}
	// one image ceiling per file plus headroom for the JSON part
	return files*l.MaxImageBytes + 1<<20
}

type adminProductRequest struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Price          *float64               `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice  *float64               `json:"originalPrice" validate:"omitempty,gte=0"`
	Category       string                 `json:"category"`
	Brand          string                 `json:"brand"`
	Rating         *float64               `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount    *int                   `json:"reviewCount" validate:"omitempty,gte=0"`
	InStock        *bool                  `json:"inStock"`
	IsNew          *bool                  `json:"isNew"`
	Featured       *bool                  `json:"featured"`
	SKU            string                 `json:"sku"`
	Warranty       string                 `json:"warranty"`
	Features       []string               `json:"features"`
	Tags           []string               `json:"tags"`
	Colors         []string               `json:"colors"`
	Specifications []productform.SpecPair `json:"specifications"`
	RetainImages   []string               `json:"retainImages"`
}

func (p adminProductRequest) fields() productform.Fields {
	return productform.Fields{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Category:      p.Category,
		Brand:         p.Brand,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		InStock:       p.InStock,
		IsNew:         p.IsNew,
		Featured:      p.Featured,
		SKU:           p.SKU,
		Warranty:      p.Warranty,
		Features:      p.Features,
		Tags:          p.Tags,
		Colors:        p.Colors,
		Specs:         p.Specifications,
	}
}

func AdminProductsList(svc ProductAdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.List(r.Context()))
	}
}

// AdminProductCreate accepts either a multipart form (JSON "product" part plus
// "images" files) or a plain JSON body.
func AdminProductCreate(svc ProductAdminService, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := decodeSubmission(w, r, limits)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub.RetainImages = nil

		result, err := svc.Create(r.Context(), sub)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AdminProductUpdate applies the submitted fields on top of the stored
// product. retainImages, when present, lists the existing images to keep.
func AdminProductUpdate(svc ProductAdminService, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
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

		sub, err := decodeSubmission(w, r, limits)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Update(ctx, id, sub)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminProductDelete(svc ProductAdminService, logg *logger.Logger) http.HandlerFunc {
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
		if err := svc.Delete(ctx, id, middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func decodeSubmission(w http.ResponseWriter, r *http.Request, limits UploadLimits) (productform.Submission, error) {
	sub := productform.Submission{ActorID: middleware.UserIDFromContext(r.Context())}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var body adminProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return sub, err
		}
		sub.Fields = body.fields()
		sub.RetainImages = body.RetainImages
		return sub, nil
	}

	if err := validators.ParseMultipart(w, r, limits.maxRequestBytes()); err != nil {
		return sub, err
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var body adminProductRequest
	if raw := r.MultipartForm.Value[productFormField]; len(raw) > 0 {
		if err := json.Unmarshal([]byte(raw[0]), &body); err != nil {
			return sub, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product field")
		}
		if err := validators.ValidateStruct(&body); err != nil {
			return sub, err
		}
	}

	files, err := validators.FormFiles(r.MultipartForm, imagesFormField, limits.MaxFiles)
	if err != nil {
		return sub, err
	}
	sub.Fields = body.fields()
	sub.RetainImages = body.RetainImages
	sub.Files = make([]productform.File, 0, len(files))
	for _, f := range files {
		sub.Files = append(sub.Files, productform.File{Filename: f.Filename, Data: f.Data})
	}
	return sub, nil
}
