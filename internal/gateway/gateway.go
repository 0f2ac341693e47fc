package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/techstore/storefront-backend/internal/products"
	"github.com/techstore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/logger"
	"github.com/techstore/storefront-backend/pkg/metrics"
	"github.com/techstore/storefront-backend/pkg/security"
	"github.com/techstore/storefront-backend/pkg/storage/gcs"
)

// DefaultFeaturedLimit caps the featured listing when callers pass no limit.
const DefaultFeaturedLimit = 8

// ProductStore is the document store holding the product collection.
type ProductStore = products.Store

// ObjectStore stores image binaries and resolves their public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (gcs.ObjectAttrs, error)
	Delete(ctx context.Context, object string) error
	DownloadURL(attrs gcs.ObjectAttrs) string
	ObjectFromURL(raw string) (string, bool)
}

// ImageFile is an accepted image ready for upload.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Options tunes object naming and the clock.
type Options struct {
	ImagePrefix string
	Now         func() time.Time
}

// Gateway is the single entry point to the remote product and image stores.
// Each call performs exactly one round trip.
type Gateway struct {
	products ProductStore
	objects  ObjectStore
	metrics  *metrics.GatewayMetrics
	logg     *logger.Logger
	prefix   string
	now      func() time.Time
}

func New(store ProductStore, objects ObjectStore, m *metrics.GatewayMetrics, logg *logger.Logger, opts Options) *Gateway {
	prefix := strings.Trim(strings.TrimSpace(opts.ImagePrefix), "/")
	if prefix == "" {
		prefix = "images"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "gateway", Output: io.Discard})
	}
	return &Gateway{
		products: store,
		objects:  objects,
		metrics:  m,
		logg:     logg,
		prefix:   prefix,
		now:      now,
	}
}

// ListProducts returns every product; failures are logged and yield an empty list.
func (g *Gateway) ListProducts(ctx context.Context) []models.Product {
	start := time.Now()
	out, err := g.products.List(ctx)
	g.metrics.Observe("list_products", start, err)
	if err != nil {
		g.logError(ctx, "failed to list products", err)
		return []models.Product{}
	}
	if out == nil {
		return []models.Product{}
	}
	return out
}

// ListFeatured returns at most limit featured products.
func (g *Gateway) ListFeatured(ctx context.Context, limit int) []models.Product {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	start := time.Now()
	out, err := g.products.ListFeatured(ctx, limit)
	g.metrics.Observe("list_featured", start, err)
	if err != nil {
		g.logError(ctx, "failed to list featured products", err)
		return []models.Product{}
	}
	if out == nil {
		return []models.Product{}
	}
	return out
}

// GetProduct returns nil when the product is absent or the read failed.
func (g *Gateway) GetProduct(ctx context.Context, id string) *models.Product {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	start := time.Now()
	product, err := g.products.Get(ctx, id)
	if errors.Is(err, products.ErrNotFound) {
		g.metrics.Observe("get_product", start, nil)
		return nil
	}
	g.metrics.Observe("get_product", start, err)
	if err != nil {
		g.logError(g.logg.WithProductID(ctx, id), "failed to load product", err)
		return nil
	}
	return product
}

func (g *Gateway) CreateProduct(ctx context.Context, product *models.Product) (string, error) {
	start := time.Now()
	id, err := g.products.Create(ctx, product)
	g.metrics.Observe("create_product", start, err)
	if err != nil {
		g.logError(ctx, "failed to create product", err)
		return "", writeError("failed to save product", err)
	}
	return id, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	start := time.Now()
	err := g.products.Update(ctx, id, product)
	g.metrics.Observe("update_product", start, err)
	if errors.Is(err, products.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		g.logError(g.logg.WithProductID(ctx, id), "failed to update product", err)
		return writeError("failed to save product", err)
	}
	return nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id string) error {
	start := time.Now()
	err := g.products.Delete(ctx, id)
	g.metrics.Observe("delete_product", start, err)
	if err != nil {
		g.logError(g.logg.WithProductID(ctx, id), "failed to delete product", err)
		return writeError("failed to delete product", err)
	}
	return nil
}

// UploadImage stores file under a generated object name and returns its public URL.
func (g *Gateway) UploadImage(ctx context.Context, file ImageFile) (string, error) {
	object, err := g.ObjectName(file.Filename, file.Data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to name image object")
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(file.Data).String()
	}

	start := time.Now()
	attrs, err := g.objects.Upload(ctx, object, contentType, bytes.NewReader(file.Data))
	g.metrics.Observe("upload_image", start, err)
	if err != nil {
		g.logError(g.logg.WithField(ctx, "object", object), "failed to upload image", err)
		return "", writeError("failed to upload image", err)
	}
	return g.objects.DownloadURL(attrs), nil
}

// DeleteImage removes the object behind url. URLs that do not resolve to an
// object in the bucket and objects that are already gone are not errors.
func (g *Gateway) DeleteImage(ctx context.Context, url string) error {
	object, ok := g.objects.ObjectFromURL(url)
	if !ok {
		g.logg.Warn(g.logg.WithField(ctx, "url", url), "image url does not resolve to a stored object")
		return nil
	}

	start := time.Now()
	err := g.objects.Delete(ctx, object)
	if errors.Is(err, gcs.ErrObjectNotFound) {
		g.metrics.Observe("delete_image", start, nil)
		g.logg.Warn(g.logg.WithField(ctx, "object", object), "image already deleted")
		return nil
	}
	g.metrics.Observe("delete_image", start, err)
	if err != nil {
		g.logError(g.logg.WithField(ctx, "object", object), "failed to delete image", err)
		return writeError("failed to delete image", err)
	}
	return nil
}

// ObjectName builds "<prefix>/<unix-millis>_<token>.<ext>" for an upload.
func (g *Gateway) ObjectName(filename string, data []byte) (string, error) {
	token, err := security.RandomToken(6)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = mimetype.Detect(data).Extension()
	}
	return fmt.Sprintf("%s/%d_%s%s", g.prefix, g.now().UnixMilli(), token, ext), nil
}

func (g *Gateway) logError(ctx context.Context, msg string, err error) {
	g.logg.Error(ctx, msg, err)
}

func writeError(action string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s: %v", action, err))
}
