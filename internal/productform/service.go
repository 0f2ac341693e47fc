package productform

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/techstore/storefront-backend/internal/events"
	"github.com/techstore/storefront-backend/internal/gateway"
	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/logger"
)

// Gateway is the slice of the backend gateway used by admin submits.
type Gateway interface {
	ListProducts(ctx context.Context) []models.Product
	GetProduct(ctx context.Context, id string) *models.Product
	CreateProduct(ctx context.Context, product *models.Product) (string, error)
	UpdateProduct(ctx context.Context, id string, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	UploadImage(ctx context.Context, file gateway.ImageFile) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

// Fields carries the scalar, list and specification inputs of one submit.
type Fields struct {
	Name          string
	Description   string
	Price         *float64
	OriginalPrice *float64
	Category      string
	Brand         string
	Rating        *float64
	ReviewCount   *int
	InStock       *bool
	IsNew         *bool
	Featured      *bool
	SKU           string
	Warranty      string
	Features      []string
	Tags          []string
	Colors        []string
	Specs         []SpecPair
}

// Submission is one admin create or update request.
type Submission struct {
	Fields Fields
	Files  []File
	// RetainImages lists the existing image URLs to keep on update. Nil keeps all.
	RetainImages []string
	ActorID      string
}

// Result is the saved product plus the files that were skipped.
type Result struct {
	Product  models.Product `json:"product"`
	Rejected []Rejection    `json:"rejected,omitempty"`
}

type Service struct {
	gw     Gateway
	events events.Publisher
	limits Limits
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(gw Gateway, publisher events.Publisher, limits Limits, logg *logger.Logger) (*Service, error) {
	if gw == nil {
		return nil, errors.New("gateway required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{gw: gw, events: publisher, limits: limits, logg: logg, now: time.Now}, nil
}

// NewDraft returns an empty draft bound to the service limits.
func (s *Service) NewDraft() *Draft {
	return NewDraft(s.limits)
}

func (s *Service) List(ctx context.Context) []models.Product {
	return s.gw.ListProducts(ctx)
}

func (s *Service) Create(ctx context.Context, sub Submission) (*Result, error) {
	d := s.NewDraft()
	rejected, err := apply(d, sub)
	if err != nil {
		return nil, err
	}
	product, err := s.Submit(ctx, d, sub.ActorID)
	if err != nil {
		return nil, withRejections(err, rejected)
	}
	return &Result{Product: *product, Rejected: rejected}, nil
}

// Update seeds a draft from the stored product, applies sub and saves it.
func (s *Service) Update(ctx context.Context, id string, sub Submission) (*Result, error) {
	current := s.gw.GetProduct(ctx, id)
	if current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	d := s.NewDraft()
	d.Edit(*current)
	if sub.RetainImages != nil {
		d.RetainOnly(sub.RetainImages)
	}
	rejected, err := apply(d, sub)
	if err != nil {
		return nil, err
	}
	product, err := s.Submit(ctx, d, sub.ActorID)
	if err != nil {
		return nil, withRejections(err, rejected)
	}
	return &Result{Product: *product, Rejected: rejected}, nil
}

// Submit validates d, uploads its staged files and writes the record. Any
// upload or write failure removes the objects uploaded by this submit.
func (s *Service) Submit(ctx context.Context, d *Draft, actorID string) (*models.Product, error) {
	if err := d.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	uploaded, err := s.uploadAll(ctx, d.StagedFiles())
	if err != nil {
		return nil, err
	}

	product := d.Build(uploaded, s.now().UTC())
	eventType := enums.CatalogEventProductCreated
	if d.IsEditing() {
		eventType = enums.CatalogEventProductUpdated
		err = s.gw.UpdateProduct(ctx, d.ProductID(), &product)
	} else {
		var id string
		id, err = s.gw.CreateProduct(ctx, &product)
		product.ID = id
	}
	if err != nil {
		s.cleanup(ctx, uploaded)
		return nil, err
	}

	if d.IsEditing() {
		s.deleteRemoved(ctx, d.RemovedImages())
	}
	s.publish(ctx, eventType, product, actorID)
	return &product, nil
}

// Delete removes every image of the product before its record. Missing
// objects are ignored; any other image failure keeps the record.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	product := s.gw.GetProduct(ctx, id)
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if err := s.deleteImages(ctx, product.Gallery()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Error deleting product: "+err.Error())
	}
	if err := s.gw.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, enums.CatalogEventProductDeleted, *product, actorID)
	return nil
}

func (s *Service) uploadAll(ctx context.Context, files []StagedFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			url, err := s.gw.UploadImage(gctx, gateway.ImageFile{
				Filename:    f.Filename,
				ContentType: f.ContentType,
				Data:        f.Data,
			})
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var done []string
		for _, url := range urls {
			if url != "" {
				done = append(done, url)
			}
		}
		s.cleanup(ctx, done)
		return nil, err
	}
	return urls, nil
}

// cleanup deletes objects orphaned by a failed submit; failures are only logged.
func (s *Service) cleanup(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.deleteImages(context.WithoutCancel(ctx), urls); err != nil {
		s.logg.Error(ctx, "failed to remove uploaded images after failed submit", err)
	}
}

func (s *Service) deleteRemoved(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.deleteImages(ctx, urls); err != nil {
		s.logg.Error(ctx, "failed to delete images removed from product", err)
	}
}

// deleteImages deletes urls concurrently and returns every failure combined.
func (s *Service) deleteImages(ctx context.Context, urls []string) error {
	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	for _, url := range urls {
		g.Go(func() error {
			if err := s.gw.DeleteImage(ctx, url); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (s *Service) publish(ctx context.Context, eventType enums.CatalogEventType, product models.Product, actorID string) {
	err := s.events.PublishCatalog(ctx, events.CatalogEvent{Type: eventType, Product: product, ActorID: actorID})
	if err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, product.ID), "failed to publish catalog event", err)
	}
}

// apply copies sub onto d and stages its files.
func apply(d *Draft, sub Submission) ([]Rejection, error) {
	f := sub.Fields
	var errs error

	if f.Name != "" || !d.IsEditing() {
		d.SetName(f.Name)
	}
	if f.Description != "" || !d.IsEditing() {
		d.SetDescription(f.Description)
	}
	if f.Price != nil {
		errs = multierr.Append(errs, d.SetPrice(*f.Price))
	}
	if f.OriginalPrice != nil || !d.IsEditing() {
		errs = multierr.Append(errs, d.SetOriginalPrice(f.OriginalPrice))
	}
	if f.Category != "" || !d.IsEditing() {
		errs = multierr.Append(errs, d.SetCategory(f.Category))
	}
	if f.Brand != "" || !d.IsEditing() {
		d.SetBrand(f.Brand)
	}
	if f.Rating != nil {
		errs = multierr.Append(errs, d.SetRating(*f.Rating))
	}
	if f.ReviewCount != nil {
		errs = multierr.Append(errs, d.SetReviewCount(*f.ReviewCount))
	}
	if f.InStock != nil {
		d.SetInStock(*f.InStock)
	}
	if f.IsNew != nil {
		d.SetIsNew(*f.IsNew)
	}
	if f.Featured != nil {
		d.SetFeatured(*f.Featured)
	}
	if f.SKU != "" || !d.IsEditing() {
		d.SetSKU(f.SKU)
	}
	if f.Warranty != "" || !d.IsEditing() {
		d.SetWarranty(f.Warranty)
	}
	if f.Features != nil {
		errs = multierr.Append(errs, d.SetList(enums.ListFieldFeatures, f.Features))
	}
	if f.Tags != nil {
		errs = multierr.Append(errs, d.SetList(enums.ListFieldTags, f.Tags))
	}
	if f.Colors != nil {
		errs = multierr.Append(errs, d.SetList(enums.ListFieldColors, f.Colors))
	}
	if f.Specs != nil {
		d.SetSpecs(f.Specs)
	}
	if errs != nil {
		details := make([]string, 0)
		for _, e := range multierr.Errors(errs) {
			details = append(details, e.Error())
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product fields").WithDetails(map[string]any{"fields": details})
	}

	return d.AddFiles(sub.Files), nil
}

func withRejections(err error, rejected []Rejection) error {
	typed := pkgerrors.As(err)
	if typed == nil || len(rejected) == 0 || typed.Code() != pkgerrors.CodeValidation {
		return err
	}
	return typed.WithDetails(map[string]any{"rejected": rejected})
}
