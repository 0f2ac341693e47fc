package productform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/techstore/storefront-backend/internal/events"
	"github.com/techstore/storefront-backend/internal/gateway"
	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	"github.com/techstore/storefront-backend/pkg/logger"
)

type fakeGateway struct {
	mu         sync.Mutex
	products   map[string]models.Product
	uploads    int
	uploadFail string
	deleted    []string
	deleteFail map[string]error
	writeErr   error
	calls      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{products: map[string]models.Product{}, deleteFail: map[string]error{}}
}

func (g *fakeGateway) ListProducts(context.Context) []models.Product {
	out := make([]models.Product, 0, len(g.products))
	for _, p := range g.products {
		out = append(out, p)
	}
	return out
}

func (g *fakeGateway) GetProduct(_ context.Context, id string) *models.Product {
	if p, ok := g.products[id]; ok {
		return &p
	}
	return nil
}

func (g *fakeGateway) CreateProduct(_ context.Context, p *models.Product) (string, error) {
	g.calls++
	if g.writeErr != nil {
		return "", g.writeErr
	}
	id := fmt.Sprintf("p%d", len(g.products)+1)
	stored := *p
	stored.ID = id
	g.products[id] = stored
	return id, nil
}

func (g *fakeGateway) UpdateProduct(_ context.Context, id string, p *models.Product) error {
	g.calls++
	if g.writeErr != nil {
		return g.writeErr
	}
	g.products[id] = *p
	return nil
}

func (g *fakeGateway) DeleteProduct(_ context.Context, id string) error {
	g.calls++
	delete(g.products, id)
	return nil
}

func (g *fakeGateway) UploadImage(_ context.Context, f gateway.ImageFile) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if f.Filename == g.uploadFail {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "failed to upload image: quota")
	}
	g.uploads++
	return "https://cdn/" + f.Filename, nil
}

func (g *fakeGateway) DeleteImage(_ context.Context, url string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.deleteFail[url]; ok {
		return err
	}
	g.deleted = append(g.deleted, url)
	return nil
}

type recordingPublisher struct {
	events []events.CatalogEvent
}

func (r *recordingPublisher) PublishCatalog(_ context.Context, e events.CatalogEvent) error {
	r.events = append(r.events, e)
	return nil
}

func newTestService(t *testing.T, gw *fakeGateway) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(gw, pub, testLimits(), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, pub
}

func price(v float64) *float64 { return &v }

func baseFields() Fields {
	return Fields{Name: "Trackball", Description: "Ergonomic", Price: price(59.99), Category: "Mice"}
}

func TestCreateRejectsZeroImagesWithoutNetwork(t *testing.T) {
	gw := newFakeGateway()
	svc, pub := newTestService(t, gw)

	_, err := svc.Create(context.Background(), Submission{
		Fields: baseFields(),
		Files:  []File{{Filename: "readme.txt", Data: []byte("plain text")}},
	})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if pkgerrors.As(err).Message() != MsgNoImages {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}
	if gw.calls != 0 || len(pub.events) != 0 {
		t.Fatalf("expected no gateway calls or events, got %d calls", gw.calls)
	}
}

func TestCreateUploadsAndPublishes(t *testing.T) {
	gw := newFakeGateway()
	svc, pub := newTestService(t, gw)

	res, err := svc.Create(context.Background(), Submission{
		Fields: baseFields(),
		Files: []File{
			{Filename: "a.png", Data: pngData},
			{Filename: "b.jpg", Data: jpegData},
			{Filename: "c.txt", Data: []byte("nope")},
		},
		ActorID: "admin-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Product.ID == "" || len(res.Rejected) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if strings.Join(res.Product.Images, ",") != "https://cdn/a.png,https://cdn/b.jpg" {
		t.Fatalf("unexpected image order %v", res.Product.Images)
	}
	if len(pub.events) != 1 || pub.events[0].Type != enums.CatalogEventProductCreated || pub.events[0].ActorID != "admin-1" {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestUploadFailureCleansUpAndFails(t *testing.T) {
	gw := newFakeGateway()
	gw.uploadFail = "b.png"
	svc, pub := newTestService(t, gw)

	_, err := svc.Create(context.Background(), Submission{
		Fields: baseFields(),
		Files:  []File{{Filename: "a.png", Data: pngData}, {Filename: "b.png", Data: pngData}},
	})
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(gw.products) != 0 || len(pub.events) != 0 {
		t.Fatal("expected nothing persisted or published")
	}
	for _, url := range gw.deleted {
		if url != "https://cdn/a.png" {
			t.Fatalf("unexpected cleanup delete %q", url)
		}
	}
}

func TestUpdateRetainsAndDeletesRemovedImages(t *testing.T) {
	gw := newFakeGateway()
	gw.products["p1"] = models.Product{
		ID: "p1", Name: "Mouse", Description: "d", Price: 10, Category: "Mice",
		Images:    []string{"https://cdn/e1", "https://cdn/e2"},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	svc, pub := newTestService(t, gw)

	res, err := svc.Update(context.Background(), "p1", Submission{
		Files:        []File{{Filename: "n1.png", Data: pngData}, {Filename: "n2.png", Data: pngData}},
		RetainImages: []string{"https://cdn/e1"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := "https://cdn/e1,https://cdn/n1.png,https://cdn/n2.png"
	if got := strings.Join(res.Product.Images, ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if res.Product.Name != "Mouse" || res.Product.CreatedAt.Year() != 2025 {
		t.Fatalf("expected untouched fields preserved, got %+v", res.Product)
	}
	if len(gw.deleted) != 1 || gw.deleted[0] != "https://cdn/e2" {
		t.Fatalf("expected removed image deleted, got %v", gw.deleted)
	}
	if len(pub.events) != 1 || pub.events[0].Type != enums.CatalogEventProductUpdated {
		t.Fatalf("unexpected events %+v", pub.events)
	}

	if _, err := svc.Update(context.Background(), "missing", Submission{}); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteToleratesMissingImagesButAbortsOnOtherFailures(t *testing.T) {
	gw := newFakeGateway()
	gw.products["p1"] = models.Product{ID: "p1", Images: []string{"https://cdn/gone", "https://cdn/ok"}}
	gw.products["p2"] = models.Product{ID: "p2", Images: []string{"https://cdn/locked", "https://cdn/ok2"}}
	gw.deleteFail["https://cdn/locked"] = errors.New("forbidden")
	svc, pub := newTestService(t, gw)

	// the gateway already turns missing objects into success
	if err := svc.Delete(context.Background(), "p1", "admin"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := gw.products["p1"]; ok {
		t.Fatal("expected p1 removed")
	}

	err := svc.Delete(context.Background(), "p2", "admin")
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, ok := gw.products["p2"]; !ok {
		t.Fatal("expected p2 record kept after image failure")
	}
	if len(pub.events) != 1 || pub.events[0].Type != enums.CatalogEventProductDeleted {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc, _ := newTestService(t, newFakeGateway())
	fields := baseFields()
	fields.Category = "Toasters"
	fields.Price = price(-5)

	_, err := svc.Create(context.Background(), Submission{Fields: fields, Files: []File{{Filename: "a.png", Data: pngData}}})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
