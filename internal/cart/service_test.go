package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/techstore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
	redisclient "github.com/techstore/storefront-backend/pkg/redis"
)

type stubLookup map[string]models.Product

func (s stubLookup) GetProduct(_ context.Context, id string) *models.Product {
	if p, ok := s[id]; ok {
		return &p
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis, *redisclient.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	client := redisclient.NewFromUniversal(raw)

	store, err := NewRedisStore(client, time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	lookup := stubLookup{
		"p1": {ID: "p1", Name: "Keyboard", Price: 129.5, Images: []string{"https://cdn/k.png"}},
	}
	return NewService(store, lookup), mr, client
}

func TestServicePersistsCartInRedis(t *testing.T) {
	ctx := context.Background()
	svc, mr, client := newTestService(t)

	c, err := svc.AddItem(ctx, "cart-1", "p1", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.Count() != 2 {
		t.Fatalf("expected 2 units, got %d", c.Count())
	}
	if ttl := mr.TTL(client.CartKey("cart-1")); ttl != time.Hour {
		t.Fatalf("expected cart ttl, got %v", ttl)
	}

	mr.FastForward(30 * time.Minute)
	loaded, err := svc.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Name != "Keyboard" {
		t.Fatalf("unexpected cart %+v", loaded)
	}
	if ttl := mr.TTL(client.CartKey("cart-1")); ttl != time.Hour {
		t.Fatalf("expected sliding ttl reset, got %v", ttl)
	}

	if _, err := svc.UpdateQuantity(ctx, "cart-1", "p1", 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := svc.UpdateQuantity(ctx, "cart-1", "p1", 4)
	if updated.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", updated.Items[0].Quantity)
	}
	if got := updated.Total().StringFixed(2); got != "518.00" {
		t.Fatalf("unexpected total %s", got)
	}

	removed, err := svc.RemoveItem(ctx, "cart-1", "p1")
	if err != nil || len(removed.Items) != 0 {
		t.Fatalf("remove: %+v err=%v", removed, err)
	}

	if err := svc.Clear(ctx, "cart-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(client.CartKey("cart-1")) {
		t.Fatal("expected cart key deleted")
	}
}

func TestServiceAddUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AddItem(context.Background(), "cart-1", "missing", 1)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = svc.AddItem(context.Background(), "cart-1", " ", 1)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
