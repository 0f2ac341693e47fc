package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

var (
	errMissing = errors.New("missing")
	errTaken   = errors.New("taken")
)

func newTestBase(t *testing.T) Base {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, _ := conn.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewBase(conn)
}

func TestBaseDBBindsContext(t *testing.T) {
	base := newTestBase(t)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	if got := base.DB(ctx).Statement.Context; got != ctx {
		t.Fatalf("expected context to flow through, got %v", got)
	}
	if base.DB(nil) != base.db {
		t.Fatal("expected nil context to return raw connection")
	}
}

func TestBaseFirstMapsNotFound(t *testing.T) {
	base := newTestBase(t)
	ctx := context.Background()

	var w widget
	if err := base.First(ctx, &w, errMissing, "id = ?", "w1"); !errors.Is(err, errMissing) {
		t.Fatalf("expected errMissing, got %v", err)
	}

	if err := base.Insert(ctx, &widget{ID: "w1", Name: "gear"}, errTaken); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := base.First(ctx, &w, errMissing, "id = ?", "w1"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if w.Name != "gear" {
		t.Fatalf("expected gear, got %q", w.Name)
	}
}

func TestBaseInsertMapsConflict(t *testing.T) {
	base := newTestBase(t)
	ctx := context.Background()

	if err := base.Insert(ctx, &widget{ID: "w1", Name: "gear"}, errTaken); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := base.Insert(ctx, &widget{ID: "w2", Name: "gear"}, errTaken); !errors.Is(err, errTaken) {
		t.Fatalf("expected errTaken, got %v", err)
	}
}
