package products

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/techstore/storefront-backend/pkg/db/models"
	fsclient "github.com/techstore/storefront-backend/pkg/firestore"
)

// FirestoreStore persists products in the hosted document database.
type FirestoreStore struct {
	fs  *firestore.Client
	col *firestore.CollectionRef
}

func NewFirestoreStore(client *fsclient.Client) *FirestoreStore {
	return &FirestoreStore{fs: client.Raw(), col: client.Products()}
}

func (s *FirestoreStore) List(ctx context.Context) ([]models.Product, error) {
	return collect(s.col.Documents(ctx))
}

func (s *FirestoreStore) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	q := s.col.Where("featured", "==", true)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return collect(q.Documents(ctx))
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*models.Product, error) {
	snap, err := s.col.Doc(id).Get(ctx)
	if err != nil {
		if fsclient.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !snap.Exists() {
		return nil, ErrNotFound
	}
	return decode(snap)
}

func (s *FirestoreStore) Create(ctx context.Context, product *models.Product) (string, error) {
	ref, _, err := s.col.Add(ctx, product)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Update replaces the stored document, failing with ErrNotFound when it is gone.
func (s *FirestoreStore) Update(ctx context.Context, id string, product *models.Product) error {
	ref := s.col.Doc(id)
	return s.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if fsclient.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		return tx.Set(ref, product)
	})
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	_, err := s.col.Doc(id).Delete(ctx)
	return err
}

func collect(iter *firestore.DocumentIterator) ([]models.Product, error) {
	defer iter.Stop()
	var out []models.Product
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		product, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *product)
	}
}

func decode(snap *firestore.DocumentSnapshot) (*models.Product, error) {
	var product models.Product
	if err := snap.DataTo(&product); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", snap.Ref.ID, err)
	}
	product.ID = snap.Ref.ID
	return &product, nil
}
