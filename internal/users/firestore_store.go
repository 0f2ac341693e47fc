package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/techstore/storefront-backend/pkg/db/models"
	fsclient "github.com/techstore/storefront-backend/pkg/firestore"
)

// FirestoreStore keeps one document per uid in the users collection.
type FirestoreStore struct {
	col *firestore.CollectionRef
}

func NewFirestoreStore(client *fsclient.Client) *FirestoreStore {
	return &FirestoreStore{col: client.Users()}
}

func (s *FirestoreStore) Get(ctx context.Context, uid string) (*models.User, error) {
	snap, err := s.col.Doc(uid).Get(ctx)
	if err != nil {
		if fsclient.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(snap)
}

func (s *FirestoreStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := s.col.Where("email", "==", strings.ToLower(strings.TrimSpace(email))).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(snap)
}

// Create writes the profile under its uid and refuses to overwrite.
func (s *FirestoreStore) Create(ctx context.Context, user *models.User) error {
	record := *user
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))
	if _, err := s.col.Doc(record.UID).Create(ctx, &record); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func decode(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	if user.UID == "" {
		user.UID = snap.Ref.ID
	}
	return &user, nil
}
