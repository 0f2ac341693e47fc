package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/gcp"
	"github.com/techstore/storefront-backend/pkg/logger"
)

// Client wraps the hosted document database connection.
type Client struct {
	fs  *firestore.Client
	cfg config.FirestoreConfig
}

// New opens a Firestore client for the configured project and database.
func New(ctx context.Context, gcpCfg config.GCPConfig, cfg config.FirestoreConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcpCfg.ProjectID) == "" {
		return nil, errors.New("gcp project id is required")
	}
	databaseID := strings.TrimSpace(cfg.DatabaseID)
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	fs, err := firestore.NewClientWithDatabase(ctx, gcpCfg.ProjectID, databaseID, gcp.ClientOptions(gcpCfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	if logg != nil {
		ctx = logg.WithField(ctx, "firestore_database", databaseID)
		logg.Info(ctx, "firestore client initialized")
	}
	return &Client{fs: fs, cfg: cfg}, nil
}

// Raw exposes the SDK client.
func (c *Client) Raw() *firestore.Client {
	return c.fs
}

// Products returns the product collection reference.
func (c *Client) Products() *firestore.CollectionRef {
	return c.fs.Collection(collectionOr(c.cfg.ProductsCollection, "products"))
}

// Users returns the user profile collection reference.
func (c *Client) Users() *firestore.CollectionRef {
	return c.fs.Collection(collectionOr(c.cfg.UsersCollection, "users"))
}

// Ping reads at most one product document to verify connectivity and permissions.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.fs == nil {
		return errors.New("firestore client not initialized")
	}
	iter := c.Products().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.fs == nil {
		return nil
	}
	return c.fs.Close()
}

// IsNotFound reports whether err is a gRPC NotFound from Firestore.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func collectionOr(name, fallback string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fallback
}
