package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/gcp"
	"github.com/techstore/storefront-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub catalog topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client owns the Pub/Sub connection and the catalog topic name.
type Client struct {
	client       *pubsub.Client
	catalogTopic string
}

// NewClient connects and makes sure the catalog topic exists. PUBSUB_EMULATOR_HOST
// is honoured by the SDK.
func NewClient(ctx context.Context, gcpCfg config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcpCfg.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	if !cfg.Enabled() {
		return nil, errNoTopic
	}

	psClient, err := pubsub.NewClient(ctx, project, gcp.ClientOptions(gcpCfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c, err := wrap(ctx, psClient, project, cfg)
	if err != nil {
		_ = psClient.Close()
		return nil, err
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", c.catalogTopic), "pubsub client initialized")
	}
	return c, nil
}

func wrap(ctx context.Context, psClient *pubsub.Client, project string, cfg config.PubSubConfig) (*Client, error) {
	topic := TopicResourceName(project, cfg.CatalogTopic)
	if topic == "" {
		return nil, errNoTopic
	}
	c := &Client{client: psClient, catalogTopic: topic}

	err := c.topicExists(ctx)
	if cfg.CreateTopic && status.Code(err) == codes.NotFound {
		_, err = psClient.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: topic})
		if status.Code(err) == codes.AlreadyExists {
			err = nil
		}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) topicExists(ctx context.Context) error {
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.catalogTopic})
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("topic %s does not exist: %w", c.catalogTopic, err)
	}
	return fmt.Errorf("checking topic %s: %w", c.catalogTopic, err)
}

// CatalogPublisher returns the publisher for catalog mutation events.
func (c *Client) CatalogPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Publisher(c.catalogTopic)
}

// Ping verifies connectivity by looking the catalog topic up.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	return c.topicExists(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// TopicResourceName expands a bare topic id into projects/<p>/topics/<id>.
// Full resource names pass through.
func TopicResourceName(projectID, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/") {
		return name
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/topics/" + name
}
