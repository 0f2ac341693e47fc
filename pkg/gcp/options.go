package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/techstore/storefront-backend/pkg/config"
)

// ClientOptions converts the GCP credentials config into options shared by the
// Google SDK clients. Empty credentials fall back to application default credentials.
func ClientOptions(cfg config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}
	case strings.TrimSpace(cfg.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.ApplicationCredentials)}
	default:
		return nil
	}
}
