package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DocStoreFirestore = "firestore"
	DocStorePostgres  = "postgres"
	DocStoreSQLite    = "sqlite"

	IdentityFirebase = "firebase"
	IdentityLocal    = "local"
)

const defaultSQLiteDSN = "file:storefront.db?_foreign_keys=on"

const (
	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvPort              = "STOREFRONT_APP_PORT"
	EnvDocStoreDriver    = "STOREFRONT_DOCSTORE_DRIVER"
	EnvDBDSN             = "STOREFRONT_DB_DSN"
	EnvDBHost            = "STOREFRONT_DB_HOST"
	EnvDBUser            = "STOREFRONT_DB_USER"
	EnvDBName            = "STOREFRONT_DB_NAME"
	EnvRedisURL          = "STOREFRONT_REDIS_URL"
	EnvJWTSecret         = "STOREFRONT_JWT_SECRET"
	EnvIdentityDriver    = "STOREFRONT_IDENTITY_DRIVER"
	EnvFirebaseAPIKey    = "STOREFRONT_FIREBASE_API_KEY"
	EnvAdminEmails       = "STOREFRONT_ADMIN_EMAILS"
	EnvGCPProjectID      = "STOREFRONT_GCP_PROJECT_ID"
	EnvGCSBucket         = "STOREFRONT_GCS_BUCKET_NAME"
	EnvCatalogCategories = "STOREFRONT_CATALOG_CATEGORIES"
	EnvPubSubTopic       = "STOREFRONT_PUBSUB_CATALOG_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
