package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DocStore      DocStoreConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Identity      IdentityConfig
	GCP           GCPConfig
	Firestore     FirestoreConfig
	GCS           GCSConfig
	Media         MediaConfig
	Catalog       CatalogConfig
	Cart          CartConfig
	PubSub        PubSubConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DocStore.Normalized() {
	case DocStoreFirestore:
		if strings.TrimSpace(c.GCP.ProjectID) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGCPProjectID, EnvDocStoreDriver, DocStoreFirestore)
		}
	case DocStorePostgres:
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	case DocStoreSQLite:
		if c.DB.DSN == "" {
			c.DB.DSN = defaultSQLiteDSN
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvDocStoreDriver, c.DocStore.Driver)
	}

	switch c.Identity.Normalized() {
	case IdentityFirebase:
		if strings.TrimSpace(c.Identity.FirebaseAPIKey) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvFirebaseAPIKey, EnvIdentityDriver, IdentityFirebase)
		}
	case IdentityLocal:
		if c.DocStore.Normalized() == DocStoreFirestore {
			return fmt.Errorf("%s=%s requires a SQL document store", EnvIdentityDriver, IdentityLocal)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvIdentityDriver, c.Identity.Driver)
	}

	if len(c.Catalog.Categories) == 0 {
		return fmt.Errorf("%s must list at least one category", EnvCatalogCategories)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DocStoreConfig struct {
	Driver      string `envconfig:"STOREFRONT_DOCSTORE_DRIVER" default:"firestore"`
	AutoMigrate bool   `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

// Normalized returns the lower-cased driver name.
func (d DocStoreConfig) Normalized() string {
	return strings.ToLower(strings.TrimSpace(d.Driver))
}

// IsSQL reports whether products and users live in a SQL database.
func (d DocStoreConfig) IsSQL() bool {
	switch d.Normalized() {
	case DocStorePostgres, DocStoreSQLite:
		return true
	}
	return false
}

type DBConfig struct {
	DSN string `envconfig:"STOREFRONT_DB_DSN"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"STOREFRONT_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOREFRONT_JWT_ISSUER" default:"techstore"`
	ExpirationMinutes      int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"STOREFRONT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	SignInWindow      time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNIN_WINDOW" default:"1m"`
	SignInEmailLimit  int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNIN_EMAIL_LIMIT" default:"5"`
	SignInIPLimit     int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNIN_IP_LIMIT" default:"20"`
	SignUpWindow      time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignUpEmailLimit  int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignUpIPLimit     int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type IdentityConfig struct {
	Driver         string   `envconfig:"STOREFRONT_IDENTITY_DRIVER" default:"firebase"`
	FirebaseAPIKey string   `envconfig:"STOREFRONT_FIREBASE_API_KEY"`
	FirebaseAPIURL string   `envconfig:"STOREFRONT_FIREBASE_API_URL" default:"https://identitytoolkit.googleapis.com/v1"`
	RequestURI     string   `envconfig:"STOREFRONT_IDENTITY_REQUEST_URI" default:"http://localhost"`
	AdminEmails    []string `envconfig:"STOREFRONT_ADMIN_EMAILS"`
}

// Normalized returns the lower-cased identity driver name.
func (i IdentityConfig) Normalized() string {
	return strings.ToLower(strings.TrimSpace(i.Driver))
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOREFRONT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOREFRONT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type FirestoreConfig struct {
	DatabaseID         string `envconfig:"STOREFRONT_FIRESTORE_DATABASE" default:"(default)"`
	ProductsCollection string `envconfig:"STOREFRONT_FIRESTORE_PRODUCTS_COLLECTION" default:"products"`
	UsersCollection    string `envconfig:"STOREFRONT_FIRESTORE_USERS_COLLECTION" default:"users"`
}

type GCSConfig struct {
	BucketName string `envconfig:"STOREFRONT_GCS_BUCKET_NAME" required:"true"`
	// URLStyle selects how download URLs are rendered: "firebase" or "gcs".
	URLStyle string `envconfig:"STOREFRONT_GCS_URL_STYLE" default:"firebase"`
}

type MediaConfig struct {
	MaxImageMB  int    `envconfig:"STOREFRONT_MEDIA_MAX_IMAGE_MB" default:"5"`
	ImagePrefix string `envconfig:"STOREFRONT_MEDIA_IMAGE_PREFIX" default:"images"`
	MaxFiles    int    `envconfig:"STOREFRONT_MEDIA_MAX_FILES" default:"20"`
}

// MaxImageBytes returns the per-file upload ceiling.
func (m MediaConfig) MaxImageBytes() int64 {
	if m.MaxImageMB <= 0 {
		return 5 * 1024 * 1024
	}
	return int64(m.MaxImageMB) * 1024 * 1024
}

type CatalogConfig struct {
	AllSentinel   string   `envconfig:"STOREFRONT_CATALOG_ALL_SENTINEL" default:"All Products"`
	Categories    []string `envconfig:"STOREFRONT_CATALOG_CATEGORIES" default:"Laptops,Headphones,Keyboards,Mice,Tablets,Storage"`
	Brands        []string `envconfig:"STOREFRONT_CATALOG_BRANDS" default:"Apple,Dell,HP,ASUS,Sony,Logitech,Samsung,Keychron,Razer,AudioTech,FitTrack,ComfortWear,PhotoPro,RunFast,HomeEssentials"`
	CommonTags    []string `envconfig:"STOREFRONT_CATALOG_COMMON_TAGS" default:"Premium,Professional,Creative,Gaming,Budget,Eco-Friendly,Wireless,Smart,Portable,Durable"`
	Colors        []string `envconfig:"STOREFRONT_CATALOG_COLORS" default:"Black,White,Red,Blue,Green,Yellow,Purple,Pink,Orange,Gray,Space Gray,Silver,Gold,Rose Gold"`
	PriceCeiling  float64  `envconfig:"STOREFRONT_CATALOG_PRICE_CEILING" default:"10000"`
	FeaturedLimit int      `envconfig:"STOREFRONT_CATALOG_FEATURED_LIMIT" default:"8"`
	RelatedLimit  int      `envconfig:"STOREFRONT_CATALOG_RELATED_LIMIT" default:"4"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"168h"`
}

type PubSubConfig struct {
	CatalogTopic string `envconfig:"STOREFRONT_PUBSUB_CATALOG_TOPIC"`
	// CreateTopic creates a missing topic at boot; meant for the emulator.
	CreateTopic bool `envconfig:"STOREFRONT_PUBSUB_CREATE_TOPIC" default:"false"`
}

// Enabled reports whether catalog events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.CatalogTopic) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
