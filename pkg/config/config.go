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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Search        SearchConfig
	OpenAI        OpenAIConfig
	WatchDB       WatchDBConfig
	ImageProxy    ImageProxyConfig
	Storage       StorageConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Search.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WATCHENGINE_APP_ENV" required:"true"`
	Port         string `envconfig:"WATCHENGINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WATCHENGINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WATCHENGINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"WATCHENGINE_DB_DSN"`
	Driver string `envconfig:"WATCHENGINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WATCHENGINE_DB_HOST"`
	LegacyPort     int    `envconfig:"WATCHENGINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WATCHENGINE_DB_USER"`
	LegacyPassword string `envconfig:"WATCHENGINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"WATCHENGINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"WATCHENGINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WATCHENGINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WATCHENGINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WATCHENGINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WATCHENGINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"WATCHENGINE_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WATCHENGINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WATCHENGINE_REDIS_ADDR"`
	Password     string        `envconfig:"WATCHENGINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"WATCHENGINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WATCHENGINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WATCHENGINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WATCHENGINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WATCHENGINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WATCHENGINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WATCHENGINE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WATCHENGINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WATCHENGINE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WATCHENGINE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WATCHENGINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WATCHENGINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WATCHENGINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WATCHENGINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WATCHENGINE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WATCHENGINE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WATCHENGINE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WATCHENGINE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WATCHENGINE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WATCHENGINE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WATCHENGINE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig drives the per-IP fixed window applied to every /api route.
type RateLimitConfig struct {
	Requests int           `envconfig:"WATCHENGINE_RATE_LIMIT_REQUESTS" default:"100"`
	Window   time.Duration `envconfig:"WATCHENGINE_RATE_LIMIT_WINDOW" default:"15m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WATCHENGINE_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WATCHENGINE_CORS_ALLOWED_ORIGINS" default:"https://watch-engine.onrender.com,http://localhost:5173"`
}

type SearchConfig struct {
	Provider            string   `envconfig:"WATCHENGINE_SEARCH_PROVIDER" default:"database"`
	SimilarityThreshold float64  `envconfig:"WATCHENGINE_SEARCH_SIMILARITY_THRESHOLD" default:"0.7"`
	DailyLimit          int      `envconfig:"WATCHENGINE_SEARCH_DAILY_LIMIT" default:"50"`
	MaxResults          int      `envconfig:"WATCHENGINE_SEARCH_MAX_RESULTS" default:"50"`
	CannedPhrases       []string `envconfig:"WATCHENGINE_SEARCH_CANNED_PHRASES" default:"find me a watch,show me watches,watches"`
}

func (s SearchConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case SearchProviderDatabase, SearchProviderLLM, SearchProviderCatalog:
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvSearchProvider, SearchProviderDatabase, SearchProviderLLM, SearchProviderCatalog)
	}
	if s.SimilarityThreshold < 0 || s.SimilarityThreshold > 1 {
		return fmt.Errorf("%s must be between 0 and 1", EnvSearchSimilarityThreshold)
	}
	return nil
}

type OpenAIConfig struct {
	APIKey              string        `envconfig:"WATCHENGINE_OPENAI_API_KEY"`
	BaseURL             string        `envconfig:"WATCHENGINE_OPENAI_BASE_URL"`
	ChatModel           string        `envconfig:"WATCHENGINE_OPENAI_CHAT_MODEL" default:"gpt-4-turbo"`
	EmbeddingModel      string        `envconfig:"WATCHENGINE_OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int           `envconfig:"WATCHENGINE_OPENAI_EMBEDDING_DIMENSIONS" default:"512"`
	Timeout             time.Duration `envconfig:"WATCHENGINE_OPENAI_TIMEOUT" default:"30s"`
	BreakerFailures     uint32        `envconfig:"WATCHENGINE_OPENAI_BREAKER_FAILURES" default:"5"`
	BreakerCooldown     time.Duration `envconfig:"WATCHENGINE_OPENAI_BREAKER_COOLDOWN" default:"30s"`
}

// Enabled reports whether an API key was supplied.
func (o OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

type WatchDBConfig struct {
	APIKey    string        `envconfig:"WATCHENGINE_RAPIDAPI_KEY"`
	Host      string        `envconfig:"WATCHENGINE_RAPIDAPI_HOST" default:"watch-database1.p.rapidapi.com"`
	BaseURL   string        `envconfig:"WATCHENGINE_WATCHDB_BASE_URL" default:"https://watch-database1.p.rapidapi.com"`
	PageSize  int           `envconfig:"WATCHENGINE_WATCHDB_PAGE_SIZE" default:"20"`
	PageDelay time.Duration `envconfig:"WATCHENGINE_WATCHDB_PAGE_DELAY" default:"1100ms"`
	Timeout   time.Duration `envconfig:"WATCHENGINE_WATCHDB_TIMEOUT" default:"15s"`
}

type ImageProxyConfig struct {
	AllowedHosts []string      `envconfig:"WATCHENGINE_IMAGE_PROXY_ALLOWED_HOSTS" default:"api-watches-v2.makingdatameaningful.com"`
	MaxBytes     int64         `envconfig:"WATCHENGINE_IMAGE_PROXY_MAX_BYTES" default:"10485760"`
	CacheMaxAge  time.Duration `envconfig:"WATCHENGINE_IMAGE_PROXY_CACHE_MAX_AGE" default:"24h"`
	Timeout      time.Duration `envconfig:"WATCHENGINE_IMAGE_PROXY_TIMEOUT" default:"10s"`
}

type StorageConfig struct {
	Endpoint      string `envconfig:"WATCHENGINE_STORAGE_ENDPOINT"`
	AccessKey     string `envconfig:"WATCHENGINE_STORAGE_ACCESS_KEY"`
	SecretKey     string `envconfig:"WATCHENGINE_STORAGE_SECRET_KEY"`
	Region        string `envconfig:"WATCHENGINE_STORAGE_REGION"`
	UseSSL        bool   `envconfig:"WATCHENGINE_STORAGE_USE_SSL" default:"true"`
	Bucket        string `envconfig:"WATCHENGINE_STORAGE_BUCKET" default:"profile-images"`
	PublicBaseURL string `envconfig:"WATCHENGINE_STORAGE_PUBLIC_BASE_URL"`
	MaxUploadMB   int    `envconfig:"WATCHENGINE_STORAGE_MAX_UPLOAD_MB" default:"5"`
}

// Enabled reports whether an object storage endpoint was configured.
func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.Endpoint) != ""
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
