package config

// EnvPrefix is handed to envconfig; every field carries its full variable name in a tag.
const EnvPrefix = "WATCHENGINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	SearchProviderDatabase = "database"
	SearchProviderLLM      = "llm"
	SearchProviderCatalog  = "catalog"
)

const (
	EnvAppEnv   = "WATCHENGINE_APP_ENV"
	EnvPort     = "WATCHENGINE_APP_PORT"
	EnvLogLevel = "WATCHENGINE_LOG_LEVEL"

	EnvDBDSN  = "WATCHENGINE_DB_DSN"
	EnvDBHost = "WATCHENGINE_DB_HOST"
	EnvDBUser = "WATCHENGINE_DB_USER"
	EnvDBName = "WATCHENGINE_DB_NAME"

	EnvRedisURL = "WATCHENGINE_REDIS_URL"

	EnvJWTSecret              = "WATCHENGINE_JWT_SECRET"
	EnvJWTIssuer              = "WATCHENGINE_JWT_ISSUER"
	EnvJWTExpMins             = "WATCHENGINE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WATCHENGINE_REFRESH_TOKEN_TTL_MINUTES"

	EnvRateLimitRequests = "WATCHENGINE_RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "WATCHENGINE_RATE_LIMIT_WINDOW"

	EnvSearchProvider            = "WATCHENGINE_SEARCH_PROVIDER"
	EnvSearchSimilarityThreshold = "WATCHENGINE_SEARCH_SIMILARITY_THRESHOLD"
	EnvSearchDailyLimit          = "WATCHENGINE_SEARCH_DAILY_LIMIT"

	EnvOpenAIAPIKey      = "WATCHENGINE_OPENAI_API_KEY"
	EnvRapidAPIKey       = "WATCHENGINE_RAPIDAPI_KEY"
	EnvImageProxyHosts   = "WATCHENGINE_IMAGE_PROXY_ALLOWED_HOSTS"
	EnvCORSOrigins       = "WATCHENGINE_CORS_ALLOWED_ORIGINS"
	EnvStorageEndpoint   = "WATCHENGINE_STORAGE_ENDPOINT"
	EnvStoragePublicBase = "WATCHENGINE_STORAGE_PUBLIC_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
