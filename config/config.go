package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values. Secrets have no
// in-code defaults and must come from the environment or the config file.
type AppConfig struct {
	AppPort         string
	JWTSecret       string
	SessionTTLHours int // lifetime of issued session tokens
	GinMode         string
	GinPath         string

	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	RateLimitPerMinute int

	// Feed behavior
	PageSize            int // posts per page, one global constant for every feed
	FeedCacheTTLSeconds int // staleness window of the global feed page cache
	MediaRoot           string

	GitHubClientID     string
	GitHubClientSecret string
	OAuthRedirectBase  string

	AllowedOrigins []string
	AdminUsernames []string
}

// fileConfig mirrors the grouped layout of config/config.json.
type fileConfig struct {
	App struct {
		AppPort             string   `json:"AppPort"`
		JWTSecret           string   `json:"JWTSecret"`
		SessionTTLHours     int      `json:"SessionTTLHours"`
		RateLimitPerMinute  int      `json:"RateLimitPerMinute"`
		PageSize            int      `json:"PageSize"`
		FeedCacheTTLSeconds int      `json:"FeedCacheTTLSeconds"`
		MediaRoot           string   `json:"MediaRoot"`
		AllowedOrigins      []string `json:"AllowedOrigins"`
		AdminUsernames      []string `json:"AdminUsernames"`
	} `json:"app"`
	Database struct {
		DatabaseURI string `json:"DatabaseURI"`
		DBHost      string `json:"DBHost"`
		DBPort      string `json:"DBPort"`
		DBUser      string `json:"DBUser"`
		DBPassword  string `json:"DBPassword"`
		DBName      string `json:"DBName"`
	} `json:"database"`
	Redis struct {
		RedisHost     string `json:"RedisHost"`
		RedisPort     int    `json:"RedisPort"`
		RedisDB       int    `json:"RedisDB"`
		RedisPassword string `json:"RedisPassword"`
	} `json:"redis"`
	Log struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		GinMode    string `json:"GinMode"`
		GinPath    string `json:"GinPath"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
	OAuth struct {
		GitHubClientID     string `json:"GitHubClientID"`
		GitHubClientSecret string `json:"GitHubClientSecret"`
		RedirectBase       string `json:"RedirectBase"`
	} `json:"oauth"`
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration once during boot.
// Precedence: config/config.json -> defaults -> environment overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads the grouped JSON file into out. A missing file is
// fine; invalid JSON is fatal since running on half a config is worse.
func loadJSONConfig(path string, out *AppConfig) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		log.Fatalf("invalid config file %s: %v", path, err)
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.SessionTTLHours = fc.App.SessionTTLHours
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.PageSize = fc.App.PageSize
	out.FeedCacheTTLSeconds = fc.App.FeedCacheTTLSeconds
	out.MediaRoot = fc.App.MediaRoot
	out.AllowedOrigins = fc.App.AllowedOrigins
	out.AdminUsernames = fc.App.AdminUsernames

	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName

	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.GinMode = fc.Log.GinMode
	out.GinPath = fc.Log.GinPath
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress

	out.GitHubClientID = fc.OAuth.GitHubClientID
	out.GitHubClientSecret = fc.OAuth.GitHubClientSecret
	out.OAuthRedirectBase = fc.OAuth.RedirectBase
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 72
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin_access.log"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "inkline"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.PageSize == 0 {
		c.PageSize = 10
	}
	if c.FeedCacheTTLSeconds == 0 {
		c.FeedCacheTTLSeconds = 20
	}
	if c.MediaRoot == "" {
		c.MediaRoot = "media"
	}
	if c.OAuthRedirectBase == "" {
		c.OAuthRedirectBase = "http://localhost:8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			*dst = mustParseInt(key, v)
		}
	}

	setStr("APP_PORT", &c.AppPort)
	setStr("JWT_SECRET", &c.JWTSecret)
	setInt("SESSION_TTL_HOURS", &c.SessionTTLHours)
	setStr("GIN_MODE", &c.GinMode)
	setStr("GIN_PATH", &c.GinPath)

	setStr("DATABASE_URI", &c.DatabaseURI)
	setStr("DB_HOST", &c.DBHost)
	setStr("DB_PORT", &c.DBPort)
	setStr("DB_USER", &c.DBUser)
	setStr("DB_PASSWORD", &c.DBPassword)
	setStr("DB_NAME", &c.DBName)

	setStr("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setStr("REDIS_PASSWORD", &c.RedisPassword)

	setStr("LOG_LEVEL", &c.LogLevel)
	setStr("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}

	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	setInt("PAGE_SIZE", &c.PageSize)
	setInt("FEED_CACHE_TTL_SECONDS", &c.FeedCacheTTLSeconds)
	setStr("MEDIA_ROOT", &c.MediaRoot)

	setStr("GITHUB_CLIENT_ID", &c.GitHubClientID)
	setStr("GITHUB_CLIENT_SECRET", &c.GitHubClientSecret)
	setStr("OAUTH_REDIRECT_BASE_URL", &c.OAuthRedirectBase)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("ADMIN_USERNAMES"); v != "" {
		c.AdminUsernames = splitAndTrim(v)
	}
}

func mustParseInt(key, val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value for %s: %v", key, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
