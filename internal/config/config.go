package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "NOTESD"

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// DefaultJWTSecret matches the secret historical clients were issued tokens with.
const DefaultJWTSecret = "secret"

const defaultMongoDatabase = "notes-bookmarks"

type Config struct {
	ListenAddr      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 10s
	RequestTimeout  time.Duration // per-request deadline, must exceed TitleTimeout
	MaxBodyBytes    int64

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "mongo" | "redis" | "memory"

	// Mongo
	MongoURI            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration

	// Redis (store backend and title cache)
	RedisAddr           string // empty => no Redis
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting

	// Connection retry, shared by Mongo and Redis
	ConnectRetryInterval time.Duration // initial wait between retries, grows exponentially
	ConnectMaxWait       time.Duration // max wait between retries
	ConnectPingTimeout   time.Duration
	ConnectWarnThreshold int // warn after this many attempts

	// Identity
	JWTSecret    string
	DefaultOwner string

	// Titles
	TitleTimeout  time.Duration
	TitleCacheTTL time.Duration // 0 => no title cache

	// Access
	CORSOrigins         []string // empty => all origins
	AllowedHosts        []string // empty => any Host
	AllowedCIDRS        []string // restricts /readyz and the import trigger
	TrustProxy          bool
	RateLimitBurst      int // 0 => disabled
	RateLimitRefillPerM int

	// Bookmark import
	ImportFile     string // empty => importer disabled
	ImportOwner    string
	ImportInterval time.Duration // 0 => startup only
}

// Load reads the configuration from NOTESD_* environment variables and, when
// NOTESD_CONFIG_FILE is set, a YAML file whose keys are the lower-case names
// without the prefix (listen_addr, mongo_uri, ...).
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// Environment names the web client's deployment already used.
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("mongo_uri", envPrefix+"_MONGO_URI", "MONGODB_URI")
	_ = v.BindEnv("jwt_secret", envPrefix+"_JWT_SECRET", "JWT_SECRET")

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	p := &parser{v: v}
	cfg := &Config{
		ListenAddr:      listenAddr(v),
		ShutdownTimeout: p.duration("shutdown_timeout"),
		RequestTimeout:  p.duration("request_timeout"),
		MaxBodyBytes:    v.GetInt64("max_body_bytes"),

		LogLevel:  strings.ToLower(v.GetString("log_level")),
		PrettyLog: v.GetBool("pretty_log"),

		Store: strings.ToLower(strings.TrimSpace(v.GetString("store"))),

		MongoURI:            v.GetString("mongo_uri"),
		MongoDatabase:       mongoDatabase(v),
		MongoConnectTimeout: p.duration("mongo_connect_timeout"),

		RedisAddr:           v.GetString("redis_addr"),
		RedisUser:           v.GetString("redis_username"),
		RedisPassword:       v.GetString("redis_password"),
		RedisDB:             v.GetInt("redis_db"),
		RedisDT:             p.duration("redis_dial_timeout"),
		RedisRT:             p.duration("redis_read_timeout"),
		RedisWT:             p.duration("redis_write_timeout"),
		RedisPoolSize:       v.GetInt("redis_pool_size"),
		RedisConnectTimeout: p.duration("redis_connect_timeout"),

		ConnectRetryInterval: p.duration("connect_retry_interval"),
		ConnectMaxWait:       p.duration("connect_max_wait"),
		ConnectPingTimeout:   p.duration("connect_ping_timeout"),
		ConnectWarnThreshold: v.GetInt("connect_warn_threshold"),

		JWTSecret:    v.GetString("jwt_secret"),
		DefaultOwner: strings.TrimSpace(v.GetString("default_owner")),

		TitleTimeout:  p.duration("title_timeout"),
		TitleCacheTTL: p.duration("title_cache_ttl"),

		CORSOrigins:         p.list("cors_origins"),
		AllowedHosts:        p.list("allowed_hosts"),
		AllowedCIDRS:        p.list("allowed_cidrs"),
		TrustProxy:          v.GetBool("trust_proxy"),
		RateLimitBurst:      v.GetInt("rate_limit_burst"),
		RateLimitRefillPerM: v.GetInt("rate_limit_refill_per_min"),

		ImportFile:     v.GetString("bookmark_import_file"),
		ImportOwner:    strings.TrimSpace(v.GetString("bookmark_import_owner")),
		ImportInterval: p.duration("bookmark_import_interval"),
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")

	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("max_body_bytes", 1<<20)

	v.SetDefault("log_level", "info")
	v.SetDefault("pretty_log", false)

	v.SetDefault("store", StoreMongo)

	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "") // empty => database of the URI, then defaultMongoDatabase
	v.SetDefault("mongo_connect_timeout", "30s")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_username", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_dial_timeout", "5s")
	v.SetDefault("redis_read_timeout", "3s")
	v.SetDefault("redis_write_timeout", "3s")
	v.SetDefault("redis_pool_size", 10)
	v.SetDefault("redis_connect_timeout", "30s")

	v.SetDefault("connect_retry_interval", "2s")
	v.SetDefault("connect_max_wait", "10s")
	v.SetDefault("connect_ping_timeout", "5s")
	v.SetDefault("connect_warn_threshold", 3)

	v.SetDefault("jwt_secret", DefaultJWTSecret)
	v.SetDefault("default_owner", "default-user")

	v.SetDefault("title_timeout", "5s")
	v.SetDefault("title_cache_ttl", "24h")

	v.SetDefault("cors_origins", "")
	v.SetDefault("allowed_hosts", "")
	v.SetDefault("allowed_cidrs", "")
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_limit_burst", 0)
	v.SetDefault("rate_limit_refill_per_min", 60)

	v.SetDefault("bookmark_import_file", "")
	v.SetDefault("bookmark_import_owner", "default-user")
	v.SetDefault("bookmark_import_interval", "24h")
}

// mongoDatabase prefers an explicit mongo_database, then the database named
// in the URI path (mongodb://host/notes), then defaultMongoDatabase.
func mongoDatabase(v *viper.Viper) string {
	if name := strings.TrimSpace(v.GetString("mongo_database")); name != "" {
		return name
	}
	if name := databaseFromURI(v.GetString("mongo_uri")); name != "" {
		return name
	}
	return defaultMongoDatabase
}

// databaseFromURI returns the path segment of a MongoDB connection string.
// Hosts may be a comma separated seed list, so the URI is split by hand.
func databaseFromURI(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	path, _, _ = strings.Cut(path, "?")
	return strings.TrimSpace(path)
}

// listenAddr prefers an explicit listen_addr, then PORT, then the default.
func listenAddr(v *viper.Viper) string {
	addr := v.GetString("listen_addr")
	if _, ok := os.LookupEnv(envPrefix + "_LISTEN_ADDR"); ok || v.InConfig("listen_addr") {
		return addr
	}
	if port := strings.TrimSpace(v.GetString("port")); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}
	return addr
}

// Validate reports invalid combinations of settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("mongo store requires mongo_uri"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("mongo store requires mongo_database"))
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis store requires redis_addr"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want mongo, redis or memory)", c.Store))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr must not be empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret must not be empty"))
	}
	if c.DefaultOwner == "" {
		errs = append(errs, errors.New("default_owner must not be empty"))
	}
	if c.TitleTimeout <= 0 {
		errs = append(errs, errors.New("title_timeout must be positive"))
	}
	if c.RequestTimeout <= c.TitleTimeout {
		errs = append(errs, fmt.Errorf("request_timeout (%s) must exceed title_timeout (%s)", c.RequestTimeout, c.TitleTimeout))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	if c.TitleCacheTTL < 0 || c.ImportInterval < 0 {
		errs = append(errs, errors.New("title_cache_ttl and bookmark_import_interval must not be negative"))
	}
	if c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate_limit_burst must not be negative"))
	}
	if c.ImportFile != "" && c.ImportOwner == "" {
		errs = append(errs, errors.New("bookmark_import_file requires bookmark_import_owner"))
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.JWTSecret != "" {
		c.JWTSecret = "***REDACTED***"
	}
	c.MongoURI = redactURI(c.MongoURI)
	return c
}

func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return uri
	}
	return scheme + "://***REDACTED***@" + rest[at+1:]
}

type parser struct {
	v   *viper.Viper
	err error
}

// duration parses a Go duration; the first failure is kept.
func (p *parser) duration(key string) time.Duration {
	raw := strings.TrimSpace(p.v.GetString(key))
	if raw == "" || raw == "0" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid duration for %s: %q", key, raw)
	}
	return d
}

// list accepts a YAML sequence or a comma-separated string.
func (p *parser) list(key string) []string {
	switch p.v.Get(key).(type) {
	case []any, []string:
		return splitAndTrim(strings.Join(p.v.GetStringSlice(key), ","))
	}
	return splitAndTrim(p.v.GetString(key))
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
