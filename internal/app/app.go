package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gomongo "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/auth"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/config"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/dial"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/domain"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/mongo"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/redis"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/scheduler"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/service"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store/memory"
	mongostore "github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store/mongo"
	redisstore "github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/store/redis"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/titles"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	mongoClient *gomongo.Client
	importer    *scheduler.BookmarkImporter
}

// stores is the pair of collections selected by configuration.
type stores struct {
	notes     store.Collection[*domain.Note]
	bookmarks store.Collection[*domain.Bookmark]
	checks    []deps.Check
}

// New loads configuration and connects every dependency. ctx bounds the
// connection retries.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if cfg.LogLevel == "debug" {
		loggerClient.Debugf("cfg: %+v", cfg.Redacted())
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		loggerClient.Warn("using the default JWT secret, set NOTESD_JWT_SECRET in production")
	}

	a := &App{cfg: cfg, logger: loggerClient}

	// Redis backs the redis store and the title cache; both are optional.
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		a.redisClient, err = redis.New(ctx, redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			RedisDB:      cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry:        retryOptions(cfg, cfg.RedisConnectTimeout),
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
	}

	st, err := a.openStores(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	notes := service.NewNotes(st.notes)
	bookmarks := service.NewBookmarks(st.bookmarks, a.titleResolver())

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		a.close()
		return nil, err
	}

	var importTrigger chan struct{}
	if cfg.ImportFile != "" {
		loggerClient.Info("bookmark import file configured",
			logger.String("file", cfg.ImportFile),
			logger.String("owner", cfg.ImportOwner))
		importTrigger = make(chan struct{}, 1)
		a.importer = scheduler.NewBookmarkImporter(
			cfg.ImportFile,
			bookmarks,
			cfg.ImportOwner,
			loggerClient,
			cfg.ImportInterval,
			importTrigger,
		)
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Verifier:      verifier,
		DefaultOwner:  cfg.DefaultOwner,
		Notes:         notes,
		Bookmarks:     bookmarks,
		ReadyChecks:   st.checks,
		ImportTrigger: importTrigger,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func retryOptions(cfg *config.Config, connectTimeout time.Duration) dial.RetryOptions {
	return dial.RetryOptions{
		ConnectTimeout: connectTimeout,
		RetryInterval:  cfg.ConnectRetryInterval,
		MaxWait:        cfg.ConnectMaxWait,
		PingTimeout:    cfg.ConnectPingTimeout,
		WarnThreshold:  cfg.ConnectWarnThreshold,
	}
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	cfg := a.cfg
	var st stores

	switch cfg.Store {
	case config.StoreMongo:
		client, db, err := mongo.New(ctx, mongo.ConnectOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Retry:    retryOptions(cfg, cfg.MongoConnectTimeout),
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		a.mongoClient = client

		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		st.notes = mongostore.NewCollection(db, store.NotesCollection, newNote)
		st.bookmarks = mongostore.NewCollection(db, store.BookmarksCollection, newBookmark)

	case config.StoreRedis:
		st.notes = redisstore.NewCollection(a.redisClient, store.NotesCollection, newNote)
		st.bookmarks = redisstore.NewCollection(a.redisClient, store.BookmarksCollection, newBookmark)

	case config.StoreMemory:
		a.logger.Warn("using the in-memory store, data is lost on restart")
		st.notes = memory.NewCollection[*domain.Note]()
		st.bookmarks = memory.NewCollection[*domain.Bookmark]()

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if p, ok := st.notes.(store.Pinger); ok {
		st.checks = append(st.checks, deps.Check{Name: "store", Ping: p.Ping})
	}
	// With the redis store the check above already covers Redis.
	if a.redisClient != nil && cfg.Store != config.StoreRedis {
		client := a.redisClient
		st.checks = append(st.checks, deps.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	a.logger.Info("store initialized", logger.String("backend", cfg.Store))
	return &st, nil
}

// titleResolver fetches page titles, through the Redis cache when there is one.
func (a *App) titleResolver() *titles.Resolver {
	var opts []titles.Option
	if a.redisClient != nil && a.cfg.TitleCacheTTL > 0 {
		opts = append(opts, titles.WithCache(redisstore.NewTitleCache(a.redisClient, a.cfg.TitleCacheTTL)))
		a.logger.Info("title cache enabled", logger.Duration("ttl", a.cfg.TitleCacheTTL))
	}
	return titles.New(a.cfg.TitleTimeout, a.logger, opts...)
}

func newNote() *domain.Note         { return &domain.Note{} }
func newBookmark() *domain.Bookmark { return &domain.Bookmark{} }

// Run serves until ctx is done, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting notesd %s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("notesd %s", version.String())
	defer a.close()

	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start bookmark importer: %w", err)
		}
		a.logger.Info("bookmark importer started",
			logger.Duration("interval", a.cfg.ImportInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.importer != nil {
		a.importer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ notesd stopped cleanly")
	return nil
}

// close releases the database connections. Safe to call more than once.
func (a *App) close() {
	if a.importer != nil {
		a.importer.Stop()
	}

	if a.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.logger.Warnf("failed to disconnect mongo: %v", err)
		} else {
			a.logger.Info("✅ Mongo disconnected cleanly")
		}
		cancel()
		a.mongoClient = nil
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
		a.redisClient = nil
	}

	_ = a.logger.Sync()
}
