package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/filekit/internal/facades"
	"github.com/sbilibin2017/filekit/internal/handlers"
	"github.com/sbilibin2017/filekit/internal/jwt"
	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/middlewares"
	"github.com/sbilibin2017/filekit/internal/pdfinfo"
	"github.com/sbilibin2017/filekit/internal/ratelimit"
	"github.com/sbilibin2017/filekit/internal/repositories"
	"github.com/sbilibin2017/filekit/internal/services"
	"github.com/sbilibin2017/filekit/internal/storage"
	"github.com/sbilibin2017/filekit/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sbilibin2017/filekit/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config is everything read from the environment at startup.
type config struct {
	AppHost     string
	AppPort     string
	LogLevel    string
	RequireAuth bool

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int
	MigrationsDir  string

	// RedisHost left empty disables the signin rate limit.
	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	SigninRateLimit   int
	SigninRateWindow  time.Duration

	// No brokers means file events are not published.
	KafkaBrokers []string
	KafkaTopic   string

	JWTSecretKey string
	JWTExp       time.Duration

	LlamaAPIKey       string
	LlamaBaseURL      string
	LlamaPollInterval time.Duration
	LlamaMaxPolls     int

	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIEmbeddingModel string
	OpenAIChatModel      string

	ExternalTimeout time.Duration

	StagingDir string
	OutputDir  string
	UploadsDir string

	DefaultUserPassword string
}

// @title filekit API
// @version 1.0.0
// @description Invoice scanning backend: accounts, templates and CSV extraction from PDF invoices
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application configuration. Variables already set in the environment win.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		n, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	if cfg.RequireAuth, err = strconv.ParseBool(getEnv("APP_REQUIRE_AUTH", "false")); err != nil {
		return cfg, fmt.Errorf("APP_REQUIRE_AUTH: %w", err)
	}

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", "migrations")

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}
	if cfg.SigninRateLimit, err = getInt("SIGNIN_RATE_LIMIT", "5"); err != nil {
		return
	}
	windowSecond, err := getInt("SIGNIN_RATE_WINDOW_SECOND", "60")
	if err != nil {
		return
	}
	cfg.SigninRateWindow = time.Duration(windowSecond) * time.Second

	// Kafka config
	for _, broker := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "file-events")

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	jwtExpSecond, err := getInt("JWT_EXP_SECOND", "3600")
	if err != nil {
		return
	}
	cfg.JWTExp = time.Duration(jwtExpSecond) * time.Second

	// External services
	cfg.LlamaAPIKey = getEnv("LLAMA_API_KEY", "")
	cfg.LlamaBaseURL = getEnv("LLAMA_BASE_URL", "")
	pollMS, err := getInt("LLAMA_POLL_INTERVAL_MS", "1000")
	if err != nil {
		return
	}
	cfg.LlamaPollInterval = time.Duration(pollMS) * time.Millisecond
	if cfg.LlamaMaxPolls, err = getInt("LLAMA_MAX_POLLS", "120"); err != nil {
		return
	}
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", "")
	cfg.OpenAIEmbeddingModel = getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small")
	cfg.OpenAIChatModel = getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini")
	timeoutSecond, err := getInt("EXTERNAL_TIMEOUT_SECOND", "120")
	if err != nil {
		return
	}
	cfg.ExternalTimeout = time.Duration(timeoutSecond) * time.Second

	// Storage config
	cfg.StagingDir = getEnv("STORAGE_STAGING_DIR", "data/staging")
	cfg.OutputDir = getEnv("STORAGE_OUTPUT_DIR", "data/output")
	cfg.UploadsDir = getEnv("STORAGE_UPLOADS_DIR", "data/uploads")

	cfg.DefaultUserPassword = getEnv("DEFAULT_USER_PASSWORD", "111111")

	return cfg, nil
}

// app holds the services the router serves.
type app struct {
	db          *sqlx.DB
	auth        *services.AuthService
	users       *services.UserService
	templates   *services.TemplateService
	files       *services.FileService
	scan        *services.ScanService
	tokener     middlewares.Tokener
	limiter     middlewares.Limiter // nil disables the signin limit
	requireAuth bool
	swaggerURL  string
}

// run initializes the logger, database, Redis, Kafka, external facades and
// HTTP server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d/%s", cfg.PGHost, cfg.PGPort, cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("PostgreSQL ping failed: %w", err)
	}

	if err := migrations.Up(ctx, db.DB, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Connect to Redis
	var limiter middlewares.Limiter
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis connection error: %w", err)
		}
		defer rdb.Close()

		fw, err := ratelimit.NewFixedWindowLimiter(rdb, "filekit:signin", cfg.SigninRateLimit, cfg.SigninRateWindow)
		if err != nil {
			return err
		}
		limiter = fw
		logger.Log.Infow("signin rate limit enabled", "limit", cfg.SigninRateLimit, "window", cfg.SigninRateWindow)
	}

	// Kafka producer
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		kafkaWriter = w
		logger.Log.Infow("file events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Initialize JWT service
	tokens := jwt.New(cfg.JWTSecretKey, cfg.JWTExp)

	// External services and local storage
	parser := facades.NewLlamaParseFacade(cfg.LlamaAPIKey, cfg.LlamaBaseURL, cfg.ExternalTimeout, cfg.LlamaPollInterval, cfg.LlamaMaxPolls)
	openai := facades.NewOpenAIFacade(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbeddingModel, cfg.OpenAIChatModel, cfg.ExternalTimeout)
	store, err := storage.NewLocalStore(cfg.StagingDir, cfg.OutputDir, cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("failed to prepare storage: %w", err)
	}

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db, middlewares.GetTxFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetTxFromContext)
	fileReadRepo := repositories.NewFileReadRepository(db, middlewares.GetTxFromContext)
	fileWriteRepo := repositories.NewFileWriteRepository(db, middlewares.GetTxFromContext)
	templateReadRepo := repositories.NewTemplateReadRepository(db, middlewares.GetTxFromContext)
	templateWriteRepo := repositories.NewTemplateWriteRepository(db, middlewares.GetTxFromContext)

	// Initialize services
	a := &app{
		db:          db,
		auth:        services.NewAuthService(userReadRepo, userWriteRepo, tokens),
		users:       services.NewUserService(userReadRepo, userWriteRepo, cfg.DefaultUserPassword),
		templates:   services.NewTemplateService(templateReadRepo, templateWriteRepo, store),
		files:       services.NewFileService(fileReadRepo, fileWriteRepo, store, kafkaWriter),
		scan:        services.NewScanService(store, pdfinfo.NewCounter(), parser, openai, openai, fileWriteRepo, kafkaWriter),
		tokener:     tokens,
		limiter:     limiter,
		requireAuth: cfg.RequireAuth,
		swaggerURL:  fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort),
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

// newRouter mounts every endpoint under /api/v1. Mutating admin routes run
// inside a request transaction.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.CORSMiddleware)
	r.Use(middlewares.LoggingMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", handlers.NewSignupHandler(a.auth))
		r.Group(func(r chi.Router) {
			if a.limiter != nil {
				r.Use(middlewares.RateLimitMiddleware(a.limiter))
			}
			r.Post("/auth/signin", handlers.NewSigninHandler(a.auth))
		})

		r.Group(func(r chi.Router) {
			if a.requireAuth {
				r.Use(middlewares.AuthMiddleware(a.tokener))
			}

			r.Get("/users/get-users", handlers.NewGetUsersHandler(a.users))
			r.Get("/admin/get-templates", handlers.NewGetTemplatesHandler(a.templates))
			r.Post("/admin/get-templates", handlers.NewGetTemplatesHandler(a.templates))

			r.Post("/file/scan", handlers.NewScanHandler(a.scan))
			r.Get("/file/get-files", handlers.NewGetFilesHandler(a.files))
			r.Get("/file/get-all-files", handlers.NewGetAllFilesHandler(a.files))
			r.Get("/file/download/{id}", handlers.NewDownloadHandler(a.files))

			r.Group(func(r chi.Router) {
				r.Use(middlewares.TxMiddleware(a.db))
				r.Post("/admin/add-user", handlers.NewAddUserHandler(a.users))
				r.Post("/admin/update-user", handlers.NewUpdateUserHandler(a.users))
				r.Delete("/admin/delete-user/{id}", handlers.NewDeleteUserHandler(a.users))
				r.Post("/admin/add-template", handlers.NewAddTemplateHandler(a.templates))
				r.Delete("/admin/delete-file/{id}", handlers.NewDeleteFileHandler(a.files))
			})
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(a.swaggerURL)))

	return r
}
