package main

import (
	"context"
	"errors"
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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/sbilibin2017/gw-todo-web/docs"
	"github.com/sbilibin2017/gw-todo-web/internal/deploy"
	"github.com/sbilibin2017/gw-todo-web/internal/handlers"
	"github.com/sbilibin2017/gw-todo-web/internal/jwt"
	"github.com/sbilibin2017/gw-todo-web/internal/logger"
	"github.com/sbilibin2017/gw-todo-web/internal/middlewares"
	"github.com/sbilibin2017/gw-todo-web/internal/repositories"
	"github.com/sbilibin2017/gw-todo-web/internal/services"
	"github.com/sbilibin2017/gw-todo-web/internal/views"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-todo-web
// @version 1.0.0
// @description Multi-user todo list with session authentication
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
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

// defaultSessionSecret signs session tokens when SESSION_SECRET_KEY is unset.
const defaultSessionSecret = "my_super_secret_key"

// config holds every setting read from the environment.
type config struct {
	AppHost     string
	AppPort     string
	LogLevel    string
	LogEncoding string

	MongoURI            string
	MongoDBName         string
	MongoConnectTimeout time.Duration

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	SessionSecretKey    string
	SessionExp          time.Duration
	SessionCookieSecure bool

	KafkaBrokers []string
	KafkaTopic   string

	DeployCommand string
	DeployDir     string
	DeployTimeout time.Duration
}

// warnInsecureDefaults logs a warning for every security setting left at its
// built-in default and reports whether any was found.
func warnInsecureDefaults(log *zap.SugaredLogger, cfg config) bool {
	insecure := false
	if cfg.SessionSecretKey == defaultSessionSecret {
		log.Warnw("SESSION_SECRET_KEY is not set, session tokens are signed with the built-in default key")
		insecure = true
	}
	return insecure
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, MongoDB, Redis, session, Kafka and deploy configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		n, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return time.Duration(n) * time.Second, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.LogEncoding = getEnv("APP_LOG_ENCODING", "json")

	// MongoDB config
	cfg.MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	cfg.MongoDBName = getEnv("MONGO_DBNAME", "todos")
	if cfg.MongoConnectTimeout, err = getSeconds("MONGO_CONNECT_TIMEOUT", "10"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}

	// Session config
	cfg.SessionSecretKey = getEnv("SESSION_SECRET_KEY", defaultSessionSecret)
	if cfg.SessionExp, err = getSeconds("SESSION_EXP_SECOND", "86400"); err != nil {
		return
	}
	if cfg.SessionCookieSecure, err = strconv.ParseBool(getEnv("SESSION_COOKIE_SECURE", "false")); err != nil {
		return
	}

	// Kafka config, publishing is off without brokers
	for _, broker := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "todo-events")

	// Deploy webhook config, the route is off without a command
	cfg.DeployCommand = getEnv("DEPLOY_COMMAND", "")
	cfg.DeployDir = getEnv("DEPLOY_DIR", "")
	if cfg.DeployTimeout, err = getSeconds("DEPLOY_TIMEOUT", "60"); err != nil {
		return
	}

	return
}

// run initializes the logger, MongoDB, Redis, Kafka and the HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel, cfg.LogEncoding); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	log := logger.Log
	log.Infof("Logger initialized with level %s", cfg.LogLevel)
	warnInsecureDefaults(log, cfg)

	// Connect to MongoDB
	log.Infow("Connecting to MongoDB", "database", cfg.MongoDBName)
	mongoDB, err := repositories.NewMongo(ctx, repositories.MongoConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDBName,
		ConnectTimeout: cfg.MongoConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("mongodb connection error: %w", err)
	}
	defer mongoDB.Close(context.Background())
	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongodb index creation failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer for todo events
	var events services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		writer := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
		defer writer.Close()
		events = writer
		log.Infow("Publishing todo events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.SessionSecretKey),
		jwt.WithExpiration(cfg.SessionExp),
		jwt.WithSecureCookie(cfg.SessionCookieSecure),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(mongoDB.Database)
	userWriteRepo := repositories.NewUserWriteRepository(mongoDB.Database)
	todoReadRepo := repositories.NewTodoReadRepository(mongoDB.Database)
	todoWriteRepo := repositories.NewTodoWriteRepository(mongoDB.Database)
	sessionRepo := repositories.NewSessionRepository(rdb, cfg.SessionExp)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, sessionRepo, tokens)
	todoService := services.NewTodoService(todoReadRepo, todoWriteRepo, events)

	renderer, err := views.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	var deployer handlers.Deployer
	if cfg.DeployCommand != "" {
		hook, err := deploy.New(cfg.DeployCommand, deploy.WithDir(cfg.DeployDir), deploy.WithTimeout(cfg.DeployTimeout))
		if err != nil {
			return fmt.Errorf("invalid deploy command: %w", err)
		}
		deployer = hook
	}

	r := newRouter(cfg, tokens, authService, todoService, renderer, deployer)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.DeployTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	log.Info("HTTP server stopped gracefully")
	return nil
}

// newRouter wires the handlers. The webhook route exists only with a deployer.
func newRouter(
	cfg config,
	tokens *jwt.JWT,
	authService *services.AuthService,
	todoService *services.TodoService,
	renderer *views.Renderer,
	deployer handlers.Deployer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(middlewares.SessionMiddleware(tokens, authService))

	// Public routes
	r.Get("/", handlers.NewHomeHandler(renderer))
	r.Get("/login", handlers.NewLoginPageHandler(renderer))
	r.Post("/login", handlers.NewLoginHandler(authService, tokens, renderer))
	r.Get("/register", handlers.NewRegisterPageHandler(renderer))
	r.Post("/register", handlers.NewRegisterHandler(authService, renderer))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireSession)
		r.Get("/logout", handlers.NewLogoutHandler(authService, tokens, renderer))
		r.Get("/account", handlers.NewAccountHandler(renderer))
		r.Get("/todos", handlers.NewListTodosHandler(todoService, renderer))
		r.Post("/add_todo", handlers.NewAddTodoHandler(todoService, renderer))
		r.Get("/edit/{id}", handlers.NewEditTodoPageHandler(todoService, renderer))
		r.Post("/edit/{id}", handlers.NewEditTodoHandler(todoService, renderer))
		r.Get("/delete/{id}", handlers.NewDeleteTodoHandler(todoService, renderer))
	})

	if deployer != nil {
		r.Post("/webhook", handlers.NewWebhookHandler(deployer))
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	return r
}
