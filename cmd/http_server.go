package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/admin-management/internal"
	"github.com/frahmantamala/admin-management/internal/auth"
	authpg "github.com/frahmantamala/admin-management/internal/auth/postgres"
	"github.com/frahmantamala/admin-management/internal/captcha"
	"github.com/frahmantamala/admin-management/internal/core/events"
	"github.com/frahmantamala/admin-management/internal/dept"
	deptpg "github.com/frahmantamala/admin-management/internal/dept/postgres"
	"github.com/frahmantamala/admin-management/internal/menu"
	menupg "github.com/frahmantamala/admin-management/internal/menu/postgres"
	"github.com/frahmantamala/admin-management/internal/operlog"
	operlogpg "github.com/frahmantamala/admin-management/internal/operlog/postgres"
	"github.com/frahmantamala/admin-management/internal/permission"
	permissionpg "github.com/frahmantamala/admin-management/internal/permission/postgres"
	"github.com/frahmantamala/admin-management/internal/post"
	postpg "github.com/frahmantamala/admin-management/internal/post/postgres"
	"github.com/frahmantamala/admin-management/internal/role"
	rolepg "github.com/frahmantamala/admin-management/internal/role/postgres"
	sessionredis "github.com/frahmantamala/admin-management/internal/session/redis"
	"github.com/frahmantamala/admin-management/internal/transport/middleware"
	"github.com/frahmantamala/admin-management/internal/transport/rest"
	"github.com/frahmantamala/admin-management/internal/user"
	userpg "github.com/frahmantamala/admin-management/internal/user/postgres"
	"github.com/frahmantamala/admin-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Redis    *goredis.Client
	Router   *chi.Mux
	Logger   *slog.Logger
	EventBus *events.EventBus
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
		if err := deps.Redis.Close(); err != nil {
			slog.Error("Redis close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over database connection: %w", err)
	}

	redisClient, err := initRedis(config.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	sessionStore := sessionredis.NewStore(redisClient, config.Security.SessionTTL, config.Redis.CallTimeout, log)

	resolver := permission.NewResolver(permissionpg.NewRepository(gormDB))

	tokens, err := auth.NewJWTTokenService(config.Security.JWTSecret, config.Security.TokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to build token service: %w", err)
	}

	captchaSvc := captcha.NewService(redisClient, config.Security.CaptchaTTL)
	var verifier auth.CaptchaVerifier
	if config.Security.CaptchaEnabled {
		verifier = captchaSvc
	}

	authSvc := auth.NewService(
		authpg.NewRepository(gormDB),
		resolver,
		sessionStore,
		tokens,
		verifier,
		config.Security.TokenDuration,
		config.Security.BCryptCost,
		log,
	)

	bus := events.NewEventBus(log)

	operlogSvc := operlog.NewService(operlogpg.NewOperLogRepository(gormDB), log)
	operlogSvc.RegisterSubscriber(bus)

	// Role and grant edits invalidate cached permission sets in live sessions.
	bus.Subscribe(events.EventTypePermissionsChanged, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload().(events.PermissionsChangedPayload)
		if !ok {
			return fmt.Errorf("unexpected payload for %s event", event.EventType())
		}
		sessionStore.RefreshPermissions(ctx, payload.UserIDs, resolver.ResolveByUserID)
		return nil
	})

	userSvc := user.NewService(userpg.NewUserRepository(gormDB), resolver, bus, config.Security.BCryptCost, log)
	roleSvc := role.NewService(rolepg.NewRoleRepository(gormDB), bus, log)
	menuSvc := menu.NewService(menupg.NewMenuRepository(gormDB), log)
	deptSvc := dept.NewService(deptpg.NewDeptRepository(gormDB), log)
	postSvc := post.NewService(postpg.NewPostRepository(gormDB), log)

	authn := middleware.NewAuthenticator(tokens, sessionStore, config.Security.SessionTTL, config.Security.RefreshThreshold, log)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, redisClient, authn, bus, rest.Handlers{
		Auth:    auth.NewHandler(authSvc, captchaSvc),
		User:    user.NewHandler(userSvc),
		Role:    role.NewHandler(roleSvc),
		Menu:    menu.NewHandler(menuSvc),
		Dept:    dept.NewHandler(deptSvc),
		Post:    post.NewHandler(postSvc),
		OperLog: operlog.NewHandler(operlogSvc),
	}, log)

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Redis:    redisClient,
		Router:   router,
		Logger:   log,
		EventBus: bus,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initRedis(cfg internal.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
