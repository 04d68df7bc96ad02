package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/handler"
	"socialnet/internal/logging"
	"socialnet/internal/redis"
	"socialnet/internal/repository"
	"socialnet/internal/service"
	"socialnet/internal/storage"
	authmw "socialnet/internal/transport/http/middleware"
	"socialnet/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the long-lived resources the API is built from.
type Dependencies struct {
	Config *config.Config
	DB     *sqlx.DB
	Store  storage.ImageStore
	// TagCache is optional.
	TagCache cache.TagCache
	Logger   logrus.FieldLogger
	// APILimiter and AuthLimiter are optional.
	APILimiter  *authmw.RateLimiter
	AuthLimiter *authmw.RateLimiter
}

// NewHandler wires repositories, services and handlers into the API router.
func NewHandler(deps Dependencies) stdhttp.Handler {
	log := deps.Logger
	db := deps.DB

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)

	mediaService := service.NewMediaService(deps.Store, logging.Component(log, "media"))
	authService := service.NewAuthService(deps.Config)
	postService := service.NewPostService(db, postRepo, userRepo, tagRepo, commentRepo, mediaService, logging.Component(log, "posts"))
	userService := service.NewUserService(userRepo, followRepo, postService, mediaService, logging.Component(log, "users"))
	commentService := service.NewCommentService(db, commentRepo, postRepo, logging.Component(log, "comments"))
	followService := service.NewFollowService(followRepo, userRepo, logging.Component(log, "follows"))
	tagService := service.NewTagService(tagRepo, deps.TagCache, logging.Component(log, "tags"))

	handlerLog := logging.Component(log, "http")

	cfg := RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService, handlerLog),
		UserHandler:    handler.NewUserHandler(userService, handlerLog),
		FollowHandler:  handler.NewFollowHandler(followService, handlerLog),
		PostHandler:    handler.NewPostHandler(postService, handlerLog),
		CommentHandler: handler.NewCommentHandler(commentService, handlerLog),
		TagHandler:     handler.NewTagHandler(tagService, handlerLog),
		Tokens:         authService,
		DB:             db,
		Logger:         handlerLog,
		APILimiter:     deps.APILimiter,
		AuthLimiter:    deps.AuthLimiter,
		CORSOrigins:    deps.Config.CORSOrigins,
	}
	if local, ok := deps.Store.(*storage.LocalStore); ok {
		cfg.UploadDir = local.Dir()
		cfg.UploadURLPrefix = deps.Config.UploadURLPrefix
	}

	return NewRouter(cfg)
}

// Run loads configuration, connects the backing services and serves the API
// until SIGINT or SIGTERM, then shuts down gracefully.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Optional Redis for the tag cache
	var tagCache cache.TagCache
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, tag cache disabled")
		} else {
			defer rdb.Close()
			tagCache = cache.NewTagCache(rdb.Client, logging.Component(logger, "cache"))
		}
	}

	// 4. Image storage
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	// 5. Counter reconciler
	reconciler := worker.NewReconciler(
		repository.NewCounterRepository(db),
		logging.Component(logger, "reconciler"),
	)
	if err := reconciler.Start(ctx, cfg.ReconcileSchedule); err != nil {
		return err
	}
	defer reconciler.Stop()

	// 6. HTTP server
	limiterStop := make(chan struct{})
	defer close(limiterStop)
	apiLimiter := authmw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logging.Component(logger, "ratelimit"))
	authLimiter := authmw.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, logging.Component(logger, "ratelimit"))
	apiLimiter.StartCleanup(5*time.Minute, limiterStop)
	authLimiter.StartCleanup(5*time.Minute, limiterStop)

	srv := &stdhttp.Server{
		Addr: ":" + cfg.ServerPort,
		Handler: NewHandler(Dependencies{
			Config:      cfg,
			DB:          db,
			Store:       store,
			TagCache:    tagCache,
			Logger:      logger,
			APILimiter:  apiLimiter,
			AuthLimiter: authLimiter,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
