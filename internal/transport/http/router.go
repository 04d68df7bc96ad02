package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"socialnet/internal/handler"
	"socialnet/internal/httputil"
	"socialnet/internal/logging"
	"socialnet/internal/metrics"
	authmw "socialnet/internal/transport/http/middleware"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	FollowHandler  *handler.FollowHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	TagHandler     *handler.TagHandler

	Tokens authmw.TokenParser
	DB     Pinger
	Logger logrus.FieldLogger

	// APILimiter and AuthLimiter are optional per-IP limits.
	APILimiter  *authmw.RateLimiter
	AuthLimiter *authmw.RateLimiter
	CORSOrigins []string

	// UploadDir is served under UploadURLPrefix when set (local storage backend).
	UploadDir       string
	UploadURLPrefix string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(authmw.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := cfg.DB.PingContext(ctx); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	if cfg.UploadDir != "" {
		prefix := "/" + strings.Trim(cfg.UploadURLPrefix, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get(prefix+"/*", fs.ServeHTTP)
	}

	requireAuth := authmw.AuthMiddleware(cfg.Tokens)
	optionalAuth := authmw.OptionalAuthMiddleware(cfg.Tokens)

	r.Route("/api", func(r chi.Router) {
		if cfg.APILimiter != nil {
			r.Use(cfg.APILimiter.Handler)
		}

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(cfg.AuthLimiter.Handler)
				}
				r.Post("/register", cfg.AuthHandler.Register)
				r.Post("/login", cfg.AuthHandler.Login)
			})
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.With(requireAuth).Get("/me", cfg.AuthHandler.Me)
		})

		// Public routes
		r.Get("/tags", cfg.TagHandler.List)
		r.With(optionalAuth).Get("/posts/all", cfg.PostHandler.ListAll)

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/posts", func(r chi.Router) {
				r.Post("/", cfg.PostHandler.Create)
				r.Get("/feed", cfg.PostHandler.Feed)
				r.Get("/{id}", cfg.PostHandler.GetByID)
				r.Put("/{id}", cfg.PostHandler.Update)
				r.Delete("/{id}", cfg.PostHandler.Delete)
				r.Post("/{id}/like", cfg.PostHandler.ToggleLike)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Post("/post/{postId}", cfg.CommentHandler.Create)
				r.Get("/post/{postId}", cfg.CommentHandler.List)
				r.Post("/{id}/like", cfg.CommentHandler.ToggleLike)
				r.Delete("/{id}", cfg.CommentHandler.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", cfg.UserHandler.GetOwnProfile)
				r.Get("/profile/{id}", cfg.UserHandler.GetProfile)
				r.Put("/profile", cfg.UserHandler.UpdateProfile)
				r.Post("/avatar", cfg.UserHandler.UploadAvatar)
				r.Get("/search", cfg.UserHandler.Search)
				r.Post("/follow/{id}", cfg.FollowHandler.Follow)
				r.Post("/unfollow/{id}", cfg.FollowHandler.Unfollow)
			})
		})
	})

	return r
}
