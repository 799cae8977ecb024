package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Logger *zap.Logger

	Accounts      AccountService
	Videos        VideoService
	Comments      CommentService
	Playlists     PlaylistService
	Likes         LikeService
	Subscriptions SubscriptionService
	Tweets        TweetService
	Views         ViewReader

	Tokens    middleware.TokenVerifier
	Users     middleware.UserFinder
	AuthLimit middleware.RateLimiter
	Database  HealthChecker

	Uploads      Uploads
	CORSOrigins  []string
	SecureCookie bool
	// MediaDir is served under /media when the local media backend is active.
	MediaDir string
}

// NewRouter wires every endpoint onto a chi router.
func NewRouter(deps Dependencies) http.Handler {
	authn := middleware.NewAuthenticator(deps.Tokens, deps.Users, respondError)
	limit := middleware.Limit(deps.AuthLimit, "auth", respondError)

	health := HealthHandler{Database: deps.Database}
	users := UserHandler{Accounts: deps.Accounts, Views: deps.Views, Uploads: deps.Uploads, SecureCookie: deps.SecureCookie}
	videos := VideoHandler{Videos: deps.Videos, Views: deps.Views, Uploads: deps.Uploads}
	comments := CommentHandler{Comments: deps.Comments, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Views: deps.Views}
	likes := LikeHandler{Likes: deps.Likes, Views: deps.Views}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Views: deps.Views}
	tweets := TweetHandler{Tweets: deps.Tweets, Views: deps.Views}
	dashboard := DashboardHandler{Views: deps.Views}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusNotFound, errorEnvelope{StatusCode: http.StatusNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusMethodNotAllowed, errorEnvelope{StatusCode: http.StatusMethodNotAllowed, Message: "method not allowed"})
	})

	r.Get("/healthz", health.Ready)
	r.Handle("/metrics", promhttp.Handler())
	if deps.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Healthcheck)

		r.Route("/users", func(r chi.Router) {
			r.With(limit).Post("/register", users.Register)
			r.With(limit).Post("/login", users.Login)
			r.Post("/refresh", users.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/logout", users.Logout)
				r.Put("/edit-password", users.ChangePassword)
				r.Get("/me", users.Me)
				r.Put("/edit", users.UpdateAccount)
				r.Get("/c/{username}", users.Channel)
				r.Get("/history", users.History)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.With(authn.Optional).Get("/", videos.Search)
			r.With(authn.Optional).Get("/{videoId}", videos.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/", videos.Publish)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.With(authn.Optional).Get("/{videoId}", comments.List)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/{videoId}", comments.Add)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.Require)

			r.Route("/playlists", func(r chi.Router) {
				r.Post("/", playlists.Create)
				r.Get("/user/{userId}", playlists.ListByUser)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
				r.Get("/{playlistId}", playlists.Get)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", likes.Toggle(models.LikeTargetVideo, "videoId"))
				r.Post("/toggle/c/{commentId}", likes.Toggle(models.LikeTargetComment, "commentId"))
				r.Post("/toggle/t/{tweetId}", likes.Toggle(models.LikeTargetTweet, "tweetId"))
				r.Get("/videos", likes.LikedVideos)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", subscriptions.Toggle)
				r.Get("/c/{channelId}", subscriptions.Subscribers)
				r.Get("/u/{subscriberId}", subscriptions.Channels)
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", tweets.Create)
				r.Get("/user/{userId}", tweets.ListByUser)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboard.Stats)
				r.Get("/videos", dashboard.Videos)
			})
		})
	})

	return r
}
