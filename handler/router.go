package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/interceptor"
	"github.com/adri-yano/social-media-app/metrics"
	"github.com/adri-yano/social-media-app/middleware"
	"github.com/adri-yano/social-media-app/pkg/password"
	"github.com/adri-yano/social-media-app/publisher"
	"github.com/adri-yano/social-media-app/repository"
	"github.com/adri-yano/social-media-app/service"
	"github.com/adri-yano/social-media-app/session"
	"github.com/adri-yano/social-media-app/storage"
)

// Route names. The authorization gate lets the public ones through without a
// session.
const (
	RouteRegister          = "auth.register"
	RouteLogin             = "auth.login"
	RouteLogout            = "auth.logout"
	RouteMe                = "auth.me"
	RouteListPosts         = "posts.list"
	RouteCreatePost        = "posts.create"
	RouteUploadPostImage   = "posts.image"
	RouteGetPost           = "posts.get"
	RouteUpdatePost        = "posts.update"
	RouteDeletePost        = "posts.delete"
	RouteToggleLike        = "posts.like"
	RouteListComments      = "comments.list"
	RouteCreateComment     = "comments.create"
	RouteUpdateComment     = "comments.update"
	RouteDeleteComment     = "comments.delete"
	RouteToggleFollow      = "follows.toggle"
	RouteGetUser           = "users.get"
	RouteGetUserByUsername = "users.byUsername"
	RouteUpdateUser        = "users.update"
	RouteUploadAvatar      = "users.avatar"
	RouteFollowers         = "users.followers"
	RouteFollowing         = "users.following"
	RouteHealth            = "health"
	RouteMetrics           = "metrics"
	RouteLoginPage         = "pages.login"
	RouteRegisterPage      = "pages.register"
	RoutePages             = "pages"
)

// PublicRoutes are served without a session.
var PublicRoutes = []string{
	RouteRegister,
	RouteLogin,
	RouteLogout,
	RouteMe,
	RouteListPosts,
	RouteGetPost,
	RouteListComments,
	RouteGetUser,
	RouteGetUserByUsername,
	RouteFollowers,
	RouteFollowing,
	RouteHealth,
	RouteMetrics,
	RouteLoginPage,
	RouteRegisterPage,
}

// Deps carries everything the router wires into the handlers.
type Deps struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Likes    repository.LikeRepository
	Follows  repository.FollowRepository

	Sessions  *session.Manager
	Hasher    *password.Hasher
	Storage   storage.Uploader
	Publisher *publisher.EventPublisher
	Metrics   *metrics.Metrics
	Logger    logrus.FieldLogger

	// Health reports whether the backing store is reachable.
	Health func(ctx context.Context) error

	MaxUploadBytes int64
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewRouter builds the API handler: CORS, then the request timeout, then the
// mux with logging, metrics and the authorization gate.
func NewRouter(deps Deps) http.Handler {
	uploader := &mediaUploader{store: deps.Storage, metrics: deps.Metrics, maxBytes: deps.MaxUploadBytes}
	n := &notifier{publisher: deps.Publisher, metrics: deps.Metrics, logger: deps.Logger}
	feed := service.NewFeedBuilder(deps.Posts, deps.Users, deps.Follows)

	authHandler := NewAuthHandler(deps.Users, deps.Sessions, deps.Hasher, deps.Logger)
	userHandler := NewUserHandler(deps.Users, uploader, deps.Logger)
	feedHandler := NewFeedHandler(feed, deps.Logger)
	postHandler := NewPostHandler(deps.Posts, uploader, n, deps.Logger)
	likeHandler := NewLikeHandler(deps.Likes, deps.Metrics, n, deps.Logger)
	commentHandler := NewCommentHandler(deps.Comments, deps.Posts, n, deps.Logger)
	followHandler := NewFollowHandler(deps.Follows, deps.Users, deps.Metrics, n, deps.Logger)

	gate := interceptor.NewAuthInterceptor(deps.Sessions, session.TokenFromRequest, PublicRoutes)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(gate.Middleware)

	router.HandleFunc("/healthz", healthHandler(deps.Health)).Methods(http.MethodGet).Name(RouteHealth)
	router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet).Name(RouteMetrics)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost).Name(RouteRegister)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost).Name(RouteLogin)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost).Name(RouteLogout)
	api.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet).Name(RouteMe)

	api.HandleFunc("/posts", feedHandler.ListPosts).Methods(http.MethodGet).Name(RouteListPosts)
	api.HandleFunc("/posts", postHandler.CreatePost).Methods(http.MethodPost).Name(RouteCreatePost)
	api.HandleFunc("/posts/image", postHandler.UploadImage).Methods(http.MethodPost).Name(RouteUploadPostImage)
	api.HandleFunc("/posts/{id}", postHandler.GetPost).Methods(http.MethodGet).Name(RouteGetPost)
	api.HandleFunc("/posts/{id}", postHandler.UpdatePost).Methods(http.MethodPatch).Name(RouteUpdatePost)
	api.HandleFunc("/posts/{id}", postHandler.DeletePost).Methods(http.MethodDelete).Name(RouteDeletePost)
	api.HandleFunc("/posts/{id}/like", likeHandler.ToggleLike).Methods(http.MethodPost).Name(RouteToggleLike)
	api.HandleFunc("/posts/{id}/comments", commentHandler.GetComments).Methods(http.MethodGet).Name(RouteListComments)
	api.HandleFunc("/posts/{id}/comments", commentHandler.CreateComment).Methods(http.MethodPost).Name(RouteCreateComment)

	api.HandleFunc("/comments/{id}", commentHandler.UpdateComment).Methods(http.MethodPatch).Name(RouteUpdateComment)
	api.HandleFunc("/comments/{id}", commentHandler.DeleteComment).Methods(http.MethodDelete).Name(RouteDeleteComment)

	api.HandleFunc("/follow/{id}", followHandler.ToggleFollow).Methods(http.MethodPost).Name(RouteToggleFollow)

	api.HandleFunc("/users/by-username/{username}", userHandler.GetProfileByUsername).Methods(http.MethodGet).Name(RouteGetUserByUsername)
	api.HandleFunc("/users/{id}", userHandler.GetProfile).Methods(http.MethodGet).Name(RouteGetUser)
	api.HandleFunc("/users/{id}", userHandler.UpdateProfile).Methods(http.MethodPatch).Name(RouteUpdateUser)
	api.HandleFunc("/users/{id}/avatar", userHandler.UploadAvatar).Methods(http.MethodPost).Name(RouteUploadAvatar)
	api.HandleFunc("/users/{id}/followers", followHandler.GetFollowers).Methods(http.MethodGet).Name(RouteFollowers)
	api.HandleFunc("/users/{id}/following", followHandler.GetFollowing).Methods(http.MethodGet).Name(RouteFollowing)

	// Pages are rendered by the client. Registering them here lets the gate
	// send anonymous visitors to the login page.
	router.HandleFunc("/login", pageHandler).Methods(http.MethodGet, http.MethodHead).Name(RouteLoginPage)
	router.HandleFunc("/register", pageHandler).Methods(http.MethodGet, http.MethodHead).Name(RouteRegisterPage)
	router.PathPrefix("/").
		MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool { return !interceptor.IsAPIPath(r.URL.Path) }).
		Methods(http.MethodGet, http.MethodHead).
		HandlerFunc(pageHandler).
		Name(RoutePages)

	var h http.Handler = router
	if deps.RequestTimeout > 0 {
		h = middleware.TimeoutMiddleware(deps.RequestTimeout)(h)
	}
	return middleware.NewCORSMiddleware(deps.AllowedOrigins).Handler(h)
}

// pageHandler answers page routes that passed the gate. No UI is served
// from this process.
func pageHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
