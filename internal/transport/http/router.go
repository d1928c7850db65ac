package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/neighborly/engage/internal/handler"
	"github.com/neighborly/engage/internal/httputil"
	authmw "github.com/neighborly/engage/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	ReactionHandler   *handler.ReactionHandler
	CommentHandler    *handler.CommentHandler
	AttendanceHandler *handler.AttendanceHandler
	ShareHandler      *handler.ShareHandler
	SummaryHandler    *handler.SummaryHandler
	JWTSecret         string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Every engagement route requires a signed-in actor; the tenant in
	// the token scopes which content is visible.
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/targets/{kind}/liked", cfg.ReactionHandler.Liked)

		r.Route("/targets/{kind}/{id}", func(r chi.Router) {
			r.Post("/reaction", cfg.ReactionHandler.Toggle)
			r.Post("/comments", cfg.CommentHandler.Create)
			r.Get("/comments", cfg.CommentHandler.Thread)
			r.Post("/shares", cfg.ShareHandler.Share)
			r.Get("/summary", cfg.SummaryHandler.Get)
		})

		r.Route("/comments/{id}", func(r chi.Router) {
			r.Patch("/", cfg.CommentHandler.Edit)
			r.Delete("/", cfg.CommentHandler.Delete)
			r.Post("/reactions", cfg.ReactionHandler.ToggleCommentReaction)
		})

		r.Route("/events/{id}", func(r chi.Router) {
			r.Put("/attendance", cfg.AttendanceHandler.SetStatus)
			r.Get("/attendance", cfg.AttendanceHandler.GetStatus)
			r.Post("/checkins", cfg.AttendanceHandler.CheckIn)
			r.Get("/checkins", cfg.AttendanceHandler.ListCheckIns)
		})

		r.Get("/shares", cfg.ShareHandler.ListMine)
		r.Delete("/shares/{id}", cfg.ShareHandler.Delete)
	})

	return r
}
