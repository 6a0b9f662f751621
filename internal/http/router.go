// Package httpapi assembles the HTTP surface: middleware chain, public
// entry points, and the authenticated application routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"talenthunt/internal/auth"
	identityhandler "talenthunt/internal/identity/handler"
	platformmetrics "talenthunt/internal/platform/metrics"
	"talenthunt/internal/platform/middleware"
	profilehandler "talenthunt/internal/profile/handler"
	registrationhandler "talenthunt/internal/registration/handler"
	reviewhandler "talenthunt/internal/review/handler"
	"talenthunt/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *platformmetrics.Metrics
	Validator auth.Validator

	Registration *registrationhandler.Handler
	Identity     *identityhandler.Handler
	Profile      *profilehandler.Handler
	Review       *reviewhandler.Handler

	// Ready reports backing-store health for /healthz. Nil means always
	// healthy.
	Ready func(ctx context.Context) error
}

// NewRouter wires the middleware chain and all vertical handlers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", handleHealth(deps.Ready, deps.Logger))
	r.Method(http.MethodGet, "/metrics", platformmetrics.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
	})

	// Entry points: authenticated callers get bounced to /home.
	r.Group(func(public chi.Router) {
		public.Use(auth.RedirectAuthenticated(deps.Validator))
		deps.Registration.Register(public)
		deps.Identity.RegisterPublic(public)
	})

	// Application routes: session required.
	r.Group(func(protected chi.Router) {
		protected.Use(auth.RequireSession(deps.Validator, deps.Logger))
		deps.Identity.RegisterProtected(protected)
		deps.Review.Register(protected)
		deps.Profile.Register(protected)
	})

	return r
}

func handleHealth(ready func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
