package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"masterpiece/internal/http/handlers"
	"masterpiece/internal/middleware"
)

type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup

	// StateRateLimitPerMin budgets GET /v1/state apart from the other routes.
	StateRateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	// State is polled for the whole run, so it does not draw on the shared budget.
	r.With(middleware.RateLimit(opts.StateRateLimitPerMin, time.Minute)).Get("/v1/state", app.State)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))

		r.Route("/v1/credential", func(r chi.Router) {
			r.Get("/", app.CredentialStatus)
			r.Post("/select", app.CredentialSelect)
		})
		r.Put("/v1/image", app.ImagePut)
		r.Delete("/v1/image", app.ImageDelete)
		r.Put("/v1/prompt", app.PromptPut)
		r.Post("/v1/generate", app.Generate)
		r.Get("/v1/videos/{id}", app.Video)
	})

	return r
}
