package http

import (
	"net/http"

	"eventplanner/internal/auth"
	"eventplanner/internal/config"
	"eventplanner/internal/generate"
	"eventplanner/internal/http/handler"
	mw "eventplanner/internal/http/middleware"
	"eventplanner/internal/notify"
	"eventplanner/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Store    store.Store
	Generate *generate.Service
	Notify   notify.Publisher
	JWT      *auth.JWT
	Log      *zap.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(log.Named("http")))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireAuth := auth.RequireAuth(d.JWT)

	ah := &handler.AuthHandler{Store: d.Store, JWT: d.JWT, CookieSecure: cfg.CookieSecure, Log: log}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.Post("/auth/logout", ah.Logout)

	me := &handler.MeHandler{Store: d.Store, Log: log}
	r.With(requireAuth).Get("/me", me.Me)

	gh := &handler.GenerateHandler{Svc: d.Generate, Log: log, OwnerOnly: cfg.EventOwnershipCheck}
	r.Route("/generate", func(r chi.Router) {
		if cfg.EventOwnershipCheck {
			r.Use(requireAuth)
		}
		r.Post("/eventdata", gh.EventData)
		r.Post("/eventdocuments", gh.Documents)
		r.Post("/socialposts", gh.SocialPosts)
	})

	eh := &handler.EventHandler{Store: d.Store, Log: log}
	oh := &handler.OutputHandler{Store: d.Store, Notify: d.Notify, Log: log}
	r.Route("/events", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/", eh.Create)
		r.Get("/", eh.List)
		r.Get("/{id}", eh.Get)

		r.Get("/{id}/output", oh.Get)
		r.Patch("/{id}/output/tasks/{taskId}", oh.SetTaskDone)
		r.Put("/{id}/output/flow", oh.PutFlowDiagram)
	})

	return r
}
