package http

import (
	"net/http"

	"ritualos/internal/auth"
	"ritualos/internal/config"
	"ritualos/internal/http/handler"
	mw "ritualos/internal/http/middleware"
	"ritualos/internal/notify"
	"ritualos/internal/ritual"
	"ritualos/internal/ritual/gen"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, svc *ritual.Service, gateway *gen.Gateway) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{DB: db}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	rh := &handler.RitualHandler{Svc: svc, Gateway: gateway, DB: db}
	r.Route("/rituals", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/generate", rh.Generate)
		r.Post("/complete", rh.Complete)
		r.Get("/systems", rh.Systems)
		r.Get("/stats", rh.Stats)
		r.Post("/insight", rh.Insight)
	})

	nh := &handler.NotificationHandler{Store: &notify.Store{DB: db}}
	r.Route("/notifications", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", nh.List)
		r.Post("/{id}/read", nh.MarkRead)
	})

	return r
}
