package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-survey-admin/internal/config"
	"go-survey-admin/internal/handler"
	"go-survey-admin/internal/middleware"
	"go-survey-admin/internal/model"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Surveys *handler.SurveyHandler
	Program *handler.ProgramHandler
	Audit   *handler.AuditHandler
	Health  *handler.HealthHandler
	Docs    *handler.DocsHandler
}

// New builds the route table. Every protected route names its role set
// here; routes without RequireRoles are open.
func New(cfg *config.Config, auth *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", h.Health.Live)
	r.Get("/health/ready", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	admin := auth.RequireRoles(model.RoleAdmin)
	staff := auth.RequireRoles(model.RoleAdmin, model.RoleSpecialist)
	member := auth.RequireRoles(model.RoleAdmin, model.RoleSpecialist, model.RoleUser)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(auth.Authenticate)

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Get("/", h.Auth.FindByUsername)
		})

		api.Route("/users", func(ur chi.Router) {
			ur.With(staff).Get("/", h.Users.Get)
			ur.With(admin).Get("/find-all", h.Users.FindAll)
			ur.With(admin).Post("/create", h.Users.Create)
			ur.With(admin).Put("/update/{id}", h.Users.Update)
			ur.With(admin).Delete("/delete/{id}", h.Users.Delete)
			ur.With(member).Put("/change-password/{id}", h.Users.ChangePassword)
			ur.Get("/list-specialist", h.Users.ListSpecialists)
			ur.With(admin).Get("/list-user", h.Users.ListUsers)
		})

		api.Route("/survey", func(sr chi.Router) {
			sr.Get("/", h.Surveys.Get)
			sr.Get("/find-all", h.Surveys.FindAll)
			sr.With(staff).Post("/create", h.Surveys.Create)
			sr.With(staff).Put("/update/{id}", h.Surveys.Update)
			sr.With(staff).Delete("/delete/{id}", h.Surveys.Delete)
		})

		api.Route("/programs", func(pr chi.Router) {
			pr.Get("/", h.Program.Get)
			pr.Get("/find-all", h.Program.FindAll)
			pr.With(admin).Get("/statistics", h.Program.Statistics)
			pr.With(admin).Post("/create", h.Program.Create)
			pr.With(admin).Put("/update/{id}", h.Program.Update)
			pr.With(admin).Delete("/delete/{id}", h.Program.Delete)
			pr.With(member).Post("/register/{id}", h.Program.Register)
		})

		api.With(admin).Get("/audit", h.Audit.List)
	})

	return r
}
