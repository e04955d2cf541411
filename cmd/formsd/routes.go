package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/formbuilder/internal/api/http"
	auth "github.com/mind-engage/formbuilder/internal/auth/middleware"
	"github.com/mind-engage/formbuilder/internal/logging"
	"github.com/mind-engage/formbuilder/internal/rbac"
)

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.Middleware(a.log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/auth/login", auth.LoginHandler(a.auth, a.accounts))

	// Public: respondents fill forms without an account.
	r.Get("/api/forms/public/{id}", api.PublicFormHandler(a.forms))
	r.Post("/api/submissions", api.SubmitHandler(a.submit))
	r.Post("/api/leads/track", api.TrackLeadHandler(a.tracker))
	r.Route("/assets", func(ar chi.Router) {
		api.MountAssets(ar, a.blobs)
	})

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(a.auth))

		pr.With(rbac.Require(rbac.PermFormView)).Get("/api/forms", api.ListFormsHandler(a.forms))
		pr.With(rbac.Require(rbac.PermFormEdit)).Post("/api/forms", api.CreateFormHandler(a.forms))
		pr.With(rbac.Require(rbac.PermFormView)).Get("/api/forms/{id}", api.GetFormHandler(a.forms))
		pr.With(rbac.Require(rbac.PermFormEdit)).Patch("/api/forms/{id}", api.UpdateFormHandler(a.forms))
		pr.With(rbac.Require(rbac.PermFormEdit)).Delete("/api/forms/{id}", api.DeleteFormHandler(a.forms))
		pr.With(rbac.Require(rbac.PermFormView)).Get("/api/forms/{id}/pages", api.FormPagesHandler(a.forms))
		pr.With(rbac.Require(rbac.PermFormEdit)).Post("/api/forms/{id}/duplicate", api.DuplicateFormHandler(a.forms))

		pr.With(rbac.Require(rbac.PermSubmissionView)).Get("/api/submissions", api.ListSubmissionsHandler(a.submissions))
		pr.With(rbac.Require(rbac.PermSubmissionExport)).Get("/api/submissions/export.csv", api.ExportSubmissionsHandler(a.forms, a.submissions, a.log))
		pr.With(rbac.Require(rbac.PermSubmissionView)).Get("/api/submissions/{id}", api.GetSubmissionHandler(a.submissions))
		pr.With(rbac.Require(rbac.PermSubmissionDelete)).Delete("/api/submissions/{id}", api.DeleteSubmissionHandler(a.submit))

		pr.With(rbac.Require(rbac.PermTemplateView)).Get("/api/templates", api.ListTemplatesHandler(a.templates))
		pr.With(rbac.Require(rbac.PermTemplateEdit)).Post("/api/templates", api.CreateTemplateHandler(a.templates, a.forms))
		pr.With(rbac.Require(rbac.PermTemplateView)).Get("/api/templates/{id}", api.GetTemplateHandler(a.templates))
		pr.With(rbac.Require(rbac.PermTemplateEdit)).Delete("/api/templates/{id}", api.DeleteTemplateHandler(a.templates))
		pr.With(rbac.Require(rbac.PermFormEdit)).Post("/api/templates/{id}/use", api.UseTemplateHandler(a.templates, a.forms))

		pr.With(rbac.Require(rbac.PermSettingsView)).Get("/api/settings", api.GetWorkspaceSettingsHandler(a.settings))
		pr.With(rbac.Require(rbac.PermSettingsEdit)).Put("/api/settings", api.PutWorkspaceSettingsHandler(a.settings))
		pr.With(rbac.Require(rbac.PermSettingsView)).Get("/api/settings/{key}", api.GetSettingHandler(a.settings))
		pr.With(rbac.Require(rbac.PermSettingsEdit)).Put("/api/settings/{key}", api.PutSettingHandler(a.settings))

		pr.With(rbac.Require(rbac.PermUploadLogo)).Post("/api/upload/logo", api.UploadLogoHandler(a.blobs, a.cfg.MaxLogoBytes))

		pr.With(rbac.Require(rbac.PermLeadView)).Get("/api/leads", api.ListLeadsHandler(a.leads))
		pr.With(rbac.Require(rbac.PermLeadView)).Get("/api/leads/stats", api.LeadStatsHandler(a.leads))
		pr.With(rbac.Require(rbac.PermLeadView)).Get("/api/leads/{id}", api.GetLeadHandler(a.leads))
		pr.With(rbac.Require(rbac.PermLeadUpdate)).Patch("/api/leads/{id}", api.UpdateLeadHandler(a.tracker))

		pr.With(rbac.Require(rbac.PermFormView)).Get("/api/completion-pages", api.ListCompletionPagesHandler(a.completions))
		pr.With(rbac.Require(rbac.PermFormEdit)).Post("/api/completion-pages", api.CreateCompletionPageHandler(a.completions))
		pr.With(rbac.Require(rbac.PermFormEdit)).Put("/api/completion-pages/{id}", api.PutCompletionPageHandler(a.completions))
		pr.With(rbac.Require(rbac.PermFormEdit)).Delete("/api/completion-pages/{id}", api.DeleteCompletionPageHandler(a.completions))

		pr.With(rbac.Require(rbac.PermEventsView)).Get("/api/events", api.ListEventsHandler(a.events))
	})

	return r
}
