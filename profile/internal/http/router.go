package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/respond"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/server"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/internal/domain"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/internal/service/profile"
)

// Router wires HTTP endpoints to the profile service.
type Router struct {
	chi.Router
	logger   *slog.Logger
	profiles profile.Service
}

// NewRouter assembles routes. requireAuth guards every /users route.
func NewRouter(logger *slog.Logger, appName string, profiles profile.Service, requireAuth func(http.Handler) http.Handler, dbHealth server.HealthCheck) *Router {
	checks := map[string]server.HealthCheck{}
	if dbHealth != nil {
		checks["database"] = dbHealth
	}
	r := &Router{
		Router:   server.NewRouter(server.Options{Service: "profile", AppName: appName, Logger: logger, Checks: checks}),
		logger:   logger,
		profiles: profiles,
	}
	r.Route("/users", func(sub chi.Router) {
		sub.Use(requireAuth)
		sub.Get("/me", r.handleGet)
		sub.Post("/me", r.handleCreate)
		sub.Put("/me", r.handleUpdate)
		sub.Delete("/me", r.handleDelete)
	})
	return r
}

type profileRequest struct {
	FullName string `json:"full_name"`
}

func (p profileRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Required, validation.Length(1, 200)),
	)
}

type profileView struct {
	ID         int64     `json:"id"`
	AuthUserID int64     `json:"auth_user_id"`
	FullName   string    `json:"full_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func newProfileView(p *domain.Profile) profileView {
	return profileView{ID: p.ID, AuthUserID: p.AuthUserID, FullName: p.FullName, CreatedAt: p.CreatedAt}
}

func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	found, err := r.profiles.Get(req.Context(), caller)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "User profile fetched successfully.", newProfileView(found))
}

func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	var payload profileRequest
	if err := server.DecodeJSON(req, &payload); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	created, err := r.profiles.Create(req.Context(), caller, payload.FullName)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusCreated, "User profile created successfully.", newProfileView(created))
}

func (r *Router) handleUpdate(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	var payload profileRequest
	if err := server.DecodeJSON(req, &payload); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	updated, err := r.profiles.Update(req.Context(), caller, payload.FullName)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "User profile updated successfully.", newProfileView(updated))
}

func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	if err := r.profiles.Delete(req.Context(), caller); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "User profile deleted successfully.", nil)
}
