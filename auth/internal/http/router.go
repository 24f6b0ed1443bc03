package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/internal/service/auth"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/guard"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/middleware"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/respond"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/server"
)

// Router wires HTTP endpoints to the auth service.
type Router struct {
	chi.Router
	logger *slog.Logger
	auth   auth.Service
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, appName string, authSvc auth.Service, dbHealth server.HealthCheck) *Router {
	checks := map[string]server.HealthCheck{}
	if dbHealth != nil {
		checks["database"] = dbHealth
	}
	r := &Router{
		Router: server.NewRouter(server.Options{Service: "auth", AppName: appName, Logger: logger, Checks: checks}),
		logger: logger,
		auth:   authSvc,
	}
	r.Route("/auth", func(sub chi.Router) {
		sub.Post("/register", r.handleRegister)
		sub.Post("/login", r.handleLogin)
		sub.Post("/validate-token", r.handleValidate)
		sub.Get("/me", r.handleMe)
	})
	return r
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentialsRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

type validateRequest struct {
	Token string `json:"token"`
}

func (v validateRequest) Validate() error {
	return validation.ValidateStruct(&v, validation.Field(&v.Token, validation.Required))
}

type userView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type tokenView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	var payload credentialsRequest
	if err := server.DecodeJSON(req, &payload); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	user, err := r.auth.Register(req.Context(), payload.Email, payload.Password)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusCreated, "User registered successfully.", userView{ID: user.ID, Email: user.Email})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var payload credentialsRequest
	if err := server.DecodeJSON(req, &payload); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	token, err := r.auth.Authenticate(req.Context(), payload.Email, payload.Password)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "User logged-in successfully.", tokenView{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   int(token.ExpiresIn / time.Second),
	})
}

func (r *Router) handleValidate(w http.ResponseWriter, req *http.Request) {
	var payload validateRequest
	if err := server.DecodeJSON(req, &payload); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	claims, err := r.auth.Validate(req.Context(), payload.Token)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "User validated successfully.", claims)
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	token, err := guard.BearerToken(req.Header.Get("Authorization"))
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respond.Failure(w, http.StatusUnauthorized, apperr.KindMissingCredential, "Not authenticated", "")
		return
	}
	user, err := r.auth.Me(req.Context(), token)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	if setter, ok := w.(middleware.ContextSetter); ok {
		setter.SetContext(identity.NewContext(req.Context(), identity.Claims{Subject: user.ID, Email: user.Email}))
	}
	respond.Success(w, http.StatusOK, "User fetched successfully.", userView{
		ID:        user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	})
}
