package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/respond"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/server"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/internal/domain"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/task/internal/service/task"
)

const maxTitleLength = 255

// Router wires HTTP endpoints to the task service.
type Router struct {
	chi.Router
	logger *slog.Logger
	tasks  task.Service
}

// NewRouter assembles routes. requireAuth guards every /tasks route.
func NewRouter(logger *slog.Logger, appName string, tasks task.Service, requireAuth func(http.Handler) http.Handler, dbHealth server.HealthCheck) *Router {
	checks := map[string]server.HealthCheck{}
	if dbHealth != nil {
		checks["database"] = dbHealth
	}
	r := &Router{
		Router: server.NewRouter(server.Options{Service: "task", AppName: appName, Logger: logger, Checks: checks}),
		logger: logger,
		tasks:  tasks,
	}
	r.Route("/tasks", func(sub chi.Router) {
		sub.Use(requireAuth)
		sub.Post("/", r.handleCreate)
		sub.Get("/", r.handleList)
		sub.Get("/{id}", r.handleGet)
		sub.Put("/{id}", r.handleUpdate)
		sub.Delete("/{id}", r.handleDelete)
	})
	return r
}

type createRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (c createRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (u updateRequest) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
		validation.Field(&u.Status, validation.NilOrNotEmpty, validation.In(domain.StatusPending, domain.StatusCompleted)),
	)
}

type taskView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func newTaskView(t *domain.Task) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	var payload createRequest
	if err := server.DecodeJSON(req, &payload); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	created, err := r.tasks.Create(req.Context(), caller, task.CreateInput{Title: payload.Title, Description: payload.Description})
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusCreated, "Task created successfully.", newTaskView(created))
}

func (r *Router) handleList(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	tasks, err := r.tasks.List(req.Context(), caller)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, newTaskView(&tasks[i]))
	}
	respond.Success(w, http.StatusOK, "Tasks fetched successfully.", views)
}

func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	id, err := taskID(req)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	found, err := r.tasks.Get(req.Context(), caller, id)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "Task fetched successfully.", newTaskView(found))
}

func (r *Router) handleUpdate(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	id, err := taskID(req)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	var payload updateRequest
	if err := server.DecodeJSON(req, &payload); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	updated, err := r.tasks.Update(req.Context(), caller, id, task.Patch{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
	})
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "Task updated successfully.", newTaskView(updated))
}

func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) {
	caller, _ := identity.FromContext(req.Context())
	id, err := taskID(req)
	if err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	if err := r.tasks.Delete(req.Context(), caller, id); err != nil {
		respond.Error(w, r.logger, err)
		return
	}
	respond.Success(w, http.StatusOK, "Task deleted successfully.", nil)
}

func taskID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(errors.New("task id must be a positive integer"))
	}
	return id, nil
}
