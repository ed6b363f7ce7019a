package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmer1/Project-Tracking-App/internal/metrics"
	"github.com/nmer1/Project-Tracking-App/internal/report"
	"github.com/nmer1/Project-Tracking-App/internal/repository"
	"github.com/nmer1/Project-Tracking-App/internal/tracker"
)

// Server wires the HTTP surface over the entity store. It holds no state of
// its own; every handler is a thin shim that decodes primitives, calls one
// store operation, and maps the outcome.
type Server struct {
	store  *tracker.Store
	logger *slog.Logger
}

// NewRouter creates the HTTP router.
func NewRouter(store *tracker.Store, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Get("/health", srv.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/reference", srv.handleReference)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", srv.handleListProjects)
		r.Post("/", srv.handleAddProject)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", srv.handleGetProject)
			r.Put("/", srv.handleUpdateProject)
			r.Delete("/", srv.handleDeleteProject)
			r.Post("/recompute", srv.handleRecompute)
			r.Get("/report", srv.handleReport)
			r.Get("/tasks", srv.handleListTasks)
			r.Post("/tasks", srv.handleAddTask)
			r.Get("/orders", srv.handleListOrders)
			r.Post("/orders", srv.handleAddOrder)
		})
	})

	r.Route("/tasks/{taskID}", func(r chi.Router) {
		r.Get("/", srv.handleGetTask)
		r.Put("/", srv.handleUpdateTask)
		r.Delete("/", srv.handleDeleteTask)
		r.Put("/progress", srv.handleUpdateTaskProgress)
		r.Put("/pending-items", srv.handleUpdateTaskPendingItems)
		r.Post("/blend", srv.handleBlend)
		r.Get("/pending-work", srv.handleListPendingWork)
		r.Put("/pending-work", srv.handleUpsertPendingWork)
	})

	r.Delete("/pending-work/{pendingID}", srv.handleDeletePendingWork)

	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Get("/", srv.handleGetOrder)
		r.Delete("/", srv.handleDeleteOrder)
		r.Put("/lpo-status", srv.handleSetLPOStatus)
		r.Put("/invoice-status", srv.handleSetInvoiceStatus)
		r.Put("/invoice-copy", srv.handleAttachInvoiceCopy)
		r.Put("/company", srv.handleSetCompany)
		r.Put("/details", srv.handleUpdateOrderDetails)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReference serves the closed enum sets and suggestion lists the UI
// populates its pickers from.
func (s *Server) handleReference(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": tracker.Categories,
		"pending_statuses": []tracker.PendingStatus{
			tracker.PendingStatusPending, tracker.PendingStatusInProgress, tracker.PendingStatusResolved,
		},
		"order_statuses": []tracker.OrderStatus{tracker.OrderStatusOrdered, tracker.OrderStatusNotOrdered},
		"lpo_statuses": []tracker.LPOStatus{
			tracker.LPOStatusReceived, tracker.LPOStatusPending, tracker.LPOStatusLPOPend,
		},
		"invoice_statuses": []tracker.InvoiceStatus{
			tracker.InvoiceStatusNotSubmitted, tracker.InvoiceStatus25, tracker.InvoiceStatus50, tracker.InvoiceStatus100,
		},
		"companies":       tracker.DefaultCompanies,
		"item_categories": tracker.OrderItemCategories,
	})
}

// ---- projects ----

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Projects())
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := s.store.AddProject(r.Context(), req.Name, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("project", "add")
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	p, err := s.store.ProjectByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := s.store.UpdateProject(r.Context(), id, req.Name, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("project", "update")
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("project", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	p, err := s.store.RecomputeProject(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("project", "recompute")
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	rep, err := report.Build(s.store, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ---- tasks ----

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.store.TasksByProject(id))
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req tracker.TaskInput
	if !decode(w, r, &req) {
		return
	}
	req.ProjectID = id
	t, err := s.store.AddTask(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("task", "add")
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	t, err := s.store.TaskByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	var req tracker.TaskInput
	if !decode(w, r, &req) {
		return
	}
	t, err := s.store.UpdateTask(r.Context(), id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("task", "update")
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	if err := s.store.DeleteTask(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("task", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateTaskProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	var req struct {
		Progress float64 `json:"progress"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := s.store.UpdateTaskProgress(r.Context(), id, req.Progress)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("task", "update")
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTaskPendingItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	var req struct {
		PendingItems string `json:"pending_items"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := s.store.UpdateTaskPendingItems(r.Context(), id, req.PendingItems)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("task", "update")
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleBlend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	t, err := s.store.BlendTaskProgress(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("task", "blend")
	writeJSON(w, http.StatusOK, t)
}

// ---- pending work ----

func (s *Server) handleListPendingWork(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.store.PendingWorkByTask(id))
}

func (s *Server) handleUpsertPendingWork(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}
	var req tracker.PendingWorkInput
	if !decode(w, r, &req) {
		return
	}
	req.TaskID = id
	pw, err := s.store.UpsertPendingWork(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("pending_work", "upsert")
	writeJSON(w, http.StatusOK, pw)
}

func (s *Server) handleDeletePendingWork(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "pendingID")
	if !ok {
		return
	}
	if err := s.store.DeletePendingWork(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("pending_work", "delete")
	w.WriteHeader(http.StatusNoContent)
}

// ---- orders ----

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.store.OrdersByProject(id))
}

func (s *Server) handleAddOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var req tracker.OrderInput
	if !decode(w, r, &req) {
		return
	}
	req.ProjectID = id
	o, err := s.store.AddOrder(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("order", "add")
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	o, err := s.store.OrderByID(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	if err := s.store.DeleteOrder(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("order", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLPOStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	var req struct {
		LPOStatus tracker.LPOStatus `json:"lpo_status"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := s.store.SetOrderLPOStatus(r.Context(), id, req.LPOStatus)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("order", "update")
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleSetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	var req struct {
		InvoiceStatus tracker.InvoiceStatus `json:"invoice_status"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := s.store.SetOrderInvoiceStatus(r.Context(), id, req.InvoiceStatus)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("order", "update")
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleAttachInvoiceCopy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	var req struct {
		InvoiceCopyPath string `json:"invoice_copy_path"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := s.store.AttachInvoiceCopy(r.Context(), id, req.InvoiceCopyPath)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("order", "update")
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleSetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	var req struct {
		Company string `json:"company"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := s.store.SetOrderCompany(r.Context(), id, req.Company)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("order", "update")
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleUpdateOrderDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}
	var req struct {
		MissingItems     string `json:"missing_items"`
		DeliveryDate     string `json:"delivery_date"`
		InstallationDate string `json:"installation_date"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := s.store.UpdateOrderDetails(r.Context(), id, req.MissingItems, req.DeliveryDate, req.InstallationDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncrementMutation("order", "update")
	writeJSON(w, http.StatusOK, o)
}

// ---- plumbing ----

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid " + param})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, tracker.ErrReferentialViolation):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, tracker.ErrProjectNotFound),
		errors.Is(err, tracker.ErrTaskNotFound),
		errors.Is(err, tracker.ErrPendingWorkNotFound),
		errors.Is(err, tracker.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, repository.ErrSnapshotSave):
		// The in-memory mutation happened; the caller must know it is
		// not durable yet.
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	default:
		s.logger.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			w.Header().Set("X-Request-ID", requestID)

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(ww.status), duration)
			logger.Info("request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.status,
				"duration", duration,
			)
		})
	}
}
