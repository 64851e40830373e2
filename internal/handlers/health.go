package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"hearsight/internal/contextutil"
	"hearsight/internal/vectorstore"
)

// Pinger is a relational store that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	collections        vectorstore.CollectionManager
	collectionNames    []string
	database           Pinger
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. collections may be nil, in
// which case collection existence is not checked.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collections vectorstore.CollectionManager, collectionNames []string, database Pinger) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		collections:        collections,
		collectionNames:    collectionNames,
		database:           database,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// The vector store is critical: without it the service is unhealthy (503).
// A failing chat-history database only degrades the service, since answers
// are still produced without persistence.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// responses:
//
//	'200': HealthResponse
//	'503': HealthResponse
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Create context with timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	critical := false

	if h.checkVectorStore(checkCtx, logger) {
		checks["vector_store"] = "ok"
	} else {
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
		critical = true
	}

	if h.database != nil {
		if err := h.database.Ping(checkCtx); err != nil {
			logger.WarnContext(ctx, "database health check failed", "error", err)
			checks["database"] = "error"
			issues = append(issues, "database_unavailable")
		} else {
			checks["database"] = "ok"
		}
	}

	// Determine overall status
	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case critical:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if len(issues) > 0 {
		response.Issues = issues
	}

	writeJSON(w, httpStatus, response)
}

// checkVectorStore checks if the vector store is reachable and the collections exist.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) bool {
	if err := h.vectorStore.HealthCheck(ctx); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	if h.collections == nil {
		return true
	}
	for _, name := range h.collectionNames {
		exists, err := h.collections.CollectionExists(ctx, name)
		if err != nil {
			logger.WarnContext(ctx, "vector store health check failed", "collection", name, "error", err)
			return false
		}
		if !exists {
			logger.WarnContext(ctx, "vector store collection does not exist", "collection", name)
			return false
		}
	}
	return true
}
