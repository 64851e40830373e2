package handlers

import (
	"net/http"

	"hearsight/internal/contextutil"
	"hearsight/internal/rag"
	"hearsight/internal/service"
)

// SearchHandler handles retrieval-only queries.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchResponse lists the matching fragments, best first.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Results []rag.Hit `json:"results"`
}

// ServeHTTP handles POST /api/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req service.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hits, err := h.searchService.Search(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search")
		return
	}
	if hits == nil {
		hits = []rag.Hit{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}
