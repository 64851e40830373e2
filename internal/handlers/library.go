package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hearsight/internal/catalog"
	"hearsight/internal/contextutil"
	"hearsight/internal/service"
)

// LibraryHandler serves the folder hierarchy and the video catalog.
type LibraryHandler struct {
	library service.LibraryService
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(library service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// FolderListResponse lists every folder.
//
// swagger:model FolderListResponse
type FolderListResponse struct {
	Folders []catalog.FolderNode `json:"folders"`
	Count   int                  `json:"count"`
}

// CreateFolderResponse identifies a new folder.
//
// swagger:model CreateFolderResponse
type CreateFolderResponse struct {
	FolderID string `json:"folder_id"`
	Name     string `json:"name"`
}

// RenameFolderRequest carries the new folder name.
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// UpdateParentRequest moves a folder. A null parent_id moves it to the root.
type UpdateParentRequest struct {
	ParentID *string `json:"parent_id"`
}

// SuccessResponse acknowledges a mutation.
//
// swagger:model SuccessResponse
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ListFolders handles GET /api/folders.
func (h *LibraryHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders := h.library.ListFolders(r.Context())
	if folders == nil {
		folders = []catalog.FolderNode{}
	}
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: folders, Count: len(folders)})
}

// CreateFolder handles POST /api/folders.
func (h *LibraryHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.library.CreateFolder(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create folder")
		return
	}
	writeJSON(w, http.StatusCreated, CreateFolderResponse{FolderID: folder.FolderID, Name: folder.Name})
}

// RenameFolder handles PUT /api/folders/{folder_id}.
func (h *LibraryHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RenameFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.library.RenameFolder(ctx, chi.URLParam(r, "folder_id"), req.Name); err != nil {
		handleServiceError(ctx, w, err, "Failed to rename folder")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// UpdateParent handles PUT /api/folders/{folder_id}/parent.
func (h *LibraryHandler) UpdateParent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpdateParentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.library.MoveFolder(ctx, chi.URLParam(r, "folder_id"), req.ParentID); err != nil {
		handleServiceError(ctx, w, err, "Failed to move folder")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// DeleteFolder handles DELETE /api/folders/{folder_id}.
func (h *LibraryHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.library.DeleteFolder(ctx, chi.URLParam(r, "folder_id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to delete folder")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MoveVideo handles POST /api/folders/move-video.
func (h *LibraryHandler) MoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.MoveVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.library.MoveVideo(ctx, req); err != nil {
		handleServiceError(ctx, w, err, "Failed to move video")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// ListVideos handles GET /api/videos?folder_id=&page=&page_size=.
// Non-numeric paging parameters fall back to the defaults.
func (h *LibraryHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	q := catalog.ListQuery{}
	if query.Has("folder_id") {
		folderID := query.Get("folder_id")
		q.FolderID = &folderID
	}
	q.Page, _ = strconv.Atoi(query.Get("page"))
	q.PageSize, _ = strconv.Atoi(query.Get("page_size"))

	page, err := h.library.ListVideos(ctx, q)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list videos")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// VideoParagraphs handles GET /api/videos/{video_id}/paragraphs.
func (h *LibraryHandler) VideoParagraphs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	paragraphs, err := h.library.VideoParagraphs(ctx, chi.URLParam(r, "video_id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load video paragraphs")
		return
	}
	writeJSON(w, http.StatusOK, paragraphs)
}

// DeleteVideo handles DELETE /api/videos/{video_id}.
func (h *LibraryHandler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.library.DeleteVideo(ctx, chi.URLParam(r, "video_id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to delete video")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
