package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_library_service.go -package=mocks hearsight/internal/service LibraryService

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"hearsight/internal/catalog"
	"hearsight/internal/contextutil"
	"hearsight/internal/domain"
)

// MaxFolderNameLength bounds folder names, counted in characters.
const MaxFolderNameLength = 100

// CreateFolderRequest creates a folder under ParentID, or at the root when ParentID is nil.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// Validate checks request bounds.
func (r CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, MaxFolderNameLength)),
		validation.Field(&r.ParentID, validation.NilOrNotEmpty),
	)
}

// MoveVideoRequest assigns a video, addressed by id or by path, to a folder.
// A nil FolderID makes the video uncategorized.
type MoveVideoRequest struct {
	VideoID   string  `json:"video_id"`
	VideoPath string  `json:"video_path"`
	FolderID  *string `json:"folder_id"`
}

// Validate checks that exactly one way of addressing the video is used.
func (r MoveVideoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.VideoID, validation.Required.When(r.VideoPath == "").Error("video_id or video_path is required")),
		validation.Field(&r.VideoPath, validation.Empty.When(r.VideoID != "").Error("only one of video_id and video_path may be set")),
		validation.Field(&r.FolderID, validation.NilOrNotEmpty),
	)
}

// LibraryService manages the folder hierarchy and the video catalog.
type LibraryService interface {
	ListFolders(ctx context.Context) []catalog.FolderNode
	CreateFolder(ctx context.Context, req CreateFolderRequest) (catalog.FolderNode, error)
	RenameFolder(ctx context.Context, folderID, name string) error
	MoveFolder(ctx context.Context, folderID string, parentID *string) error
	DeleteFolder(ctx context.Context, folderID string) (catalog.FolderDeleteResult, error)

	MoveVideo(ctx context.Context, req MoveVideoRequest) error
	ListVideos(ctx context.Context, q catalog.ListQuery) (catalog.VideoPage, error)
	VideoParagraphs(ctx context.Context, videoID string) (catalog.VideoParagraphs, error)
	DeleteVideo(ctx context.Context, videoID string) (catalog.VideoDeleteResult, error)
}

type libraryService struct {
	folders *catalog.FolderRegistry
	videos  *catalog.VideoCatalog
}

// NewLibraryService creates a new LibraryService.
func NewLibraryService(folders *catalog.FolderRegistry, videos *catalog.VideoCatalog) LibraryService {
	return &libraryService{folders: folders, videos: videos}
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Field: field, Message: "cannot be blank"}
	}
	return nil
}

func (s *libraryService) ListFolders(ctx context.Context) []catalog.FolderNode {
	return s.folders.List(ctx)
}

func (s *libraryService) CreateFolder(ctx context.Context, req CreateFolderRequest) (catalog.FolderNode, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return catalog.FolderNode{}, validationError(err)
	}

	id, err := s.folders.Create(ctx, req.Name, req.ParentID)
	if err != nil {
		return catalog.FolderNode{}, err
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "folder created", "folder_id", id, "name", req.Name)
	return s.folders.Lookup(ctx, id)
}

func (s *libraryService) RenameFolder(ctx context.Context, folderID, name string) error {
	if err := requireID("folder_id", folderID); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.RuneLength(1, MaxFolderNameLength)); err != nil {
		return &domain.ValidationError{Field: "name", Message: err.Error()}
	}
	return s.folders.Rename(ctx, folderID, name)
}

func (s *libraryService) MoveFolder(ctx context.Context, folderID string, parentID *string) error {
	if err := requireID("folder_id", folderID); err != nil {
		return err
	}
	if parentID != nil {
		if err := requireID("parent_id", *parentID); err != nil {
			return err
		}
	}
	return s.folders.UpdateParent(ctx, folderID, parentID)
}

// DeleteFolder deletes a folder and then brings every folder's video count up to date.
func (s *libraryService) DeleteFolder(ctx context.Context, folderID string) (catalog.FolderDeleteResult, error) {
	if err := requireID("folder_id", folderID); err != nil {
		return catalog.FolderDeleteResult{}, err
	}

	result, err := s.folders.Delete(ctx, folderID)
	if err != nil {
		return result, err
	}

	if err := s.folders.RecomputeCounts(ctx); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to recompute folder counts", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to recompute folder counts: %v", err))
	}
	return result, nil
}

func (s *libraryService) MoveVideo(ctx context.Context, req MoveVideoRequest) error {
	if err := req.Validate(); err != nil {
		return validationError(err)
	}
	if req.VideoID != "" {
		return s.videos.AssignToFolder(ctx, req.VideoID, req.FolderID)
	}
	return s.videos.AssignPathToFolder(ctx, req.VideoPath, req.FolderID)
}

func (s *libraryService) ListVideos(ctx context.Context, q catalog.ListQuery) (catalog.VideoPage, error) {
	if q.FolderID != nil {
		if err := requireID("folder_id", *q.FolderID); err != nil {
			return catalog.VideoPage{}, err
		}
	}
	return s.videos.List(ctx, q)
}

func (s *libraryService) VideoParagraphs(ctx context.Context, videoID string) (catalog.VideoParagraphs, error) {
	if err := requireID("video_id", videoID); err != nil {
		return catalog.VideoParagraphs{}, err
	}
	return s.videos.Paragraphs(ctx, videoID)
}

func (s *libraryService) DeleteVideo(ctx context.Context, videoID string) (catalog.VideoDeleteResult, error) {
	if err := requireID("video_id", videoID); err != nil {
		return catalog.VideoDeleteResult{}, err
	}
	return s.videos.DeleteVideo(ctx, videoID)
}
