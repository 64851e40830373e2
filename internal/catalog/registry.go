package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hearsight/internal/contextutil"
	"hearsight/internal/domain"
	"hearsight/internal/vectorstore"
)

// RegistryPointID is the fixed point id of the folder registry document.
const RegistryPointID = "00000000-0000-0000-0000-000000000001"

// FolderDeleteResult itemizes the outcome of a folder delete. Errors lists
// steps that did not complete after the folder itself was removed.
type FolderDeleteResult struct {
	FolderDeleted    bool     `json:"folder_deleted"`
	VideosReassigned int      `json:"videos_reassigned"`
	VideosFailed     []string `json:"videos_failed"`
	Errors           []string `json:"errors"`
}

// FolderRegistry stores the folder forest as a single document in the
// metadata collection. Every write re-checks the document version and fails
// with a concurrent_modification conflict if another writer got there first.
// The check and the overwrite are two backend calls, so a narrow race remains.
type FolderRegistry struct {
	store      vectorstore.VectorStore
	collection string
	vectorSize int
	cache      *ListCache
	now        func() time.Time

	// mu serializes mutations issued through this instance.
	mu sync.Mutex
}

// NewFolderRegistry creates a registry in the metadata collection.
// cache may be nil.
func NewFolderRegistry(store vectorstore.VectorStore, collection string, vectorSize int, cache *ListCache) *FolderRegistry {
	return &FolderRegistry{
		store:      store,
		collection: collection,
		vectorSize: vectorSize,
		cache:      cache,
		now:        time.Now,
	}
}

// List returns all folders. Read failures are logged and yield an empty list.
func (r *FolderRegistry) List(ctx context.Context) []FolderNode {
	doc, err := r.load(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to read folder registry", "error", err)
		return []FolderNode{}
	}
	if doc.Nodes == nil {
		return []FolderNode{}
	}
	return doc.Nodes
}

// Lookup returns a single folder.
func (r *FolderRegistry) Lookup(ctx context.Context, folderID string) (FolderNode, error) {
	doc, err := r.load(ctx)
	if err != nil {
		return FolderNode{}, err
	}
	i := indexOf(doc.Nodes, folderID)
	if i < 0 {
		return FolderNode{}, &domain.NotFoundError{Resource: "folder", ID: folderID}
	}
	return doc.Nodes[i], nil
}

// Create adds a folder under parentID (nil for a root folder) and returns its id.
func (r *FolderRegistry) Create(ctx context.Context, name string, parentID *string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return "", err
	}

	if parentID != nil && indexOf(doc.Nodes, *parentID) < 0 {
		return "", &domain.NotFoundError{Resource: "parent folder", ID: *parentID}
	}
	for _, n := range doc.Nodes {
		if n.Name == name && sameParent(n.ParentID, parentID) {
			return "", &domain.ConflictError{
				Message:      fmt.Sprintf("folder %q already exists under this parent", name),
				Reason:       domain.ReasonDuplicateName,
				ResourceType: "folder",
				ResourceID:   n.FolderID,
			}
		}
	}

	node := FolderNode{
		FolderID:  r.newFolderID(),
		Name:      name,
		ParentID:  copyID(parentID),
		CreatedAt: r.now().UTC(),
	}
	doc.Nodes = append(doc.Nodes, node)

	if err := r.save(ctx, doc); err != nil {
		return "", err
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "folder created", "folder_id", node.FolderID, "name", name)
	return node.FolderID, nil
}

// Rename changes a folder's name. Names must be unique across all folders.
func (r *FolderRegistry) Rename(ctx context.Context, folderID, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}

	i := indexOf(doc.Nodes, folderID)
	if i < 0 {
		return &domain.NotFoundError{Resource: "folder", ID: folderID}
	}
	for _, n := range doc.Nodes {
		if n.FolderID != folderID && n.Name == newName {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder name %q is already in use", newName),
				Reason:       domain.ReasonDuplicateName,
				ResourceType: "folder",
				ResourceID:   n.FolderID,
			}
		}
	}

	doc.Nodes[i].Name = newName
	if err := r.save(ctx, doc); err != nil {
		return err
	}

	r.renameVideos(ctx, folderID, newName)
	return nil
}

// renameVideos refreshes the denormalized folder name on member videos.
func (r *FolderRegistry) renameVideos(ctx context.Context, folderID, name string) {
	logger := contextutil.LoggerFromContext(ctx)

	ids, err := r.videoPointIDs(ctx, folderID)
	if err != nil {
		logger.WarnContext(ctx, "failed to list videos for folder rename", "folder_id", folderID, "error", err)
		return
	}
	for _, id := range ids {
		if err := r.store.SetPayload(ctx, r.collection, []string{id}, map[string]any{"folder": name}); err != nil {
			logger.WarnContext(ctx, "failed to update folder name on video", "point_id", id, "error", err)
		}
	}
	r.cache.Invalidate()
}

// UpdateParent moves a folder under newParentID (nil for the root level).
func (r *FolderRegistry) UpdateParent(ctx context.Context, folderID string, newParentID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}

	i := indexOf(doc.Nodes, folderID)
	if i < 0 {
		return &domain.NotFoundError{Resource: "folder", ID: folderID}
	}
	if newParentID != nil {
		if indexOf(doc.Nodes, *newParentID) < 0 {
			return &domain.NotFoundError{Resource: "parent folder", ID: *newParentID}
		}
		if *newParentID == folderID || isAncestor(doc.Nodes, folderID, *newParentID) {
			return &domain.ConflictError{
				Message:      "moving the folder there would create a cycle",
				Reason:       domain.ReasonCycleDetected,
				ResourceType: "folder",
				ResourceID:   folderID,
			}
		}
	}

	doc.Nodes[i].ParentID = copyID(newParentID)
	return r.save(ctx, doc)
}

// Delete removes a folder. Child folders move up to the deleted folder's
// parent and member videos become uncategorized, one at a time. Videos that
// could not be reassigned are listed in the result, and a failed member scan
// is reported in Errors; the delete still succeeds.
func (r *FolderRegistry) Delete(ctx context.Context, folderID string) (FolderDeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := contextutil.LoggerFromContext(ctx)
	result := FolderDeleteResult{VideosFailed: []string{}, Errors: []string{}}

	doc, err := r.load(ctx)
	if err != nil {
		return result, err
	}

	i := indexOf(doc.Nodes, folderID)
	if i < 0 {
		return result, &domain.NotFoundError{Resource: "folder", ID: folderID}
	}

	parent := copyID(doc.Nodes[i].ParentID)
	nodes := make([]FolderNode, 0, len(doc.Nodes)-1)
	for _, n := range doc.Nodes {
		if n.FolderID == folderID {
			continue
		}
		if n.ParentID != nil && *n.ParentID == folderID {
			n.ParentID = copyID(parent)
		}
		nodes = append(nodes, n)
	}
	doc.Nodes = nodes

	if err := r.save(ctx, doc); err != nil {
		return result, err
	}
	result.FolderDeleted = true

	records, err := r.store.Scroll(ctx, r.collection, videoFilter(vectorstore.Filter{"folder_id": folderID}), 0)
	if err != nil {
		logger.WarnContext(ctx, "failed to list videos of deleted folder", "folder_id", folderID, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to list videos of deleted folder: %v", err))
		r.cache.Invalidate()
		return result, nil
	}

	uncategorized := map[string]any{"folder_id": nil, "folder": UncategorizedName}
	for _, rec := range records {
		video := DecodeVideo(rec.PointID, rec.Meta)
		if err := r.store.SetPayload(ctx, r.collection, []string{rec.PointID}, uncategorized); err != nil {
			logger.WarnContext(ctx, "failed to reassign video", "video_id", video.VideoID, "error", err)
			result.VideosFailed = append(result.VideosFailed, video.VideoID)
			continue
		}
		result.VideosReassigned++
	}
	r.cache.Invalidate()

	logger.InfoContext(ctx, "folder deleted",
		"folder_id", folderID,
		"videos_reassigned", result.VideosReassigned,
		"videos_failed", len(result.VideosFailed),
	)
	return result, nil
}

// RecomputeCounts recounts member videos for every folder.
func (r *FolderRegistry) RecomputeCounts(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	if len(doc.Nodes) == 0 {
		return nil
	}

	records, err := r.store.Scroll(ctx, r.collection, videoFilter(nil), 0)
	if err != nil {
		return storeUnavailable("failed to scan videos", err)
	}

	counts := make(map[string]int, len(doc.Nodes))
	for _, rec := range records {
		v := DecodeVideo(rec.PointID, rec.Meta)
		if v.FolderID != nil {
			counts[*v.FolderID]++
		}
	}
	for i := range doc.Nodes {
		doc.Nodes[i].VideoCount = counts[doc.Nodes[i].FolderID]
	}

	return r.save(ctx, doc)
}

// load reads the registry document. A missing document is an empty registry at version 0.
func (r *FolderRegistry) load(ctx context.Context) (registryDoc, error) {
	records, err := r.store.Get(ctx, r.collection, []string{RegistryPointID})
	if err != nil {
		return registryDoc{}, storeUnavailable("failed to read folder registry", err)
	}
	if len(records) == 0 {
		return registryDoc{}, nil
	}
	return decodeRegistry(records[0].Meta)
}

// save overwrites the registry if its version still matches doc.Version.
func (r *FolderRegistry) save(ctx context.Context, doc registryDoc) error {
	current, err := r.load(ctx)
	if err != nil {
		return err
	}
	if current.Version != doc.Version {
		return &domain.ConflictError{
			Message:      "folder registry was modified concurrently, retry the operation",
			Reason:       domain.ReasonConcurrentModification,
			ResourceType: "folder_registry",
		}
	}

	doc.Version++
	payload, err := registryPayload(doc)
	if err != nil {
		return err
	}

	point := vectorstore.Point{ID: RegistryPointID, Vec: r.sentinelVector(), Meta: payload}
	if err := r.store.Upsert(ctx, r.collection, []vectorstore.Point{point}); err != nil {
		return storeUnavailable("failed to write folder registry", err)
	}
	r.cache.Invalidate()
	return nil
}

func (r *FolderRegistry) sentinelVector() []float32 {
	size := r.vectorSize
	if size <= 0 {
		size = 1
	}
	vec := make([]float32, size)
	vec[0] = 1
	return vec
}

func (r *FolderRegistry) videoPointIDs(ctx context.Context, folderID string) ([]string, error) {
	records, err := r.store.Scroll(ctx, r.collection, videoFilter(vectorstore.Filter{"folder_id": folderID}), 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.PointID
	}
	return ids, nil
}

func (r *FolderRegistry) newFolderID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("folder_%d_%s", r.now().UnixMilli(), suffix)
}

// isAncestor reports whether ancestorID lies on the parent chain of nodeID.
// The walk is bounded by the node count; running past it means the stored
// forest already contains a cycle, which is treated the same way.
func isAncestor(nodes []FolderNode, ancestorID, nodeID string) bool {
	parents := make(map[string]*string, len(nodes))
	for _, n := range nodes {
		parents[n.FolderID] = n.ParentID
	}

	current := nodeID
	for steps := 0; steps <= len(nodes); steps++ {
		parent := parents[current]
		if parent == nil {
			return false
		}
		if *parent == ancestorID {
			return true
		}
		current = *parent
	}
	return true
}

// videoFilter restricts a metadata scan to video records, excluding the registry point.
func videoFilter(extra vectorstore.Filter) vectorstore.Filter {
	f := vectorstore.Filter{"type": nil}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

func indexOf(nodes []FolderNode, folderID string) int {
	for i, n := range nodes {
		if n.FolderID == folderID {
			return i
		}
	}
	return -1
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
