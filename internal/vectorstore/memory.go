package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Operation names accepted by MemoryStore.FailOn.
const (
	OpUpsert         = "upsert"
	OpSearch         = "search"
	OpScroll         = "scroll"
	OpGet            = "get"
	OpSetPayload     = "set_payload"
	OpDelete         = "delete"
	OpDeleteByFilter = "delete_by_filter"
	OpCount          = "count"
	OpHealth         = "health"
)

// FaultFunc decides whether an operation on ids should fail.
type FaultFunc func(collection string, ids []string) error

// MemoryStore is an in-process VectorStore using brute-force cosine similarity.
// It backs tests and local runs without a Qdrant server.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	faults      map[string]FaultFunc
}

type memCollection struct {
	dimension int
	order     []string
	points    map[string]Point
}

// NewMemoryStore creates an empty store. Collections are created on first write
// or by EnsureCollection.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memCollection),
		faults:      make(map[string]FaultFunc),
	}
}

// FailOn installs a fault for op. A nil fn clears it.
func (s *MemoryStore) FailOn(op string, fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = fn
}

func (s *MemoryStore) fault(op, collection string, ids []string) error {
	if fn, ok := s.faults[op]; ok {
		return fn(collection, ids)
	}
	return nil
}

// EnsureCollection creates the collection or validates its dimension.
func (s *MemoryStore) EnsureCollection(_ context.Context, collection string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		s.collections[collection] = &memCollection{dimension: vectorSize, points: make(map[string]Point)}
		return nil
	}
	if c.dimension != 0 && c.dimension != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, c.dimension)
	}
	c.dimension = vectorSize
	return nil
}

// CollectionExists reports whether the collection has been created.
func (s *MemoryStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{points: make(map[string]Point)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault(OpUpsert, collection, pointIDs(points)); err != nil {
		return err
	}

	c := s.collection(collection)
	for _, p := range points {
		if c.dimension == 0 {
			c.dimension = len(p.Vec)
		}
		if len(p.Vec) != c.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", c.dimension, len(p.Vec))
		}
	}
	for _, p := range points {
		if _, exists := c.points[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		vec := make([]float32, len(p.Vec))
		copy(vec, p.Vec)
		c.points[p.ID] = Point{ID: p.ID, Vec: vec, Meta: copyMeta(p.Meta)}
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, collection string, query []float32, opts SearchOptions) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if opts.Limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	if err := s.fault(OpSearch, collection, nil); err != nil {
		return nil, err
	}

	c, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s not found", collection)
	}

	results := make([]SearchResult, 0)
	for _, id := range c.order {
		p := c.points[id]
		if !matches(p.Meta, opts.Filter) {
			continue
		}
		score := cosine(p.Vec, query)
		if opts.ScoreThreshold != nil && score < *opts.ScoreThreshold {
			continue
		}
		results = append(results, SearchResult{PointID: id, Score: score, Meta: copyMeta(p.Meta)})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (s *MemoryStore) Scroll(_ context.Context, collection string, filter Filter, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault(OpScroll, collection, nil); err != nil {
		return nil, err
	}

	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}

	var records []Record
	for _, id := range c.order {
		p := c.points[id]
		if !matches(p.Meta, filter) {
			continue
		}
		records = append(records, Record{PointID: id, Meta: copyMeta(p.Meta)})
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

func (s *MemoryStore) Get(_ context.Context, collection string, ids []string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault(OpGet, collection, ids); err != nil {
		return nil, err
	}

	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}

	var records []Record
	for _, id := range ids {
		if p, ok := c.points[id]; ok {
			records = append(records, Record{PointID: id, Meta: copyMeta(p.Meta)})
		}
	}
	return records, nil
}

func (s *MemoryStore) SetPayload(_ context.Context, collection string, ids []string, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault(OpSetPayload, collection, ids); err != nil {
		return err
	}

	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	for _, id := range ids {
		p, ok := c.points[id]
		if !ok {
			continue
		}
		if p.Meta == nil {
			p.Meta = make(map[string]any)
		}
		for k, v := range copyMeta(payload) {
			p.Meta[k] = v
		}
		c.points[id] = p
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fault(OpDelete, collection, ids); err != nil {
		return err
	}

	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	c.removeWhere(func(p Point) bool { return remove[p.ID] })
	return nil
}

func (s *MemoryStore) DeleteByFilter(_ context.Context, collection string, filter Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(filter) == 0 {
		return fmt.Errorf("refusing to delete with an empty filter")
	}
	if err := s.fault(OpDeleteByFilter, collection, nil); err != nil {
		return err
	}

	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	c.removeWhere(func(p Point) bool { return matches(p.Meta, filter) })
	return nil
}

func (s *MemoryStore) Count(_ context.Context, collection string, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fault(OpCount, collection, nil); err != nil {
		return 0, err
	}

	c, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	n := 0
	for _, p := range c.points {
		if matches(p.Meta, filter) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fault(OpHealth, "", nil)
}

func (c *memCollection) removeWhere(pred func(Point) bool) {
	kept := c.order[:0]
	for _, id := range c.order {
		if pred(c.points[id]) {
			delete(c.points, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
}

// matches evaluates filter against a payload with the same semantics as the Qdrant store.
func matches(meta map[string]any, filter Filter) bool {
	for key, want := range filter {
		got, present := meta[key]
		if want == nil {
			if present && got != nil {
				return false
			}
			continue
		}
		if !present || !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(got, want any) bool {
	switch w := want.(type) {
	case string:
		g, ok := got.(string)
		return ok && g == w
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	case int:
		return numericEqual(got, int64(w))
	case int64:
		return numericEqual(got, w)
	}
	return false
}

func numericEqual(got any, want int64) bool {
	switch g := got.(type) {
	case int:
		return int64(g) == want
	case int64:
		return g == want
	case float64:
		return g == float64(want)
	}
	return false
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func pointIDs(points []Point) []string {
	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	return ids
}
