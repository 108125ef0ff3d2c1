package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is the in-process driver used by tests and local
// development. Documents are kept in their JSON-normalized form so reads
// behave like the Postgres driver.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	subs        map[int]*memorySub
	nextSub     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[int]*memorySub),
	}
}

type memorySub struct {
	store      *MemoryStore
	id         int
	collection string
	filters    []Filter
	fn         func(Change)
}

func (s *memorySub) Close() error {
	s.store.mu.Lock()
	delete(s.store.subs, s.id)
	s.store.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for id, fields := range m.collections[collection] {
		if matches(fields, filters) {
			docs = append(docs, Document{ID: id, Fields: cloneFields(fields)})
		}
	}
	return docs, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	normalized, err := normalizeFields(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	col, ok := m.collections[collection]
	if !ok {
		col = make(map[string]map[string]any)
		m.collections[collection] = col
	}
	kind := ChangeAdded
	if _, exists := col[id]; exists {
		kind = ChangeModified
	}
	col[id] = normalized
	listeners := m.listenersLocked(collection, normalized)
	m.mu.Unlock()

	dispatch(listeners, Change{Kind: kind, Collection: collection, Doc: Document{ID: id, Fields: cloneFields(normalized)}})
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	if err := validateUpdates(updates); err != nil {
		return err
	}

	m.mu.Lock()
	fields, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	for _, u := range updates {
		value, err := normalizeValue(u.Value)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		setPath(fields, u.Path, value)
	}
	listeners := m.listenersLocked(collection, fields)
	doc := Document{ID: id, Fields: cloneFields(fields)}
	m.mu.Unlock()

	dispatch(listeners, Change{Kind: ChangeModified, Collection: collection, Doc: doc})
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	fields, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	listeners := m.listenersLocked(collection, fields)
	doc := Document{ID: id, Fields: cloneFields(fields)}
	m.mu.Unlock()

	dispatch(listeners, Change{Kind: ChangeRemoved, Collection: collection, Doc: doc})
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, collection string, filters []Filter, fn func(Change)) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSub++
	sub := &memorySub{store: m, id: m.nextSub, collection: collection, filters: filters, fn: fn}
	m.subs[sub.id] = sub
	return sub, nil
}

func (m *MemoryStore) Batch(ctx context.Context, writes []Write) error {
	for i, w := range writes {
		var err error
		switch w.Op {
		case WriteSet:
			err = m.Set(ctx, w.Collection, w.ID, w.Fields)
		case WriteUpdate:
			err = m.Update(ctx, w.Collection, w.ID, w.Updates)
		case WriteDelete:
			err = m.Delete(ctx, w.Collection, w.ID)
		default:
			err = fmt.Errorf("unknown write op %d", w.Op)
		}
		if err != nil {
			return fmt.Errorf("batch write %d (%s/%s): %w", i, w.Collection, w.ID, err)
		}
	}
	return nil
}

func (m *MemoryStore) listenersLocked(collection string, fields map[string]any) []func(Change) {
	var fns []func(Change)
	for _, sub := range m.subs {
		if sub.collection == collection && matches(fields, sub.filters) {
			fns = append(fns, sub.fn)
		}
	}
	return fns
}

func dispatch(fns []func(Change), change Change) {
	for _, fn := range fns {
		fn(change)
	}
}

func setPath(fields map[string]any, path FieldPath, value any) {
	cur := fields
	for _, seg := range path[:len(path)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
}

func normalizeFields(fields map[string]any) (map[string]any, error) {
	v, err := normalizeValue(fields)
	if err != nil {
		return nil, err
	}
	normalized, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("fields must encode to an object")
	}
	return normalized, nil
}

func normalizeValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return out, nil
}

func cloneFields(fields map[string]any) map[string]any {
	out, err := normalizeFields(fields)
	if err != nil {
		return map[string]any{}
	}
	return out
}
