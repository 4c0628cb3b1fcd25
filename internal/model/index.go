package model

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ostepan8/scheduled/internal/recurrence"
)

// Store is the durable persistence boundary (component F). Index calls it
// synchronously after every in-memory mutation; if that call fails, the
// in-memory change is kept and the store's error is returned. A nil Store
// makes Index a pure in-memory structure, which is how tests use it.
type Store interface {
	SaveEvent(e *Event) error
	DeleteEvent(id string) error
}

// Index is the time-ordered, soft-delete-aware event collection described
// by the event model (component B). All access goes through a single mutex,
// matching the single coarse lock the original model used to let multiple
// API handlers mutate the schedule concurrently without finer-grained
// contention bugs.
type Index struct {
	mu         sync.RWMutex
	live       map[string]*Event
	deleted    map[string]*Event
	categories map[string]int
	store      Store
}

// New builds an empty Index backed by the given durable Store (nil is
// valid: in-memory only).
func New(store Store) *Index {
	return &Index{
		live:       make(map[string]*Event),
		deleted:    make(map[string]*Event),
		categories: make(map[string]int),
		store:      store,
	}
}

// Add inserts a new live event. The ID must not already be live.
func (idx *Index) Add(e *Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.live[e.ID]; exists {
		return ErrAlreadyExists
	}

	now := e.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	stored := e.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	idx.live[stored.ID] = stored
	idx.bumpCategory(stored.Category, 1)

	if idx.store != nil {
		if err := idx.store.SaveEvent(stored); err != nil {
			return err
		}
	}
	return nil
}

// CurrentTime implements scheduler.EventSource: it reports the live Time
// for id, or false if no live event with that id exists. The event loop
// uses this to detect and drop stale queue entries.
func (idx *Index) CurrentTime(id string) (time.Time, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.live[id]
	if !ok {
		return time.Time{}, false
	}
	return e.Time, true
}

// GetByID returns a clone of the live event with the given ID.
func (idx *Index) GetByID(id string) (*Event, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.live[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

// Update replaces the full event record, preserving ID and CreatedAt.
func (idx *Index) Update(id string, updated *Event) error {
	updated.ID = id
	if err := updated.validate(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	existing, ok := idx.live[id]
	if !ok {
		return ErrNotFound
	}

	next := updated.Clone()
	next.CreatedAt = existing.CreatedAt
	next.UpdatedAt = time.Now()

	idx.bumpCategory(existing.Category, -1)
	idx.bumpCategory(next.Category, 1)
	idx.live[id] = next

	if idx.store != nil {
		if err := idx.store.SaveEvent(next); err != nil {
			return err
		}
	}
	return nil
}

// PatchFields is the subset of Event fields Patch may change. A nil field is
// left untouched.
type PatchFields struct {
	Title       *string
	Description *string
	Category    *string
	Time        *time.Time
	Duration    *time.Duration
	Pattern     **recurrence.Pattern
}

// Patch applies a partial update to a live event.
func (idx *Index) Patch(id string, fields PatchFields) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	existing, ok := idx.live[id]
	if !ok {
		return ErrNotFound
	}

	next := existing.Clone()
	if fields.Title != nil {
		next.Title = *fields.Title
	}
	if fields.Description != nil {
		next.Description = *fields.Description
	}
	if fields.Category != nil {
		next.Category = *fields.Category
	}
	if fields.Time != nil {
		next.Time = *fields.Time
	}
	if fields.Duration != nil {
		next.Duration = *fields.Duration
	}
	if fields.Pattern != nil {
		next.Pattern = *fields.Pattern
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()

	if next.Category != existing.Category {
		idx.bumpCategory(existing.Category, -1)
		idx.bumpCategory(next.Category, 1)
	}
	idx.live[id] = next

	if idx.store != nil {
		if err := idx.store.SaveEvent(next); err != nil {
			return err
		}
	}
	return nil
}

// Remove takes an event out of the live set. With soft=true it moves to the
// deleted mirror (Restore-able); otherwise it is gone for good.
func (idx *Index) Remove(id string, soft bool) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	e, ok := idx.live[id]
	if !ok {
		return ErrNotFound
	}

	delete(idx.live, id)
	idx.bumpCategory(e.Category, -1)
	if soft {
		idx.deleted[id] = e
	}

	if idx.store != nil {
		if err := idx.store.DeleteEvent(id); err != nil {
			return err
		}
	}
	return nil
}

// Restore moves a soft-deleted event back into the live set.
func (idx *Index) Restore(id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	e, ok := idx.deleted[id]
	if !ok {
		return ErrNotDeleted
	}
	if _, exists := idx.live[id]; exists {
		return ErrAlreadyExists
	}

	delete(idx.deleted, id)
	idx.live[id] = e
	idx.bumpCategory(e.Category, 1)

	if idx.store != nil {
		if err := idx.store.SaveEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// DeletedEvents returns clones of all soft-deleted events.
func (idx *Index) DeletedEvents() []*Event {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]*Event, 0, len(idx.deleted))
	for _, e := range idx.deleted {
		out = append(out, e.Clone())
	}
	sortEventsByTime(out)
	return out
}

// ListAll returns clones of all live events, ordered by start time.
func (idx *Index) ListAll() []*Event {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.snapshotLocked()
}

// Categories returns the set of categories currently in use by live events.
func (idx *Index) Categories() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.categories))
	for c, n := range idx.categories {
		if n > 0 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// ByCategory returns clones of live events in the given category, ordered
// by start time.
func (idx *Index) ByCategory(category string) []*Event {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []*Event
	for _, e := range idx.live {
		if e.Category == category {
			out = append(out, e.Clone())
		}
	}
	sortEventsByTime(out)
	return out
}

// ByDurationRange returns clones of live events whose Duration falls within
// [min, max].
func (idx *Index) ByDurationRange(min, max time.Duration) []*Event {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []*Event
	for _, e := range idx.live {
		if e.Duration >= min && e.Duration <= max {
			out = append(out, e.Clone())
		}
	}
	sortEventsByTime(out)
	return out
}

// Search does a case-sensitive substring match over Title and
// Description. maxResults <= 0 means unlimited.
func (idx *Index) Search(query string, maxResults int) []*Event {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []*Event
	for _, e := range idx.live {
		if strings.Contains(e.Title, query) || strings.Contains(e.Description, query) {
			out = append(out, e.Clone())
		}
	}
	sortEventsByTime(out)
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func (idx *Index) bumpCategory(category string, delta int) {
	if category == "" {
		return
	}
	idx.categories[category] += delta
	if idx.categories[category] <= 0 {
		delete(idx.categories, category)
	}
}

func (idx *Index) snapshotLocked() []*Event {
	out := make([]*Event, 0, len(idx.live))
	for _, e := range idx.live {
		out = append(out, e.Clone())
	}
	sortEventsByTime(out)
	return out
}

func sortEventsByTime(events []*Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })
}
