package timers

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrTimerNotFound is returned when a timer ID does not exist in the
// registry.
var ErrTimerNotFound = errors.New("timer not found")

// Repository is the in-memory timer registry. Timers live for the duration
// of the process; there is no persistence layer.
type Repository struct {
	mu     sync.RWMutex
	timers map[uuid.UUID]*Timer
}

// NewRepository creates an empty registry.
func NewRepository() *Repository {
	return &Repository{
		timers: make(map[uuid.UUID]*Timer),
	}
}

// Insert adds a timer to the registry, replacing any timer with the same
// ID.
func (r *Repository) Insert(timer *Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers[timer.ID] = timer
}

// Get returns the timer with the given ID.
func (r *Repository) Get(id uuid.UUID) (*Timer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	timer, ok := r.timers[id]
	if !ok {
		return nil, ErrTimerNotFound
	}
	return timer, nil
}

// List returns all timers ordered by creation time.
func (r *Repository) List() []*Timer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Timer, 0, len(r.timers))
	for _, timer := range r.timers {
		out = append(out, timer)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete removes the timer with the given ID.
func (r *Repository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.timers[id]; !ok {
		return ErrTimerNotFound
	}
	delete(r.timers, id)
	return nil
}
