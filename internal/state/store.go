package state

import (
	"sort"
	"sync"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/observability"
)

// Store keeps the latest state of every sensor entity seen on the source
// topic and the latest level record of every tank. It is safe for
// concurrent use by the pipeline and the HTTP server.
type Store struct {
	entities *lruCache[string, domain.EntityState]
	metrics  *observability.Metrics

	mu     sync.RWMutex
	levels map[string]domain.LevelEvent
}

// NewStore creates a Store holding at most maxEntities entity states.
func NewStore(maxEntities int, metrics *observability.Metrics) *Store {
	return &Store{
		entities: newLRUCache[string, domain.EntityState](maxEntities),
		metrics:  metrics,
		levels:   make(map[string]domain.LevelEvent),
	}
}

// PutEntity records st as the latest state of its entity. A state older than
// the one already held is dropped and PutEntity returns false.
func (s *Store) PutEntity(st domain.EntityState) bool {
	return s.entities.update(st.EntityID, func(current domain.EntityState, ok bool) (domain.EntityState, bool) {
		if ok && st.LastUpdated.Before(current.LastUpdated) {
			return current, false
		}
		return st, true
	})
}

// Entity returns the latest state of entityID, or nil if none is held.
func (s *Store) Entity(entityID string) *domain.EntityState {
	if entityID == "" {
		return nil
	}
	st, ok := s.entities.get(entityID)
	if !ok {
		s.metrics.StateCache.WithLabelValues("miss").Inc()
		return nil
	}
	s.metrics.StateCache.WithLabelValues("hit").Inc()
	return &st
}

// EntityCount returns the number of entity states held.
func (s *Store) EntityCount() int {
	return s.entities.len()
}

// PutLevel records ev as the latest level of its tank.
func (s *Store) PutLevel(ev domain.LevelEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[ev.TankID] = ev
}

// Level returns the latest level record of tankID.
func (s *Store) Level(tankID string) (domain.LevelEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.levels[tankID]
	return ev, ok
}

// Levels returns the latest level record of every tank, ordered by tank id.
func (s *Store) Levels() []domain.LevelEvent {
	s.mu.RLock()
	out := make([]domain.LevelEvent, 0, len(s.levels))
	for _, ev := range s.levels {
		out = append(out, ev)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].TankID < out[j].TankID })
	return out
}
