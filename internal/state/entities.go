package state

import "sort"

// EntityStore maps session identifiers to entity records. It is owned
// exclusively by the room authority: the tick loop is the only writer, so
// the store trades internal locking for deterministic join-order iteration.
type EntityStore struct {
	entities map[string]*Entity
	order    []string
	nextSeq  uint64
}

// NewEntityStore constructs an empty entity container.
func NewEntityStore() *EntityStore {
	return &EntityStore{entities: make(map[string]*Entity)}
}

// Add registers the entity and stamps its join sequence. Re-adding an existing
// identifier is a silent no-op to absorb duplicate join races.
func (s *EntityStore) Add(entity *Entity) {
	if s == nil || entity == nil || entity.ID == "" {
		return
	}
	if _, ok := s.entities[entity.ID]; ok {
		return
	}
	s.nextSeq++
	entity.joinSeq = s.nextSeq
	s.entities[entity.ID] = entity
	s.order = append(s.order, entity.ID)
}

// Remove drops the entity; unknown identifiers are ignored.
func (s *EntityStore) Remove(id string) {
	if s == nil || id == "" {
		return
	}
	if _, ok := s.entities[id]; !ok {
		return
	}
	delete(s.entities, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the live entity record or nil when absent.
func (s *EntityStore) Get(id string) *Entity {
	if s == nil {
		return nil
	}
	return s.entities[id]
}

// Len reports the number of stored entities.
func (s *EntityStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entities)
}

// Ordered returns the live entity records in join order. The slice is fresh
// but the pointers are the authoritative records.
func (s *EntityStore) Ordered() []*Entity {
	if s == nil {
		return nil
	}
	ordered := make([]*Entity, 0, len(s.order))
	for _, id := range s.order {
		if entity, ok := s.entities[id]; ok {
			ordered = append(ordered, entity)
		}
	}
	return ordered
}

// Humans counts entities not driven by the AI controller.
func (s *EntityStore) Humans() int {
	count := 0
	for _, entity := range s.Ordered() {
		if !entity.Bot {
			count++
		}
	}
	return count
}

// Bots returns the bot entities in join order.
func (s *EntityStore) Bots() []*Entity {
	var bots []*Entity
	for _, entity := range s.Ordered() {
		if entity.Bot {
			bots = append(bots, entity)
		}
	}
	return bots
}

// ByKills returns entities sorted by kill count descending, breaking ties by
// join order so the ranking is stable across rebuilds.
func (s *EntityStore) ByKills() []*Entity {
	ranked := s.Ordered()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Kills > ranked[j].Kills
	})
	return ranked
}
