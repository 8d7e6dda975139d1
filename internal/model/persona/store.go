package persona

// Store exposes persona retrieval for handlers, services and the client.
type Store interface {
	List() []Persona
	FindByID(id ID) (Persona, bool)
	Resolve(id ID) Persona
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items    []Persona
	fallback ID
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...), fallback: Default}
}

// List returns the predefined persona list.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id ID) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// Resolve returns the requested persona, or the default one when id is
// unknown. With an empty store it returns a bare persona carrying only the id.
func (s *MemoryStore) Resolve(id ID) Persona {
	if p, ok := s.FindByID(id); ok {
		return p
	}
	if p, ok := s.FindByID(s.fallback); ok {
		return p
	}
	return Persona{ID: id}
}
