package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps problems in a map.
type MemoryStore struct {
	mu       sync.RWMutex
	problems map[string]*Problem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{problems: make(map[string]*Problem)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.problems[id]
	if !ok {
		return nil, ErrProblemNotFound
	}
	return clone(p), nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Problem, 0, len(m.problems))
	for _, p := range m.problems {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, p *Problem) error {
	if err := p.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems[p.ID] = clone(p)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func clone(p *Problem) *Problem {
	cp := *p
	cp.SkillsRequired = append([]string(nil), p.SkillsRequired...)
	cp.Tags = append([]string(nil), p.Tags...)
	return &cp
}
