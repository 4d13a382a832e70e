package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory keeps scenes in process. It is used when no database is
// configured and by tests.
type Memory struct {
	mu     sync.RWMutex
	scenes map[string]*Scene
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{scenes: make(map[string]*Scene), now: time.Now}
}

func (m *Memory) Create(_ context.Context, s *Scene) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s.CreatedAt, s.UpdatedAt = now, now
	stored := *s
	stored.Document = slices.Clone(s.Document)
	m.scenes[s.ID] = &stored
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s
	out.Document = slices.Clone(s.Document)
	return &out, nil
}

func (m *Memory) List(_ context.Context) ([]Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		c := *s
		c.Document = slices.Clone(s.Document)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Scene) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) Update(_ context.Context, id, name string, doc []byte) (*Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scenes[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Name = name
	s.Document = slices.Clone(doc)
	s.UpdatedAt = m.now()
	out := *s
	out.Document = slices.Clone(s.Document)
	return &out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenes[id]; !ok {
		return ErrNotFound
	}
	delete(m.scenes, id)
	return nil
}
