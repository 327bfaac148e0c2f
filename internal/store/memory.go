package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store. Runs are lost on exit.
type Memory struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]Run
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[uuid.UUID]Run)}
}

func (m *Memory) Save(ctx context.Context, run *Run) error {
	fillDefaults(run)

	m.mu.Lock()
	m.runs[run.ID] = *run
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrRunNotFound
	}
	return &run, nil
}

func (m *Memory) List(ctx context.Context, limit int) ([]Run, error) {
	m.mu.RLock()
	runs := make([]Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, r)
	}
	m.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if n := listLimit(limit); len(runs) > n {
		runs = runs[:n]
	}
	return runs, nil
}

func (m *Memory) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, r := range m.runs {
		if r.CreatedAt.Before(cutoff) {
			delete(m.runs, id)
			n++
		}
	}
	return n, nil
}
