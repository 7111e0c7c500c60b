// Package memory is an in-process RecordMirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"saishi/internal/core"
	"saishi/internal/export"
	ports "saishi/internal/sheets"
)

var _ ports.RecordMirror = (*Mirror)(nil)

type Mirror struct {
	mu    sync.RWMutex
	order []string
	rows  map[string][]string
}

func New() *Mirror {
	return &Mirror{rows: map[string][]string{}}
}

func (m *Mirror) Upsert(_ context.Context, t core.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[t.ID]; !ok {
		m.order = append(m.order, t.ID)
	}
	m.rows[t.ID] = export.Row(t)
	return nil
}

func (m *Mirror) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return nil
	}
	delete(m.rows, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mirror) ReplaceAll(_ context.Context, records []core.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = make([]string, 0, len(records))
	m.rows = make(map[string][]string, len(records))
	for _, t := range records {
		if _, ok := m.rows[t.ID]; !ok {
			m.order = append(m.order, t.ID)
		}
		m.rows[t.ID] = export.Row(t)
	}
	return nil
}

// Row returns the mirrored row for id.
func (m *Mirror) Row(id string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[id]
	return r, ok
}

// IDs lists mirrored IDs in first-written order.
func (m *Mirror) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}
