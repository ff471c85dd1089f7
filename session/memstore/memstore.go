package memstore

import (
	"context"
	"maps"
	"sync"

	"github.com/jrsteele09/go-rental-session/session"
)

var _ session.Store = (*MemStore)(nil)

// MemStore keeps session values in process memory
type MemStore struct {
	values session.Values
	lock   sync.RWMutex
}

func New() *MemStore {
	return &MemStore{values: session.Values{}}
}

func (m *MemStore) Get(_ context.Context) (session.Values, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return maps.Clone(m.values), nil
}

func (m *MemStore) Set(_ context.Context, values session.Values) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values = maps.Clone(values)
	return nil
}

func (m *MemStore) Clear(_ context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values = session.Values{}
	return nil
}
