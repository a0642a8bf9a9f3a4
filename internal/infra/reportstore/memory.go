package reportstore

import (
	"context"
	"sync"

	"github.com/cartloop/insights/internal/domain/insights"
)

type storedReport struct {
	Data     []byte
	MimeType string
}

// MemoryStorage keeps exported reports in memory for tests/dev.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]storedReport
}

// NewMemoryStorage constructs an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]storedReport)}
}

// Put implements insights.ReportStorage.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedReport{Data: append([]byte(nil), data...), MimeType: mimeType}
	return nil
}

// Get returns a stored report, mainly for assertions in tests.
func (s *MemoryStorage) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.Data...), obj.MimeType, true
}

var _ insights.ReportStorage = (*MemoryStorage)(nil)
