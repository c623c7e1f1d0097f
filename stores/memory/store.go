package memory

import (
	"context"
	"fmt"
	"sync"

	"sharehub/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type memoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStore creates an in-memory content store. Bytes live for the process
// lifetime only.
func NewStore() core.ContentStore {
	return &memoryStore{
		objects: make(map[string][]byte),
	}
}

func (s *memoryStore) Put(ctx context.Context, data []byte) (string, error) {
	id := ulid.Make().String()

	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.objects[id] = stored
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"content_id":  id,
		"data_length": len(data),
	}).Info("Content stored")
	return id, nil
}

func (s *memoryStore) Get(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.objects[id]
	s.mu.RUnlock()

	if !ok {
		logrus.WithField("content_id", id).Warn("Content with specified id not found")
		return nil, fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
	}
	return data, nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
	}
	delete(s.objects, id)
	logrus.WithField("content_id", id).Info("Content deleted")
	return nil
}
