package filesystem

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sharehub/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type fsStore struct {
	basePath string
}

// NewStore creates a content store backed by a local directory, one file
// per content id.
func NewStore(basePath string) core.ContentStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create base directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

func (s *fsStore) Put(ctx context.Context, data []byte) (string, error) {
	id := ulid.Make().String()
	filePath := filepath.Join(s.basePath, id)
	log := logrus.WithFields(logrus.Fields{
		"content_id": id,
		"file_path":  filePath,
	})

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write content file")
		return "", err
	}

	log.WithField("data_length", len(data)).Info("Content stored")
	return id, nil
}

func (s *fsStore) Get(ctx context.Context, id string) ([]byte, error) {
	filePath, err := s.contentPath(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithField("content_id", id)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Content with specified id not found")
			return nil, fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
		}
		log.WithError(err).Error("Failed to read content file")
		return nil, err
	}
	return data, nil
}

func (s *fsStore) Delete(ctx context.Context, id string) error {
	filePath, err := s.contentPath(id)
	if err != nil {
		return err
	}
	log := logrus.WithField("content_id", id)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Warn("Content file already gone")
			return fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
		}
		log.WithError(err).Error("Failed to delete content file")
		return err
	}

	log.Info("Content deleted")
	return nil
}

// contentPath rejects ids that would escape the base directory.
func (s *fsStore) contentPath(id string) (string, error) {
	if id == "" || filepath.Base(id) != id {
		return "", fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
	}
	return filepath.Join(s.basePath, id), nil
}
