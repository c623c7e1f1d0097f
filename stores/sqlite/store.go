package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"sharehub/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a content store backed by a SQLite database.
func NewStore(dataSourceName string) core.ContentStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	blobTableStmt := `CREATE TABLE IF NOT EXISTS contents (
		id TEXT PRIMARY KEY,
		data BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err = db.Exec(blobTableStmt); err != nil {
		log.Fatalf("failed to create contents table: %v", err)
	}

	return &sqliteStore{db}
}

func (s *sqliteStore) Put(ctx context.Context, data []byte) (string, error) {
	id := ulid.Make().String()
	log := logrus.WithFields(logrus.Fields{
		"content_id":  id,
		"data_length": len(data),
	})

	_, err := s.db.ExecContext(ctx, "INSERT INTO contents (id, data) VALUES (?, ?)", id, data)
	if err != nil {
		log.WithError(err).Error("Failed to store content")
		return "", err
	}
	log.Info("Content stored")
	return id, nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) ([]byte, error) {
	log := logrus.WithField("content_id", id)

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM contents WHERE id = ?", id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Content with specified id not found")
			return nil, fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
		}
		log.WithError(err).Error("Failed to retrieve content")
		return nil, err
	}
	return data, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("content_id", id)

	result, err := s.db.ExecContext(ctx, "DELETE FROM contents WHERE id = ?", id)
	if err != nil {
		log.WithError(err).Error("Failed to delete content")
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
	}

	log.Info("Content deleted")
	return nil
}
