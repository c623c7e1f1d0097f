package broker

import (
	"context"
	"errors"
	"sort"
	"sync"

	"sharehub/core"

	"github.com/sirupsen/logrus"
)

// DeletionLedger tracks content ids that are logically dead: evicted from
// the public channel, overwritten in a singleton room, or orphaned by a room
// teardown. Bytes are only ever removed from the store by Sweep, never
// synchronously with the mutation that killed them.
type DeletionLedger struct {
	mu    sync.Mutex
	store core.ContentStore
	dead  map[string]struct{}
}

// SweepResult reports the outcome of one reconciliation pass.
type SweepResult struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
}

func NewDeletionLedger(store core.ContentStore) *DeletionLedger {
	return &DeletionLedger{
		store: store,
		dead:  make(map[string]struct{}),
	}
}

// Mark records a content id as logically dead. Idempotent.
func (l *DeletionLedger) Mark(contentID string) {
	if contentID == "" {
		return
	}
	l.mu.Lock()
	l.dead[contentID] = struct{}{}
	l.mu.Unlock()
	logrus.WithField("content_id", contentID).Debug("Content id ledgered for deletion")
}

// MarkItem ledgers the content id of a FileItem; text items are a no-op.
func (l *DeletionLedger) MarkItem(item core.Item) {
	if file, ok := item.(core.FileItem); ok {
		l.Mark(file.ContentID)
	}
}

// Pending returns the ledgered ids, sorted.
func (l *DeletionLedger) Pending() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.dead))
	for id := range l.dead {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep reconciles the ledger against the content store. A NotFound from the
// store counts as deleted (the bytes are already gone); any other failure
// leaves the id ledgered for a later sweep. The ledger is snapshotted up
// front so concurrent Marks are never blocked or lost.
func (l *DeletionLedger) Sweep(ctx context.Context) SweepResult {
	ids := l.Pending()
	result := SweepResult{Deleted: []string{}, Failed: []string{}}
	if len(ids) == 0 {
		return result
	}

	for _, id := range ids {
		err := l.delete(ctx, id)
		if err != nil && !errors.Is(err, core.ErrContentNotFound) {
			logrus.WithField("content_id", id).WithError(err).Warn("Sweep failed to delete content")
			result.Failed = append(result.Failed, id)
			continue
		}
		l.mu.Lock()
		delete(l.dead, id)
		l.mu.Unlock()
		result.Deleted = append(result.Deleted, id)
	}

	logrus.WithFields(logrus.Fields{
		"deleted": len(result.Deleted),
		"failed":  len(result.Failed),
	}).Info("Deletion sweep completed")
	return result
}

func (l *DeletionLedger) delete(ctx context.Context, id string) error {
	if l.store == nil {
		// Nothing was ever persisted; the id is stale by definition.
		return core.ErrContentNotFound
	}
	return l.store.Delete(ctx, id)
}
