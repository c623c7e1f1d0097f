package broker

import (
	"context"
	"fmt"
	"sharehub/core"

	"github.com/sirupsen/logrus"
)

// UploadProcessor validates a client-submitted raw item and normalizes it
// into its canonical stored form, persisting file bytes under a fresh
// content id.
type UploadProcessor struct {
	store       core.ContentStore
	maxFileSize int64
}

// NewUploadProcessor creates a processor. A nil store disables file uploads;
// text items always pass through.
func NewUploadProcessor(store core.ContentStore, maxFileSize int64) *UploadProcessor {
	if maxFileSize <= 0 {
		maxFileSize = core.DefaultMaxFileSize
	}
	return &UploadProcessor{store: store, maxFileSize: maxFileSize}
}

// Process turns a raw submission into an Item. A successful file upload
// performs exactly one store write; a failed one performs none and leaves no
// other side effects.
func (p *UploadProcessor) Process(ctx context.Context, raw core.RawItem) (core.Item, error) {
	switch raw.Kind {
	case core.ItemText:
		return core.TextItem{Content: raw.Content}, nil
	case core.ItemFile:
		return p.processFile(ctx, raw)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", core.ErrInvalidItem, raw.Kind)
}

func (p *UploadProcessor) processFile(ctx context.Context, raw core.RawItem) (core.Item, error) {
	if p.store == nil {
		return nil, core.ErrNoStorage
	}
	if size := int64(len(raw.Bytes)); size > p.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", core.ErrPayloadTooLarge, size, p.maxFileSize)
	}

	id, err := p.store.Put(ctx, raw.Bytes)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"file_name": raw.FileName,
			"size":      len(raw.Bytes),
		}).WithError(err).Error("Failed to persist file payload")
		return nil, fmt.Errorf("storing file payload: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"content_id": id,
		"file_name":  raw.FileName,
		"size":       len(raw.Bytes),
	}).Info("File payload stored")

	return core.FileItem{
		ContentID: id,
		FileName:  raw.FileName,
		MimeType:  raw.MimeType,
		SizeBytes: int64(len(raw.Bytes)),
	}, nil
}
