package core

import (
	"context"
	"fmt"
)

const (
	// DefaultMaxPublicHistory bounds the shared public channel.
	DefaultMaxPublicHistory = 50
	// DefaultMaxFileSize bounds a single file payload, in bytes.
	DefaultMaxFileSize = 100_000_000
)

type (
	ItemType string

	// Item is one discrete unit of shared data: plain text or a reference
	// to file bytes held by a ContentStore. Items are immutable once
	// constructed.
	Item interface {
		Type() ItemType
	}

	TextItem struct {
		Content string
	}

	FileItem struct {
		ContentID string
		FileName  string
		MimeType  string
		SizeBytes int64
	}

	// RawItem is a client-submitted item before validation. Kind selects
	// which of the remaining fields are meaningful.
	RawItem struct {
		Kind     ItemType
		Content  string
		Bytes    []byte
		FileName string
		MimeType string
	}

	Mode string

	// ContentStore is the byte-level persistence collaborator for file
	// payloads. Put allocates the content id; Get and Delete report a
	// missing id via ErrContentNotFound.
	ContentStore interface {
		Put(ctx context.Context, data []byte) (string, error)
		Get(ctx context.Context, id string) ([]byte, error)
		Delete(ctx context.Context, id string) error
	}

	// Broadcaster fans an event out to every member of a room, optionally
	// skipping one connection (the sender of a live-mode upload).
	Broadcaster interface {
		ToRoom(roomID, excludeConn, event string, payload any)
	}
)

const (
	ItemText ItemType = "text"
	ItemFile ItemType = "file"
)

func (TextItem) Type() ItemType { return ItemText }
func (FileItem) Type() ItemType { return ItemFile }

const (
	ModeSingleton Mode = "singleton"
	ModeLive      Mode = "live"
	ModeHistory   Mode = "history"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingleton, ModeLive, ModeHistory:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: unknown room mode %q", ErrInvalidItem, s)
}

// EncodeItem renders an Item in its wire form, a type-tagged object.
func EncodeItem(item Item) map[string]any {
	switch it := item.(type) {
	case TextItem:
		return map[string]any{
			"type":    string(ItemText),
			"content": it.Content,
		}
	case FileItem:
		return map[string]any{
			"type":      string(ItemFile),
			"contentId": it.ContentID,
			"fileName":  it.FileName,
			"mimeType":  it.MimeType,
			"size":      it.SizeBytes,
		}
	}
	return nil
}

func EncodeItems(items []Item) []any {
	encoded := make([]any, 0, len(items))
	for _, item := range items {
		encoded = append(encoded, EncodeItem(item))
	}
	return encoded
}
