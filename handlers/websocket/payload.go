package websocket

import (
	"encoding/base64"
	"errors"
	"fmt"

	"sharehub/core"
)

// decodeRawItem validates an inbound payload against the closed item union.
// Anything that is not a well-formed text or file object is rejected rather
// than passed through opaquely.
func decodeRawItem(v any) (core.RawItem, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return core.RawItem{}, fmt.Errorf("%w: expected an object", core.ErrInvalidItem)
	}

	kind, _ := m["type"].(string)
	switch core.ItemType(kind) {
	case core.ItemText:
		content, ok := m["content"].(string)
		if !ok {
			return core.RawItem{}, fmt.Errorf("%w: text item requires string content", core.ErrInvalidItem)
		}
		return core.RawItem{Kind: core.ItemText, Content: content}, nil

	case core.ItemFile:
		data, err := decodeBytes(m["data"])
		if err != nil {
			return core.RawItem{}, err
		}
		fileName, _ := m["fileName"].(string)
		mimeType, _ := m["mimeType"].(string)
		if fileName == "" {
			return core.RawItem{}, fmt.Errorf("%w: file item requires a file name", core.ErrInvalidItem)
		}
		return core.RawItem{
			Kind:     core.ItemFile,
			Bytes:    data,
			FileName: fileName,
			MimeType: mimeType,
		}, nil
	}
	return core.RawItem{}, fmt.Errorf("%w: unknown item type %q", core.ErrInvalidItem, kind)
}

// decodeBytes accepts file payloads either as engine.io binary attachments
// or base64-encoded strings.
func decodeBytes(v any) ([]byte, error) {
	switch data := v.(type) {
	case []byte:
		return data, nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: file data is not valid base64", core.ErrInvalidItem)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: file item requires binary or base64 data", core.ErrInvalidItem)
}

// toInt normalizes the numeric types the socket.io parser may hand us.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// codeFor maps an operation failure onto its stable wire code.
func codeFor(err error) string {
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		return "not_found"
	case errors.Is(err, core.ErrRoomExists):
		return "already_exists"
	case errors.Is(err, core.ErrRoomFull):
		return "room_full"
	case errors.Is(err, core.ErrNotAMember):
		return "unauthorized"
	case errors.Is(err, core.ErrWrongMode):
		return "wrong_mode"
	case errors.Is(err, core.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, core.ErrNoStorage):
		return "storage_unavailable"
	case errors.Is(err, core.ErrContentNotFound):
		return "not_found"
	case errors.Is(err, core.ErrInvalidItem):
		return "invalid_payload"
	}
	return "storage_unavailable"
}

func success(extra map[string]any) map[string]any {
	payload := map[string]any{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	return payload
}

func failure(err error) map[string]any {
	return map[string]any{
		"success": false,
		"code":    codeFor(err),
		"message": err.Error(),
	}
}
