package websocket

import (
	"encoding/base64"
	"errors"
	"testing"

	"sharehub/core"
)

func TestDecodeTextItem(t *testing.T) {
	raw, err := decodeRawItem(map[string]any{
		"type":    "text",
		"content": "hello",
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if raw.Kind != core.ItemText || raw.Content != "hello" {
		t.Errorf("unexpected raw item: %+v", raw)
	}
}

func TestDecodeFileItemBinary(t *testing.T) {
	raw, err := decodeRawItem(map[string]any{
		"type":     "file",
		"data":     []byte{0x1, 0x2, 0x3},
		"fileName": "blob.bin",
		"mimeType": "application/octet-stream",
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if raw.Kind != core.ItemFile || len(raw.Bytes) != 3 || raw.FileName != "blob.bin" {
		t.Errorf("unexpected raw item: %+v", raw)
	}
}

func TestDecodeFileItemBase64(t *testing.T) {
	raw, err := decodeRawItem(map[string]any{
		"type":     "file",
		"data":     base64.StdEncoding.EncodeToString([]byte("payload")),
		"fileName": "notes.txt",
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(raw.Bytes) != "payload" {
		t.Errorf("expected decoded payload, got %q", raw.Bytes)
	}
}

func TestDecodeRejectsMalformedItems(t *testing.T) {
	cases := []struct {
		name  string
		input any
	}{
		{"not an object", "just a string"},
		{"unknown type", map[string]any{"type": "video"}},
		{"text without content", map[string]any{"type": "text"}},
		{"file without name", map[string]any{"type": "file", "data": []byte{1}}},
		{"file with bad base64", map[string]any{"type": "file", "data": "!!!", "fileName": "a"}},
		{"file without data", map[string]any{"type": "file", "fileName": "a"}},
	}

	for _, tc := range cases {
		if _, err := decodeRawItem(tc.input); !errors.Is(err, core.ErrInvalidItem) {
			t.Errorf("%s: expected ErrInvalidItem, got %v", tc.name, err)
		}
	}
}

func TestToInt(t *testing.T) {
	for _, v := range []any{4, int64(4), float64(4)} {
		n, ok := toInt(v)
		if !ok || n != 4 {
			t.Errorf("toInt(%T %v) = %d, %v", v, v, n, ok)
		}
	}
	if _, ok := toInt("4"); ok {
		t.Error("toInt must reject strings")
	}
}

func TestCodeForTaxonomy(t *testing.T) {
	cases := map[string]error{
		"not_found":           core.ErrRoomNotFound,
		"already_exists":      core.ErrRoomExists,
		"room_full":           core.ErrRoomFull,
		"unauthorized":        core.ErrNotAMember,
		"wrong_mode":          core.ErrWrongMode,
		"payload_too_large":   core.ErrPayloadTooLarge,
		"storage_unavailable": core.ErrNoStorage,
		"invalid_payload":     core.ErrInvalidItem,
	}
	for want, err := range cases {
		if got := codeFor(err); got != want {
			t.Errorf("codeFor(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestExtractAck(t *testing.T) {
	var got map[string]any
	callback := func(payload map[string]any) { got = payload }

	ack, args := extractAck([]any{"room-1", callback})
	if ack == nil {
		t.Fatal("expected callback recognized as ack")
	}
	if len(args) != 1 || args[0] != "room-1" {
		t.Errorf("expected callback stripped from args, got %v", args)
	}

	ack(map[string]any{"success": true})
	if got == nil || got["success"] != true {
		t.Errorf("ack did not deliver payload: %v", got)
	}
}

func TestExtractAckWithoutCallback(t *testing.T) {
	ack, args := extractAck([]any{"room-1", "payload"})
	if ack != nil {
		t.Error("expected no ack for plain arguments")
	}
	if len(args) != 2 {
		t.Errorf("expected args untouched, got %v", args)
	}
}

func TestWrapAckToleratesArity(t *testing.T) {
	var first any
	called := false
	ack := wrapAck(func(payload any, extra string) {
		first = payload
		called = true
	})
	if ack == nil {
		t.Fatal("expected multi-arg callback wrapped")
	}

	ack(map[string]any{"success": true})
	if !called {
		t.Fatal("callback not invoked")
	}
	payload, ok := first.(map[string]any)
	if !ok || payload["success"] != true {
		t.Errorf("payload not delivered to first parameter: %v", first)
	}
}
