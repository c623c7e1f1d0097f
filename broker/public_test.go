package broker

import (
	"fmt"
	"testing"

	"sharehub/core"
)

func TestPublicChannelNeverExceedsBound(t *testing.T) {
	max := 5
	channel := NewPublicChannel(max)

	for i := 0; i < max*3; i++ {
		channel.Append(core.TextItem{Content: fmt.Sprintf("item-%d", i)})
		if channel.Len() > max {
			t.Fatalf("history length %d exceeds bound %d", channel.Len(), max)
		}
	}
}

func TestPublicChannelEvictsOldestFirst(t *testing.T) {
	max := 10
	channel := NewPublicChannel(max)

	for i := 1; i <= max; i++ {
		if evicted := channel.Append(core.TextItem{Content: fmt.Sprintf("item-%d", i)}); evicted != nil {
			t.Errorf("unexpected eviction at item %d: %v", i, evicted)
		}
	}

	evicted := channel.Append(core.TextItem{Content: "item-overflow"})
	text, ok := evicted.(core.TextItem)
	if !ok {
		t.Fatalf("expected evicted TextItem, got %T", evicted)
	}
	if text.Content != "item-1" {
		t.Errorf("expected oldest item evicted, got %q", text.Content)
	}

	snapshot := channel.Snapshot()
	if len(snapshot) != max {
		t.Fatalf("expected %d items after overflow, got %d", max, len(snapshot))
	}
	oldest, ok := snapshot[0].(core.TextItem)
	if !ok || oldest.Content != "item-2" {
		t.Errorf("expected oldest surviving item to be item-2, got %v", snapshot[0])
	}
	newest, ok := snapshot[len(snapshot)-1].(core.TextItem)
	if !ok || newest.Content != "item-overflow" {
		t.Errorf("expected newest item last in snapshot, got %v", snapshot[len(snapshot)-1])
	}
}

func TestPublicChannelPopLast(t *testing.T) {
	channel := NewPublicChannel(0)

	if popped := channel.PopLast(); popped != nil {
		t.Errorf("expected nil pop on empty channel, got %v", popped)
	}

	channel.Append(core.TextItem{Content: "first"})
	channel.Append(core.TextItem{Content: "second"})

	popped, ok := channel.PopLast().(core.TextItem)
	if !ok || popped.Content != "second" {
		t.Errorf("expected most recent item popped, got %v", popped)
	}
	if channel.Len() != 1 {
		t.Errorf("expected 1 item remaining, got %d", channel.Len())
	}
}

func TestPublicChannelSnapshotIsACopy(t *testing.T) {
	channel := NewPublicChannel(0)
	channel.Append(core.TextItem{Content: "original"})

	snapshot := channel.Snapshot()
	snapshot[0] = core.TextItem{Content: "mutated"}

	current := channel.Snapshot()
	if text := current[0].(core.TextItem); text.Content != "original" {
		t.Errorf("snapshot mutation leaked into channel state: %q", text.Content)
	}
}

func TestPublicChannelDefaultBound(t *testing.T) {
	channel := NewPublicChannel(0)
	for i := 0; i < core.DefaultMaxPublicHistory+1; i++ {
		channel.Append(core.TextItem{Content: fmt.Sprintf("item-%d", i)})
	}
	if channel.Len() != core.DefaultMaxPublicHistory {
		t.Errorf("expected default bound %d, got length %d", core.DefaultMaxPublicHistory, channel.Len())
	}
}
