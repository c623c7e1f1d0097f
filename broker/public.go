package broker

import (
	"sync"

	"sharehub/core"
)

// PublicChannel is the bounded FIFO history shared by every connection.
// Eviction is strictly oldest-first; the channel never holds more than its
// configured maximum.
type PublicChannel struct {
	mu    sync.Mutex
	max   int
	items []core.Item
}

func NewPublicChannel(max int) *PublicChannel {
	if max <= 0 {
		max = core.DefaultMaxPublicHistory
	}
	return &PublicChannel{max: max}
}

// Snapshot returns the current history, newest last.
func (c *PublicChannel) Snapshot() []core.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]core.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Append adds an item and returns the evicted oldest item when the bound is
// exceeded. The caller ledgers an evicted FileItem.
func (c *PublicChannel) Append(item core.Item) core.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, item)
	if len(c.items) <= c.max {
		return nil
	}
	evicted := c.items[0]
	c.items = c.items[1:]
	return evicted
}

// PopLast removes and returns the most recent item, or nil when the history
// is empty. The caller ledgers a popped FileItem.
func (c *PublicChannel) PopLast() core.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return nil
	}
	last := c.items[len(c.items)-1]
	c.items = c.items[:len(c.items)-1]
	return last
}

func (c *PublicChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
