package broker

import "sharehub/core"

// modeData is the mode-tagged variant holding whatever a room retains.
// Exactly one implementation exists per retention mode, so every mode's
// behavior is checked exhaustively at the type level.
type modeData interface {
	// catchUp returns the items a newly joined member receives.
	catchUp() []core.Item
	// retain applies a freshly processed item and returns the content id
	// of a FileItem it displaced, if any.
	retain(item core.Item) (displaced string)
	// fileIDs returns the content ids still held, for ledgering when the
	// room is destroyed.
	fileIDs() []string
}

// singletonData holds at most one item; new data replaces the old.
type singletonData struct {
	item core.Item
}

func (d *singletonData) catchUp() []core.Item {
	if d.item == nil {
		return nil
	}
	return []core.Item{d.item}
}

func (d *singletonData) retain(item core.Item) string {
	displaced := ""
	if old, ok := d.item.(core.FileItem); ok {
		displaced = old.ContentID
	}
	d.item = item
	return displaced
}

func (d *singletonData) fileIDs() []string {
	if file, ok := d.item.(core.FileItem); ok {
		return []string{file.ContentID}
	}
	return nil
}

// liveData retains nothing; live rooms forward only.
type liveData struct{}

func (liveData) catchUp() []core.Item    { return nil }
func (liveData) retain(core.Item) string { return "" }
func (liveData) fileIDs() []string       { return nil }

// historyData is the unbounded ordered sequence of a history room.
type historyData struct {
	items []core.Item
}

func (d *historyData) catchUp() []core.Item {
	out := make([]core.Item, len(d.items))
	copy(out, d.items)
	return out
}

func (d *historyData) retain(item core.Item) string {
	d.items = append(d.items, item)
	return ""
}

func (d *historyData) fileIDs() []string {
	var ids []string
	for _, item := range d.items {
		if file, ok := item.(core.FileItem); ok {
			ids = append(ids, file.ContentID)
		}
	}
	return ids
}

func newModeData(mode core.Mode) modeData {
	switch mode {
	case core.ModeSingleton:
		return &singletonData{}
	case core.ModeHistory:
		return &historyData{}
	default:
		return liveData{}
	}
}

type room struct {
	id       string
	capacity int
	mode     core.Mode
	members  map[string]struct{}
	data     modeData
}

func (r *room) isMember(connID string) bool {
	_, ok := r.members[connID]
	return ok
}

func (r *room) memberIDs() []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// RoomInfo is the read-only view of a room exposed on the listing surface.
type RoomInfo struct {
	ID       string    `json:"id"`
	Mode     core.Mode `json:"mode"`
	Members  int       `json:"members"`
	Capacity int       `json:"capacity"`
}
