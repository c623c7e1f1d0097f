package broker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sharehub/core"

	"github.com/sirupsen/logrus"
)

// Outbound events emitted as side effects of room operations.
const (
	EventRoomData    = "room:data"
	EventRoomMembers = "room:members"
)

// RoomRegistry owns every active room: creation, membership, uploads per
// retention mode, and teardown. A room with no members is destroyed
// immediately; its retained file content is inherited by the ledger.
type RoomRegistry struct {
	mu        sync.Mutex
	rooms     map[string]*room
	processor *UploadProcessor
	ledger    *DeletionLedger
	bcast     core.Broadcaster
}

func NewRoomRegistry(processor *UploadProcessor, ledger *DeletionLedger, bcast core.Broadcaster) *RoomRegistry {
	return &RoomRegistry{
		rooms:     make(map[string]*room),
		processor: processor,
		ledger:    ledger,
		bcast:     bcast,
	}
}

// Create registers a new empty room. A destroyed room's id may be reused.
func (r *RoomRegistry) Create(roomID string, capacity int, mode core.Mode) error {
	if roomID == "" {
		return fmt.Errorf("%w: room id is required", core.ErrInvalidItem)
	}
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", core.ErrInvalidItem)
	}
	if _, err := core.ParseMode(string(mode)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[roomID]; exists {
		return fmt.Errorf("%w: %s", core.ErrRoomExists, roomID)
	}
	r.rooms[roomID] = &room{
		id:       roomID,
		capacity: capacity,
		mode:     mode,
		members:  make(map[string]struct{}),
		data:     newModeData(mode),
	}

	logrus.WithFields(logrus.Fields{
		"room_id":  roomID,
		"mode":     mode,
		"capacity": capacity,
	}).Info("Room created")
	return nil
}

// Join adds a connection to a room and returns the catch-up data a new
// member needs: the current item for singleton, the full sequence for
// history, nothing for live.
func (r *RoomRegistry) Join(roomID, connID string) ([]core.Item, error) {
	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", core.ErrRoomNotFound, roomID)
	}
	if !rm.isMember(connID) && len(rm.members) >= rm.capacity {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", core.ErrRoomFull, roomID)
	}
	rm.members[connID] = struct{}{}
	data := rm.data.catchUp()
	members := rm.memberIDs()
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"room_id": roomID,
		"conn_id": connID,
	}).Info("Connection joined room")
	r.bcast.ToRoom(roomID, "", EventRoomMembers, members)
	return data, nil
}

// History returns the full retained sequence of a history room.
func (r *RoomRegistry) History(roomID, connID string) ([]core.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRoomNotFound, roomID)
	}
	if !rm.isMember(connID) {
		return nil, fmt.Errorf("%w: %s", core.ErrNotAMember, roomID)
	}
	if rm.mode != core.ModeHistory {
		return nil, fmt.Errorf("%w: room %s is %s", core.ErrWrongMode, roomID, rm.mode)
	}
	return rm.data.catchUp(), nil
}

// Upload processes a raw item for a room and applies the room's retention
// policy. Membership is checked before any storage write, and re-checked
// after it: the write happens outside the registry lock, so the room may
// have been destroyed (or the uploader gone) by the time the bytes are
// persisted. A stored payload that no longer has an owner is ledgered
// rather than leaked.
func (r *RoomRegistry) Upload(ctx context.Context, roomID, connID string, raw core.RawItem) error {
	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	if !ok || !rm.isMember(connID) {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrNotAMember, roomID)
	}
	r.mu.Unlock()

	item, err := r.processor.Process(ctx, raw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	rm, ok = r.rooms[roomID]
	if !ok || !rm.isMember(connID) {
		r.mu.Unlock()
		r.ledger.MarkItem(item)
		logrus.WithFields(logrus.Fields{
			"room_id": roomID,
			"conn_id": connID,
		}).Warn("Room gone before upload resolved, content ledgered")
		return fmt.Errorf("%w: %s", core.ErrNotAMember, roomID)
	}
	displaced := rm.data.retain(item)
	if displaced != "" {
		r.ledger.Mark(displaced)
	}
	exclude := ""
	if rm.mode == core.ModeLive {
		exclude = connID
	}
	r.mu.Unlock()

	r.bcast.ToRoom(roomID, exclude, EventRoomData, core.EncodeItem(item))
	return nil
}

// Leave removes a connection from every room it belongs to. A room whose
// member set becomes empty is destroyed on the spot; any retained FileItems
// are handed to the ledger.
func (r *RoomRegistry) Leave(connID string) {
	type memberChange struct {
		roomID  string
		members []string
	}
	var changes []memberChange

	r.mu.Lock()
	for id, rm := range r.rooms {
		if !rm.isMember(connID) {
			continue
		}
		delete(rm.members, connID)
		if len(rm.members) == 0 {
			for _, contentID := range rm.data.fileIDs() {
				r.ledger.Mark(contentID)
			}
			delete(r.rooms, id)
			logrus.WithField("room_id", id).Info("Room destroyed, last member left")
			continue
		}
		changes = append(changes, memberChange{roomID: id, members: rm.memberIDs()})
	}
	r.mu.Unlock()

	for _, change := range changes {
		r.bcast.ToRoom(change.roomID, "", EventRoomMembers, change.members)
	}
}

// Rooms lists every active room, sorted by id.
func (r *RoomRegistry) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]RoomInfo, 0, len(r.rooms))
	for _, rm := range r.rooms {
		infos = append(infos, RoomInfo{
			ID:       rm.id,
			Mode:     rm.mode,
			Members:  len(rm.members),
			Capacity: rm.capacity,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
