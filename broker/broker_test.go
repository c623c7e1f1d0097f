package broker

import (
	"context"
	"fmt"
	"sync"

	"sharehub/core"
)

// fakeStore is an in-memory ContentStore with injectable failures. putGate,
// when set, blocks Put until released so tests can interleave an in-flight
// upload with other operations.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	nextID    int
	putErr    error
	deleteErr map[string]error
	putGate   chan struct{}
	putIn     chan struct{}
	puts      int
	deletes   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:   make(map[string][]byte),
		deleteErr: make(map[string]error),
	}
}

func (s *fakeStore) Put(ctx context.Context, data []byte) (string, error) {
	if s.putIn != nil {
		s.putIn <- struct{}{}
	}
	if s.putGate != nil {
		<-s.putGate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return "", s.putErr
	}
	s.nextID++
	id := fmt.Sprintf("content-%04d", s.nextID)
	s.objects[id] = append([]byte(nil), data...)
	return id, nil
}

func (s *fakeStore) Get(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[id]
	if !ok {
		return nil, fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
	}
	return data, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if err, ok := s.deleteErr[id]; ok {
		return err
	}
	if _, ok := s.objects[id]; !ok {
		return fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
	}
	delete(s.objects, id)
	return nil
}

// lastID returns the most recently allocated content id.
func (s *fakeStore) lastID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("content-%04d", s.nextID)
}

func (s *fakeStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

type broadcastEvent struct {
	roomID  string
	exclude string
	event   string
	payload any
}

// broadcastRecorder captures every fan-out so tests can assert on the mode
// broadcast policy.
type broadcastRecorder struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *broadcastRecorder) ToRoom(roomID, excludeConn, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{
		roomID:  roomID,
		exclude: excludeConn,
		event:   event,
		payload: payload,
	})
}

func (b *broadcastRecorder) byEvent(event string) []broadcastEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broadcastEvent
	for _, e := range b.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// newTestRegistry wires a registry with the standard test collaborators.
func newTestRegistry(store *fakeStore) (*RoomRegistry, *DeletionLedger, *broadcastRecorder) {
	ledger := NewDeletionLedger(store)
	processor := NewUploadProcessor(store, 0)
	recorder := &broadcastRecorder{}
	return NewRoomRegistry(processor, ledger, recorder), ledger, recorder
}

func textRaw(content string) core.RawItem {
	return core.RawItem{Kind: core.ItemText, Content: content}
}

func fileRaw(name string, data []byte) core.RawItem {
	return core.RawItem{Kind: core.ItemFile, FileName: name, MimeType: "application/octet-stream", Bytes: data}
}
