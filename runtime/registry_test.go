package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shekharshaurya-coder/finalWork/domain/event"
)

// fakeSink records every consumed event, shared by the tests of this package.
type fakeSink struct {
	mu     sync.Mutex
	events []event.Event
	fail   bool
}

func (s *fakeSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return context.DeadlineExceeded
	}
	s.events = append(s.events, e)
	return nil
}

func (s *fakeSink) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.events...)
}

func (s *fakeSink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.events))
	for _, e := range s.events {
		names = append(names, e.Name())
	}
	return names
}

func TestRegistry_Register_Single_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	sink := &fakeSink{}

	// Given no user is connected
	req.Empty(registry.Snapshot())
	req.False(registry.IsOnline(userID))

	// When the user connects
	previous, replaced := registry.Register(userID, sink)

	// Then exactly one live handle exists
	req.Nil(previous)
	req.False(replaced)
	req.True(registry.IsOnline(userID))
	found, ok := registry.Lookup(userID)
	req.True(ok)
	req.Same(sink, found)
}

func TestRegistry_Register_Second_Connection_Evicts_First(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	first := &fakeSink{}
	second := &fakeSink{}

	// Given a connected user
	registry.Register(userID, first)

	// When the same user connects again
	previous, replaced := registry.Register(userID, second)

	// Then the first handle is evicted and returned to the caller
	req.True(replaced)
	req.Same(first, previous)
	found, _ := registry.Lookup(userID)
	req.Same(second, found)
	req.Len(registry.Snapshot(), 1)
}

func TestRegistry_Unregister_Removes_Current_Handle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	sink := &fakeSink{}

	registry.Register(userID, sink)

	// When the connection goes away
	removed := registry.Unregister(userID, sink)

	// Then presence is gone
	req.True(removed)
	req.False(registry.IsOnline(userID))
	req.Empty(registry.Snapshot())
}

func TestRegistry_Unregister_Stale_Handle_Is_Ignored(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	old := &fakeSink{}
	fresh := &fakeSink{}

	// Given a reconnect already replaced the old handle
	registry.Register(userID, old)
	registry.Register(userID, fresh)

	// When the old connection's teardown fires late
	removed := registry.Unregister(userID, old)

	// Then the newer connection is untouched
	req.False(removed)
	req.True(registry.IsOnline(userID))
	found, _ := registry.Lookup(userID)
	req.Same(fresh, found)
}

func TestRegistry_Snapshot_Lists_All_Connected(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	users := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}

	for _, userID := range users {
		registry.Register(userID, &fakeSink{})
	}

	snapshot := registry.Snapshot()
	req.Len(snapshot, 3)
	for _, userID := range users {
		req.Contains(snapshot, userID)
	}
}
