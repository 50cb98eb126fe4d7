package room

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSender struct {
	open     bool
	fail     bool
	received [][]byte
}

func (f *fakeSender) Open() bool { return f.open }

func (f *fakeSender) Send(data []byte) error {
	if f.fail {
		return errors.New("write failed")
	}
	f.received = append(f.received, data)
	return nil
}

func lookupFrom(senders map[string]*fakeSender) func(string) Sender {
	return func(connID string) Sender {
		s, ok := senders[connID]
		if !ok {
			return nil
		}
		return s
	}
}

func newTestRegistry(ttl time.Duration) *Registry {
	return NewRegistry(ttl, zap.NewNop())
}

func TestRegistry_SubscribeMovesBetweenRooms(t *testing.T) {
	r := newTestRegistry(10 * time.Minute)

	r.Subscribe("c1", "roomA")
	r.Subscribe("c1", "roomB")

	assert.Nil(t, r.Get("roomA"), "roomA should be destroyed once emptied")
	b := r.Get("roomB")
	assert.NotNil(t, b)
	assert.True(t, b.Members["c1"])
	assert.Equal(t, "roomB", r.RoomOf("c1"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_UnsubscribeDestroysEmptyRoom(t *testing.T) {
	r := newTestRegistry(10 * time.Minute)

	r.Subscribe("c1", "roomA")
	r.Subscribe("c2", "roomA")
	r.Unsubscribe("c1")
	assert.NotNil(t, r.Get("roomA"))
	r.Unsubscribe("c2")
	assert.Nil(t, r.Get("roomA"))
	assert.Equal(t, "", r.RoomOf("c1"))

	// Unsubscribing an unknown connection is a no-op.
	r.Unsubscribe("ghost")
}

func TestRegistry_BroadcastWithExclusion(t *testing.T) {
	r := newTestRegistry(10 * time.Minute)
	senders := map[string]*fakeSender{
		"c1": {open: true},
		"c2": {open: true},
		"c3": {open: true},
	}
	for id := range senders {
		r.Subscribe(id, "match1")
	}

	sent := r.Broadcast("match1", []byte(`{"type":"snapshot"}`), lookupFrom(senders), "c2")
	assert.Equal(t, 2, sent)
	assert.Empty(t, senders["c2"].received)
	assert.Len(t, senders["c1"].received, 1)
	assert.Len(t, senders["c3"].received, 1)
}

func TestRegistry_BroadcastIsolatesFailures(t *testing.T) {
	r := newTestRegistry(10 * time.Minute)
	senders := map[string]*fakeSender{
		"c1": {open: true},
		"c2": {open: true, fail: true},
		"c3": {open: true},
	}
	for id := range senders {
		r.Subscribe(id, "match1")
	}

	sent := r.Broadcast("match1", []byte("x"), lookupFrom(senders), "")
	assert.Equal(t, 2, sent)
}

func TestRegistry_BroadcastSkipsClosedAndUnknown(t *testing.T) {
	r := newTestRegistry(10 * time.Minute)
	senders := map[string]*fakeSender{
		"c1": {open: true},
		"c2": {open: false},
	}
	r.Subscribe("c1", "match1")
	r.Subscribe("c2", "match1")
	r.Subscribe("c3", "match1") // no sender resolvable

	sent := r.Broadcast("match1", []byte("x"), lookupFrom(senders), "")
	assert.Equal(t, 1, sent)
}

func TestRegistry_BroadcastUnknownRoom(t *testing.T) {
	r := newTestRegistry(10 * time.Minute)
	sent := r.Broadcast("nope", []byte("x"), func(string) Sender { return nil }, "")
	assert.Equal(t, 0, sent)
}

func TestRegistry_CleanupRemovesInactiveRooms(t *testing.T) {
	r := newTestRegistry(10 * time.Minute)
	base := time.Unix(1696950000, 0)
	r.now = func() time.Time { return base }

	r.Subscribe("c1", "stale")
	r.Subscribe("c2", "fresh")

	r.now = func() time.Time { return base.Add(9 * time.Minute) }
	r.Broadcast("fresh", []byte("x"), func(string) Sender { return nil }, "")

	r.now = func() time.Time { return base.Add(11 * time.Minute) }
	removed := r.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Nil(t, r.Get("stale"))
	assert.NotNil(t, r.Get("fresh"))

	// Reverse index entries for the removed room are purged.
	assert.Equal(t, "", r.RoomOf("c1"))
	assert.Equal(t, "fresh", r.RoomOf("c2"))
}
