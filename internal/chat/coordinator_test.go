package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// frame mirrors every outbound envelope shape for assertions.
type frame struct {
	Type       string         `json:"type"`
	Message    *ChatEvent     `json:"message"`
	Messages   []*ChatEvent   `json:"messages"`
	Rooms      []*MeetingRoom `json:"rooms"`
	Room       *MeetingRoom   `json:"room"`
	RoomID     string         `json:"roomId"`
	UserID     string         `json:"userId"`
	PropertyID int64          `json:"propertyId"`
}

// drain empties a client's outbox. Delivery happens synchronously inside the
// coordinator calls, so everything sent so far is already queued.
func drain(t *testing.T, c *Client) []frame {
	t.Helper()
	var frames []frame
	for {
		select {
		case raw, ok := <-c.Outbox():
			if !ok {
				return frames
			}
			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func types(frames []frame) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func connect(co *Coordinator, userID string, propertyID int64) *Client {
	c := NewClient(nil, userID, propertyID)
	co.Register(c)
	return c
}

func TestRegisterReplaysHistoryThenRooms(t *testing.T) {
	co := NewCoordinator(nil)
	co.PostMessage(7, "u1", "Ada", "", "hello")
	co.CreateRoom(7, "u1", "Tour", nil)

	c := connect(co, "u2", 7)
	frames := drain(t, c)

	require.GreaterOrEqual(t, len(frames), 2)
	require.Equal(t, TypeMessageHistory, frames[0].Type)
	require.Equal(t, TypeZoomRooms, frames[1].Type)

	// History carries the message, the join/leave trail, and the synthetic
	// room event; rooms carry the active room.
	var texts []string
	for _, evt := range frames[0].Messages {
		if evt.Kind == KindMessage {
			texts = append(texts, evt.Message)
		}
	}
	require.Equal(t, []string{"hello"}, texts)
	require.Len(t, frames[1].Rooms, 1)
	require.Equal(t, "Tour", frames[1].Rooms[0].Name)

	// The new client never sees its own user_joined announcement.
	for _, f := range frames {
		require.NotEqual(t, TypeUserJoined, f.Type)
	}
}

func TestRegisterAnnouncesJoinToPeers(t *testing.T) {
	co := NewCoordinator(nil)
	a := connect(co, "alice", 7)
	drain(t, a)

	connect(co, "bob", 7)

	frames := drain(t, a)
	require.Equal(t, []string{TypeUserJoined}, types(frames))
	require.Equal(t, "bob", frames[0].UserID)
	require.Equal(t, int64(7), frames[0].PropertyID)
}

func TestBroadcastNeverCrossesProperties(t *testing.T) {
	co := NewCoordinator(nil)
	a := connect(co, "alice", 7)
	b := connect(co, "bob", 7)
	c := connect(co, "carol", 9)
	drain(t, a)
	drain(t, b)
	drain(t, c)

	co.PostMessage(7, "alice", "Alice", "", "hello")

	require.Equal(t, []string{TypeNewMessage}, types(drain(t, a)))
	require.Equal(t, []string{TypeNewMessage}, types(drain(t, b)))
	require.Empty(t, drain(t, c), "property 9 must not see property 7 traffic")
}

func TestSendMessageReachesPeerWithMonotonicID(t *testing.T) {
	co := NewCoordinator(nil)
	a := connect(co, "alice", 7)
	b := connect(co, "bob", 7)
	drain(t, a)
	drain(t, b)

	prior := co.Recent(7, HistoryLimit)
	var maxID int64
	for _, evt := range prior {
		if evt.ID > maxID {
			maxID = evt.ID
		}
	}

	raw := []byte(`{"type":"send_message","message":"hello","userName":"Alice"}`)
	require.NoError(t, co.HandleInbound(a, raw))

	frames := drain(t, b)
	require.Equal(t, []string{TypeNewMessage}, types(frames))
	require.Equal(t, "hello", frames[0].Message.Message)
	require.Equal(t, "Alice", frames[0].Message.UserName)
	require.Equal(t, KindMessage, frames[0].Message.Kind)
	require.Greater(t, frames[0].Message.ID, maxID)

	// The sender receives its own message too.
	require.Equal(t, []string{TypeNewMessage}, types(drain(t, a)))
}

func TestCreateZoomNotifiesTwice(t *testing.T) {
	co := NewCoordinator(nil)
	a := connect(co, "alice", 7)
	b := connect(co, "bob", 7)
	drain(t, a)
	drain(t, b)

	raw := []byte(`{"type":"create_zoom","roomName":"Tour"}`)
	require.NoError(t, co.HandleInbound(a, raw))

	frames := drain(t, b)
	require.Equal(t, []string{TypeZoomRoomCreated, TypeNewMessage}, types(frames))
	require.Equal(t, "Tour", frames[0].Room.Name)
	require.Equal(t, KindZoomCreated, frames[1].Message.Kind)
	require.NotNil(t, frames[1].Message.Zoom)
	require.Equal(t, frames[0].Room.ID, frames[1].Message.Zoom.RoomID)

	rooms := co.Rooms(7)
	require.Len(t, rooms, 1)
	require.Equal(t, "Tour", rooms[0].Name)
}

func TestRemoveRoomHidesItAndNotifies(t *testing.T) {
	co := NewCoordinator(nil)
	room := co.CreateRoom(7, "alice", "Tour", nil)
	a := connect(co, "alice", 7)
	drain(t, a)

	require.True(t, co.RemoveRoom(7, room.ID))
	require.Empty(t, co.Rooms(7))

	frames := drain(t, a)
	require.Equal(t, []string{TypeZoomRoomRemoved}, types(frames))
	require.Equal(t, room.ID, frames[0].RoomID)

	require.False(t, co.RemoveRoom(7, room.ID), "removing an unknown id is a no-op")
}

func TestJoinZoomAcksRequesterOnly(t *testing.T) {
	co := NewCoordinator(nil)
	room := co.CreateRoom(7, "alice", "Tour", nil)
	a := connect(co, "alice", 7)
	b := connect(co, "bob", 7)
	drain(t, a)
	drain(t, b)

	raw := []byte(fmt.Sprintf(`{"type":"join_zoom","roomId":%q}`, room.ID))
	require.NoError(t, co.HandleInbound(b, raw))

	frames := drain(t, b)
	require.Equal(t, []string{TypeZoomJoined}, types(frames))
	require.Equal(t, 2, frames[0].Room.Participants)
	require.Empty(t, drain(t, a))

	require.ErrorIs(t, co.HandleInbound(b, []byte(`{"type":"join_zoom","roomId":"nope"}`)), ErrRoomNotFound)
}

func TestUnregisterAnnouncesLeaveAndIsIdempotent(t *testing.T) {
	co := NewCoordinator(nil)
	a := connect(co, "alice", 7)
	b := connect(co, "bob", 7)
	drain(t, a)
	drain(t, b)

	co.Unregister(a.ID)

	frames := drain(t, b)
	require.Equal(t, []string{TypeUserLeft}, types(frames))
	require.Equal(t, "alice", frames[0].UserID)

	// Second unregister is a no-op: no panic, no duplicate announcement.
	co.Unregister(a.ID)
	require.Empty(t, drain(t, b))

	// Later broadcasts never reach the departed client; its outbox is closed.
	co.PostMessage(7, "bob", "Bob", "", "still here?")
	_, open := <-a.Outbox()
	require.False(t, open)
}

func TestHistoryBoundedAtCapacity(t *testing.T) {
	co := NewCoordinator(nil)
	for i := 0; i < 150; i++ {
		co.PostMessage(7, "u1", "U1", "", fmt.Sprintf("msg %d", i+1))
	}

	recent := co.Recent(7, 100)
	require.Len(t, recent, 100)
	require.Equal(t, "msg 51", recent[0].Message)
	require.Equal(t, "msg 150", recent[99].Message)
}

func TestReadersOnColdPropertiesAreSafe(t *testing.T) {
	co := NewCoordinator(nil)

	// Readers hammering properties nobody has touched, while writers churn
	// on another one. Reads must not allocate coordinator state.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			co.PostMessage(1, "alice", "Alice", "", "tick")
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			propertyID := int64(100 + g)
			for i := 0; i < 200; i++ {
				require.Empty(t, co.Recent(propertyID, 10))
				require.Empty(t, co.Rooms(propertyID))
			}
		}(g)
	}
	wg.Wait()
	<-done

	// The cold properties stayed cold.
	for g := 0; g < 8; g++ {
		require.Empty(t, co.Recent(int64(100+g), 10))
		require.Empty(t, co.Rooms(int64(100+g)))
	}
}

func TestHandleInboundErrors(t *testing.T) {
	co := NewCoordinator(nil)
	a := connect(co, "alice", 7)
	b := connect(co, "bob", 7)
	drain(t, a)
	drain(t, b)

	require.Error(t, co.HandleInbound(a, []byte(`{not json`)))
	require.ErrorIs(t, co.HandleInbound(a, []byte(`{"type":"send_message","message":""}`)), ErrEmptyMessage)
	require.ErrorIs(t, co.HandleInbound(a, []byte(`{"type":"create_zoom"}`)), ErrRoomName)
	require.NoError(t, co.HandleInbound(a, []byte(`{"type":"mystery"}`)), "unknown types are ignored")

	// None of it leaked to the peer, and the peer still receives traffic.
	require.Empty(t, drain(t, b))
	co.PostMessage(7, "alice", "Alice", "", "after the noise")
	require.Equal(t, []string{TypeNewMessage}, types(drain(t, b)))
}

func TestPresenceDeduplicatesUsers(t *testing.T) {
	co := NewCoordinator(nil)
	connect(co, "alice", 7)
	connect(co, "alice", 7)
	connect(co, "bob", 7)
	connect(co, "carol", 9)

	users := co.Presence(7)
	require.ElementsMatch(t, []string{"alice", "bob"}, users)
	require.Equal(t, []string{"carol"}, co.Presence(9))
}

type captureArchiver struct {
	events chan *ChatEvent
}

func (a *captureArchiver) ArchiveEvent(_ context.Context, evt *ChatEvent) error {
	a.events <- evt
	return nil
}

func TestEventsReachArchiver(t *testing.T) {
	archiver := &captureArchiver{events: make(chan *ChatEvent, 8)}
	co := NewCoordinator(archiver)

	co.PostMessage(7, "alice", "Alice", "", "persist me")

	select {
	case evt := <-archiver.events:
		require.Equal(t, "persist me", evt.Message)
		require.Equal(t, int64(7), evt.PropertyID)
	case <-time.After(time.Second):
		t.Fatal("archiver was never called")
	}
}

func TestShutdownClosesAllClients(t *testing.T) {
	co := NewCoordinator(nil)
	a := connect(co, "alice", 7)
	b := connect(co, "bob", 9)
	drain(t, a)
	drain(t, b)

	co.Shutdown()

	_, open := <-a.Outbox()
	require.False(t, open)
	_, open = <-b.Outbox()
	require.False(t, open)
}
