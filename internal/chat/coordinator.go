// Package chat implements the property chat and meeting-room coordinator: an
// in-memory registry of live connections keyed by property, a bounded message
// log per property, an ephemeral meeting-room directory, and a broadcast
// dispatcher fanning events out to a property's connected clients.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Archiver receives every appended chat event for durable storage. The
// coordinator calls it asynchronously and never blocks on it; the in-memory
// log is the source of truth for live clients.
type Archiver interface {
	ArchiveEvent(ctx context.Context, evt *ChatEvent) error
}

// Coordinator owns all live chat state for the process. Every mutation and
// every delivery runs under one writer lock, which serializes per-property
// ordering: append order equals delivery order within a connection's stream.
type Coordinator struct {
	mu sync.RWMutex

	clients map[uuid.UUID]*Client
	history map[int64]*messageLog
	rooms   map[int64]*roomDirectory

	nextEventID  int64
	historyLimit int

	archive Archiver
}

// NewCoordinator creates an empty coordinator. archive may be nil, in which
// case events live only in memory.
func NewCoordinator(archive Archiver) *Coordinator {
	return &Coordinator{
		clients:      make(map[uuid.UUID]*Client),
		history:      make(map[int64]*messageLog),
		rooms:        make(map[int64]*roomDirectory),
		historyLimit: HistoryLimit,
		archive:      archive,
	}
}

// Register adds a client, replays recent history and active rooms to it alone,
// then announces its arrival to the other clients on the same property.
func (co *Coordinator) Register(c *Client) {
	co.mu.Lock()
	defer co.mu.Unlock()

	co.clients[c.ID] = c
	c.closed = false

	c.enqueue(mustMarshal(historyEnvelope{
		Type:     TypeMessageHistory,
		Messages: co.ensureLog(c.PropertyID).tail(co.historyLimit),
	}))
	c.enqueue(mustMarshal(roomsEnvelope{
		Type:  TypeZoomRooms,
		Rooms: co.ensureDirectory(c.PropertyID).list(),
	}))

	evt := co.appendEventLocked(&ChatEvent{
		PropertyID: c.PropertyID,
		UserID:     c.UserID,
		Kind:       KindUserJoined,
	})
	co.broadcastLocked(c.PropertyID, mustMarshal(presenceEnvelope{
		Type:       TypeUserJoined,
		PropertyID: c.PropertyID,
		UserID:     c.UserID,
		Timestamp:  evt.Timestamp,
	}), c.UserID)

	log.Printf("chat: client %s registered (user %s, property %d)", c.ID, c.UserID, c.PropertyID)
}

// Unregister removes a client and announces its departure to remaining peers.
// Unknown ids are a no-op, so a double unregister is harmless.
func (co *Coordinator) Unregister(clientID uuid.UUID) {
	co.mu.Lock()
	defer co.mu.Unlock()

	c, ok := co.clients[clientID]
	if !ok {
		return
	}
	delete(co.clients, clientID)
	c.closed = true
	close(c.send)

	evt := co.appendEventLocked(&ChatEvent{
		PropertyID: c.PropertyID,
		UserID:     c.UserID,
		Kind:       KindUserLeft,
	})
	co.broadcastLocked(c.PropertyID, mustMarshal(presenceEnvelope{
		Type:       TypeUserLeft,
		PropertyID: c.PropertyID,
		UserID:     c.UserID,
		Timestamp:  evt.Timestamp,
	}), c.UserID)

	log.Printf("chat: client %s unregistered (user %s, property %d)", c.ID, c.UserID, c.PropertyID)
}

// HandleInbound dispatches one client frame. Unknown types are ignored;
// malformed payloads surface as errors for the caller to log. The connection
// is never torn down from here.
func (co *Coordinator) HandleInbound(c *Client, raw []byte) error {
	var env InboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	switch env.Type {
	case TypeSendMessage:
		if env.Message == "" {
			return ErrEmptyMessage
		}
		co.PostMessage(c.PropertyID, c.UserID, env.UserName, env.UserAvatar, env.Message)
		return nil

	case TypeCreateZoom:
		if env.RoomName == "" {
			return ErrRoomName
		}
		co.CreateRoom(c.PropertyID, c.UserID, env.RoomName, env.ScheduledFor)
		return nil

	case TypeJoinZoom:
		return co.joinRoom(c, env.RoomID)

	default:
		// Best-effort channel: unrecognized frames are dropped without reply.
		return nil
	}
}

// PostMessage appends a user message to the property log and fans it out to
// every connection on the property, the sender included.
func (co *Coordinator) PostMessage(propertyID int64, userID, userName, userAvatar, text string) *ChatEvent {
	co.mu.Lock()
	defer co.mu.Unlock()

	evt := co.appendEventLocked(&ChatEvent{
		PropertyID: propertyID,
		UserID:     userID,
		UserName:   userName,
		UserAvatar: userAvatar,
		Message:    text,
		Kind:       KindMessage,
	})
	co.broadcastLocked(propertyID, mustMarshal(messageEnvelope{Type: TypeNewMessage, Message: evt}), "")
	return evt
}

// CreateRoom stores a new meeting room and notifies the property twice: a
// zoom_room_created envelope carrying the room, and a synthetic zoom_created
// chat event delivered as new_message so the room shows up in history.
func (co *Coordinator) CreateRoom(propertyID int64, creatorID, name string, scheduledFor *time.Time) *MeetingRoom {
	co.mu.Lock()
	defer co.mu.Unlock()

	room := newMeetingRoom(propertyID, creatorID, name, scheduledFor)
	co.ensureDirectory(propertyID).add(room)

	co.broadcastLocked(propertyID, mustMarshal(roomEnvelope{Type: TypeZoomRoomCreated, Room: room}), "")

	evt := co.appendEventLocked(&ChatEvent{
		PropertyID: propertyID,
		UserID:     creatorID,
		Message:    fmt.Sprintf("Video meeting %q started", name),
		Kind:       KindZoomCreated,
		Zoom: &ZoomMeta{
			RoomID:   room.ID,
			RoomName: room.Name,
			JoinURL:  room.JoinURL,
		},
	})
	co.broadcastLocked(propertyID, mustMarshal(messageEnvelope{Type: TypeNewMessage, Message: evt}), "")

	return room
}

// RemoveRoom deletes a room and notifies the property. Removing an unknown id
// is a no-op.
func (co *Coordinator) RemoveRoom(propertyID int64, roomID string) bool {
	co.mu.Lock()
	defer co.mu.Unlock()

	if !co.ensureDirectory(propertyID).remove(roomID) {
		return false
	}
	co.broadcastLocked(propertyID, mustMarshal(roomRemovedEnvelope{Type: TypeZoomRoomRemoved, RoomID: roomID}), "")
	return true
}

func (co *Coordinator) joinRoom(c *Client, roomID string) error {
	co.mu.Lock()
	defer co.mu.Unlock()

	room := co.ensureDirectory(c.PropertyID).find(roomID)
	if room == nil {
		return ErrRoomNotFound
	}
	room.Participants++
	c.enqueue(mustMarshal(roomEnvelope{Type: TypeZoomJoined, Room: room}))
	return nil
}

// Recent returns up to limit events from the tail of a property's log in
// append order. A property nobody has written to yields an empty tail and
// allocates nothing in the coordinator.
func (co *Coordinator) Recent(propertyID int64, limit int) []*ChatEvent {
	co.mu.RLock()
	defer co.mu.RUnlock()

	l, ok := co.history[propertyID]
	if !ok {
		return []*ChatEvent{}
	}
	return l.tail(limit)
}

// Rooms returns the active meeting rooms of a property in creation order.
func (co *Coordinator) Rooms(propertyID int64) []*MeetingRoom {
	co.mu.RLock()
	defer co.mu.RUnlock()

	d, ok := co.rooms[propertyID]
	if !ok {
		return []*MeetingRoom{}
	}
	return d.list()
}

// Presence returns the distinct user ids currently connected to a property.
func (co *Coordinator) Presence(propertyID int64) []string {
	co.mu.RLock()
	defer co.mu.RUnlock()

	seen := make(map[string]struct{})
	users := make([]string, 0)
	for _, c := range co.clients {
		if c.PropertyID != propertyID {
			continue
		}
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		users = append(users, c.UserID)
	}
	return users
}

// AnnounceInvestment publishes an investment event to a property's live
// audience. Called by the investment handler after the row is committed.
func (co *Coordinator) AnnounceInvestment(propertyID int64, userID, userName string, amount float64, shares int) {
	co.mu.Lock()
	defer co.mu.Unlock()

	evt := co.appendEventLocked(&ChatEvent{
		PropertyID: propertyID,
		UserID:     userID,
		UserName:   userName,
		Message:    fmt.Sprintf("%s invested in this property", userName),
		Kind:       KindInvestment,
		Investment: &InvestmentMeta{Amount: amount, Shares: shares},
	})
	co.broadcastLocked(propertyID, mustMarshal(messageEnvelope{Type: TypeNewMessage, Message: evt}), "")
}

// AnnouncePropertyUpdate publishes a listing change to a property's live
// audience.
func (co *Coordinator) AnnouncePropertyUpdate(propertyID int64, userID, field, value string) {
	co.mu.Lock()
	defer co.mu.Unlock()

	evt := co.appendEventLocked(&ChatEvent{
		PropertyID: propertyID,
		UserID:     userID,
		Message:    fmt.Sprintf("Listing updated: %s", field),
		Kind:       KindPropertyUpdate,
		Property:   &PropertyUpdateMeta{Field: field, Value: value},
	})
	co.broadcastLocked(propertyID, mustMarshal(messageEnvelope{Type: TypeNewMessage, Message: evt}), "")
}

// Shutdown closes every connection and drops all state. The coordinator must
// not be used afterwards.
func (co *Coordinator) Shutdown() {
	co.mu.Lock()
	defer co.mu.Unlock()

	for id, c := range co.clients {
		delete(co.clients, id)
		c.closed = true
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	}
	co.history = make(map[int64]*messageLog)
	co.rooms = make(map[int64]*roomDirectory)
}

// appendEventLocked assigns the next event id and timestamp, appends under the
// property's capacity bound, and hands the event to the archiver off the lock
// path. Callers must hold co.mu.
func (co *Coordinator) appendEventLocked(evt *ChatEvent) *ChatEvent {
	co.nextEventID++
	evt.ID = co.nextEventID
	evt.Timestamp = time.Now()
	co.ensureLog(evt.PropertyID).append(evt)

	if co.archive != nil {
		go func(evt *ChatEvent) {
			if err := co.archive.ArchiveEvent(context.Background(), evt); err != nil {
				log.Printf("chat: archive event %d failed: %v", evt.ID, err)
			}
		}(evt)
	}
	return evt
}

// broadcastLocked delivers payload to every open connection on the property,
// skipping connections owned by excludeUserID when it is non-empty. Callers
// must hold co.mu.
func (co *Coordinator) broadcastLocked(propertyID int64, payload []byte, excludeUserID string) {
	for _, c := range co.clients {
		if c.PropertyID != propertyID {
			continue
		}
		if excludeUserID != "" && c.UserID == excludeUserID {
			continue
		}
		c.enqueue(payload)
	}
}

// ensureLog and ensureDirectory lazily create per-property state. They write
// to the coordinator maps, so callers must hold co.mu for writing; read paths
// look the maps up directly instead.
func (co *Coordinator) ensureLog(propertyID int64) *messageLog {
	l, ok := co.history[propertyID]
	if !ok {
		l = newMessageLog(co.historyLimit)
		co.history[propertyID] = l
	}
	return l
}

func (co *Coordinator) ensureDirectory(propertyID int64) *roomDirectory {
	d, ok := co.rooms[propertyID]
	if !ok {
		d = &roomDirectory{}
		co.rooms[propertyID] = d
	}
	return d
}
