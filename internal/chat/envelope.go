package chat

import (
	"encoding/json"
	"time"
)

// Outbound envelope types (coordinator -> client).
const (
	TypeMessageHistory  = "message_history"
	TypeZoomRooms       = "zoom_rooms"
	TypeNewMessage      = "new_message"
	TypeZoomRoomCreated = "zoom_room_created"
	TypeZoomRoomRemoved = "zoom_room_removed"
	TypeZoomJoined      = "zoom_joined"
	TypeUserJoined      = "user_joined"
	TypeUserLeft        = "user_left"
)

// Inbound envelope types (client -> coordinator).
const (
	TypeSendMessage = "send_message"
	TypeCreateZoom  = "create_zoom"
	TypeJoinZoom    = "join_zoom"
)

// InboundEnvelope is the raw client frame. Type selects the payload shape; the
// payload fields are flattened into the same object on the wire.
type InboundEnvelope struct {
	Type string `json:"type"`

	// send_message
	Message    string `json:"message,omitempty"`
	UserName   string `json:"userName,omitempty"`
	UserAvatar string `json:"userAvatar,omitempty"`

	// create_zoom
	RoomName     string     `json:"roomName,omitempty"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`

	// join_zoom
	RoomID string `json:"roomId,omitempty"`
}

type historyEnvelope struct {
	Type     string       `json:"type"`
	Messages []*ChatEvent `json:"messages"`
}

type roomsEnvelope struct {
	Type  string         `json:"type"`
	Rooms []*MeetingRoom `json:"rooms"`
}

type messageEnvelope struct {
	Type    string     `json:"type"`
	Message *ChatEvent `json:"message"`
}

type roomEnvelope struct {
	Type string       `json:"type"`
	Room *MeetingRoom `json:"room"`
}

type roomRemovedEnvelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type presenceEnvelope struct {
	Type       string    `json:"type"`
	PropertyID int64     `json:"propertyId"`
	UserID     string    `json:"userId"`
	Timestamp  time.Time `json:"timestamp"`
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Every envelope type marshals; a failure here is a programming error.
		panic(err)
	}
	return data
}
