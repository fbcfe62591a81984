package chat

import "time"

// EventKind discriminates the entries of a property's chat log.
type EventKind string

const (
	KindMessage        EventKind = "message"
	KindZoomCreated    EventKind = "zoom_created"
	KindUserJoined     EventKind = "user_joined"
	KindUserLeft       EventKind = "user_left"
	KindInvestment     EventKind = "investment"
	KindPropertyUpdate EventKind = "property_update"
)

// ChatEvent is one immutable entry in a property's message log. Exactly one of
// the metadata pointers is set, matching Kind; plain messages carry none.
type ChatEvent struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"propertyId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Message    string    `json:"message"`
	Kind       EventKind `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`

	Zoom       *ZoomMeta           `json:"zoom,omitempty"`
	Investment *InvestmentMeta     `json:"investment,omitempty"`
	Property   *PropertyUpdateMeta `json:"property,omitempty"`
}

// ZoomMeta accompanies events of kind zoom_created.
type ZoomMeta struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	JoinURL  string `json:"joinUrl"`
}

// InvestmentMeta accompanies events of kind investment.
type InvestmentMeta struct {
	Amount float64 `json:"amount"`
	Shares int     `json:"shares"`
}

// PropertyUpdateMeta accompanies events of kind property_update.
type PropertyUpdateMeta struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// MeetingRoom is an ephemeral video meeting attached to a property. Rooms live
// only in the coordinator; a process restart discards them.
type MeetingRoom struct {
	ID           string     `json:"id"`
	PropertyID   int64      `json:"propertyId"`
	Name         string     `json:"name"`
	JoinURL      string     `json:"joinUrl"`
	MeetingID    string     `json:"meetingId"`
	Passcode     string     `json:"passcode,omitempty"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	Participants int        `json:"participants"`
	Active       bool       `json:"active"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}
