package chat

import (
	"crypto/rand"
	"fmt"
	"time"
)

// roomDirectory holds the ephemeral meeting rooms of one property in creation
// order. Like messageLog it relies on the coordinator for serialization.
type roomDirectory struct {
	rooms []*MeetingRoom
}

func (d *roomDirectory) add(room *MeetingRoom) {
	d.rooms = append(d.rooms, room)
}

func (d *roomDirectory) find(roomID string) *MeetingRoom {
	for _, room := range d.rooms {
		if room.ID == roomID {
			return room
		}
	}
	return nil
}

// remove deletes the room with the given id and reports whether it existed.
func (d *roomDirectory) remove(roomID string) bool {
	for i, room := range d.rooms {
		if room.ID == roomID {
			d.rooms = append(d.rooms[:i], d.rooms[i+1:]...)
			return true
		}
	}
	return false
}

func (d *roomDirectory) list() []*MeetingRoom {
	out := make([]*MeetingRoom, len(d.rooms))
	copy(out, d.rooms)
	return out
}

// newMeetingRoom synthesizes a room record with locally generated meeting
// credentials. Identifiers and passcodes come from crypto/rand; the room id
// carries a random suffix so rooms created in the same millisecond stay
// distinct.
func newMeetingRoom(propertyID int64, creatorID, name string, scheduledFor *time.Time) *MeetingRoom {
	now := time.Now()
	meetingID := randomDigits(11)
	passcode := randomDigits(6)

	return &MeetingRoom{
		ID:           fmt.Sprintf("room-%d-%d-%s", propertyID, now.UnixMilli(), randomDigits(8)),
		PropertyID:   propertyID,
		Name:         name,
		JoinURL:      fmt.Sprintf("https://zoom.us/j/%s?pwd=%s", meetingID, passcode),
		MeetingID:    meetingID,
		Passcode:     passcode,
		CreatedBy:    creatorID,
		CreatedAt:    now,
		Participants: 1,
		Active:       true,
		ScheduledFor: scheduledFor,
	}
}

func randomDigits(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	digits := make([]byte, n)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits)
}
