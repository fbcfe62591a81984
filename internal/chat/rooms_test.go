package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMeetingRoomFields(t *testing.T) {
	scheduled := time.Now().Add(time.Hour)
	room := newMeetingRoom(7, "user-1", "Tour", &scheduled)

	require.Equal(t, int64(7), room.PropertyID)
	require.Equal(t, "user-1", room.CreatedBy)
	require.Equal(t, "Tour", room.Name)
	require.True(t, room.Active)
	require.Equal(t, 1, room.Participants)
	require.Len(t, room.MeetingID, 11)
	require.Len(t, room.Passcode, 6)
	require.Contains(t, room.JoinURL, room.MeetingID)
	require.Contains(t, room.JoinURL, room.Passcode)
	require.NotEmpty(t, room.ID)
	require.Equal(t, &scheduled, room.ScheduledFor)
}

func TestNewMeetingRoomIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		room := newMeetingRoom(7, "u1", "Tour", nil)
		_, dup := seen[room.ID]
		require.False(t, dup, "room id %s issued twice", room.ID)
		seen[room.ID] = struct{}{}
	}
}

func TestRoomDirectoryAddFindRemove(t *testing.T) {
	d := &roomDirectory{}

	a := newMeetingRoom(7, "u1", "A", nil)
	b := newMeetingRoom(7, "u1", "B", nil)
	d.add(a)
	d.add(b)

	require.Equal(t, a, d.find(a.ID))
	require.Nil(t, d.find("nope"))

	list := d.list()
	require.Len(t, list, 2)
	require.Equal(t, []string{a.ID, b.ID}, []string{list[0].ID, list[1].ID})

	require.True(t, d.remove(a.ID))
	require.False(t, d.remove(a.ID), "second removal is a no-op")
	require.Nil(t, d.find(a.ID))
	require.Len(t, d.list(), 1)
}

func TestRandomDigits(t *testing.T) {
	for _, n := range []int{1, 6, 11} {
		s := randomDigits(n)
		require.Len(t, s, n)
		for _, r := range s {
			require.True(t, r >= '0' && r <= '9')
		}
	}
}
