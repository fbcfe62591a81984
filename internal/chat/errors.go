package chat

import "errors"

var (
	ErrEmptyMessage = errors.New("message text is empty")
	ErrRoomNotFound = errors.New("meeting room not found")
	ErrRoomName     = errors.New("room name is required")
)
