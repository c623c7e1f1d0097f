package core

import "errors"

// Every operation failure surfaces as one of these sentinels, possibly
// wrapped with context. They are recovered at the calling connection and
// never terminate the server or touch other connections' state.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room already exists")
	ErrRoomFull        = errors.New("room is full")
	ErrNotAMember      = errors.New("not a member of room")
	ErrWrongMode       = errors.New("operation not supported by room mode")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrNoStorage       = errors.New("no content store configured")
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidItem     = errors.New("invalid item payload")
)
