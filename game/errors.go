package game

import (
	"errors"
)

// Client-facing rejections. Each aborts the event before any room state is
// mutated and is delivered as an error event to the originating connection.
var (
	ErrNameRequired       = errors.New("player name is required")
	ErrThemeRequired      = errors.New("theme is required")
	ErrRoomNotFound       = errors.New("room not found")
	ErrNotMaster          = errors.New("only the master can do that")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrCannotRemoveMaster = errors.New("the master cannot be removed")
	ErrDeckShortfall      = errors.New("not enough cards for all players")
)
