package game

// Wire payloads. Field names follow the client protocol, not Go convention.

type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsMaster bool   `json:"isMaster"`
}

type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
	Theme      string `json:"theme"`
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
	RoomID     string `json:"roomId"`
}

type RoomRequest struct {
	RoomID string `json:"roomId"`
}

type RemovePlayerRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type ReconnectRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
	Theme  string `json:"theme"`
}

type RoomJoinedPayload struct {
	RoomID   string       `json:"roomId"`
	Theme    string       `json:"theme"`
	IsMaster bool         `json:"isMaster"`
	Players  []PlayerInfo `json:"players"`
}

type UpdatePlayersPayload struct {
	Players []PlayerInfo `json:"players"`
}

type CardPayload struct {
	Card int `json:"card"`
}

type GameStartedPayload struct {
	Players     []PlayerInfo `json:"players"`
	PlayerCount int          `json:"playerCount"`
}

type PlayerRemovedPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
