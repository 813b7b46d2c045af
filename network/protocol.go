package network

// 入站事件
const (
	EventCreateRoom      = "create_room"
	EventJoinRoom        = "join_room"
	EventDistributeCards = "distribute_cards"
	EventResetGame       = "reset_game"
	EventRemovePlayer    = "remove_player"
	EventRedistribute    = "request_card_redistribution"
	EventKeepAlive       = "keep_alive"
	EventReconnectPlayer = "reconnect_player"
	EventDisconnect      = "disconnect"
)

// 出站事件
const (
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventUpdatePlayers   = "update_players"
	EventCardDistributed = "card_distributed"
	EventGameStarted     = "game_started"
	EventGameReset       = "game_reset"
	EventPlayerRemoved   = "player_removed"
	EventError           = "error"
)
