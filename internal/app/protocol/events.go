/*
Package protocol defines the multiplayer wire format: a JSON envelope naming an event,
typed payloads for every inbound event with validation at the boundary, and the
outbound payloads the server emits.
*/
package protocol

// Client to server events.
const (
	EventAuthenticate      = "authenticate"
	EventJoinRoom          = "join-room"
	EventRoomConfiguration = "room-configuration"
	EventPlayerReady       = "player-ready"
	EventHostStartMatch    = "host-start-match"
	EventUpdateProgress    = "update-progress"
	EventPlayerFinished    = "player-finished"
	EventRequestRematch    = "request-rematch"
	EventAcceptRematch     = "accept-rematch"
	EventDeclineRematch    = "decline-rematch"
	EventCancelRoom        = "cancel-room"
	EventPing              = "ping"
)

// Server to client events. player-ready is reused as the broadcast name.
const (
	EventAuthenticated        = "authenticated"
	EventActiveRoomsAvailable = "active-rooms-available"
	EventRoomJoined           = "room-joined"
	EventPlayerJoined         = "player-joined"
	EventRoomUpdated          = "room-updated"
	EventGameStarting         = "game-starting"
	EventOpponentProgress     = "opponent-progress"
	EventOpponentFinished     = "opponent-finished"
	EventGameCompleted        = "game-completed"
	EventRematchRequested     = "rematch-requested"
	EventRematchCreated       = "rematch-created"
	EventRematchDeclined      = "rematch-declined"
	EventPlayerDisconnected   = "player-disconnected"
	EventGameCancelled        = "game-cancelled"
	EventPong                 = "pong"
	EventAck                  = "ack"
	EventError                = "error"
)
