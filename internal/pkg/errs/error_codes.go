/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients over HTTP and
the multiplayer WebSocket channel.
*/
package errs

// 1xxx: Validation Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrUnknownEvent indicates that a client sent an event name the server does not handle.
	ErrUnknownEvent = 1101

	// ErrInvalidContentType indicates an unsupported content type (not paragraph or code).
	ErrInvalidContentType = 1201

	// ErrInvalidLevel indicates an unsupported difficulty level.
	ErrInvalidLevel = 1202

	// ErrInvalidLanguage indicates a missing or unsupported programming language for code content.
	ErrInvalidLanguage = 1203

	// ErrInvalidGenre indicates a genre that does not exist for the selected type and language.
	ErrInvalidGenre = 1204

	// ErrInvalidDuration indicates a test duration outside the accepted range.
	ErrInvalidDuration = 1205
)

// 2xxx: Room and Race Errors
const (
	// ErrRoomCodeExists indicates that the attempted room code for creation already exists.
	ErrRoomCodeExists = 2102

	// ErrRoomNotFound indicates that the attempted room code for operation does not exist.
	ErrRoomNotFound = 2103

	// ErrRoomIsFull indicates that the room being joined already has two players.
	ErrRoomIsFull = 2104

	// ErrRoomNotJoinable indicates that the room is no longer waiting for a guest.
	ErrRoomNotJoinable = 2105

	// ErrOwnRoom indicates that the host tried to join their own room as a guest.
	ErrOwnRoom = 2106

	// ErrPerformanceNotFound indicates that the player has no performance record in the room.
	ErrPerformanceNotFound = 2107

	// ErrRoomClosed indicates that the room is completed or cancelled and accepts no more race input.
	ErrRoomClosed = 2108

	// ErrRoomAlreadyCompleted indicates an attempt to cancel a room whose race already finished.
	ErrRoomAlreadyCompleted = 2109

	// ErrRematchUnavailable indicates that a rematch cannot be created from the room.
	ErrRematchUnavailable = 2110

	// ErrPlayerAlreadyFinished indicates a stats update for a player who already finished.
	ErrPlayerAlreadyFinished = 2111

	// ErrRaceStarted indicates that the room configuration can no longer change because the race began.
	ErrRaceStarted = 2112

	// ErrOpponentMissing indicates a start attempt before a second player holds a seat.
	ErrOpponentMissing = 2113
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid or incorrect.
	ErrPowChallengeInvalid = 3002

	// ErrUnauthorized indicates that the caller is not signed in.
	ErrUnauthorized = 3010

	// ErrNotAuthenticated indicates that the connection has not completed the authenticate event.
	ErrNotAuthenticated = 3011

	// ErrIdentityMismatch indicates that the payload userId differs from the connection's identity.
	ErrIdentityMismatch = 3012

	// ErrNotHost indicates that a host-only action was attempted by another player.
	ErrNotHost = 3013

	// ErrUserNotFound indicates that the user directory has no such user.
	ErrUserNotFound = 3014

	// ErrNotParticipant indicates a room read by someone who does not play in it.
	ErrNotParticipant = 3015
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageUnavailable indicates a persistence failure; the action can be retried.
	ErrStorageUnavailable = 5001

	// ErrContentUnavailable indicates that race text could not be generated.
	ErrContentUnavailable = 5002
)
