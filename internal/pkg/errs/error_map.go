/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses, WebSocket error events and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: Validation Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Kind: KindValidation, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Kind: KindValidation, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Kind: KindValidation, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Kind: KindValidation, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Kind: KindValidation, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnknownEvent:         {Code: ErrUnknownEvent, Kind: KindValidation, Message: "Unsupported event: %s.", Status: http.StatusBadRequest},
	ErrInvalidContentType:   {Code: ErrInvalidContentType, Kind: KindValidation, Message: "Invalid content type.", Status: http.StatusBadRequest},
	ErrInvalidLevel:         {Code: ErrInvalidLevel, Kind: KindValidation, Message: "Invalid difficulty level.", Status: http.StatusBadRequest},
	ErrInvalidLanguage:      {Code: ErrInvalidLanguage, Kind: KindValidation, Message: "Invalid programming language.", Status: http.StatusBadRequest},
	ErrInvalidGenre:         {Code: ErrInvalidGenre, Kind: KindValidation, Message: "Invalid genre for the selected content type and language.", Status: http.StatusBadRequest},
	ErrInvalidDuration:      {Code: ErrInvalidDuration, Kind: KindValidation, Message: "Invalid test duration.", Status: http.StatusBadRequest},

	// 2xxx: Room and Race Errors
	ErrRoomCodeExists:        {Code: ErrRoomCodeExists, Kind: KindConflict, Message: "Room code already exists.", Status: http.StatusConflict},
	ErrRoomNotFound:          {Code: ErrRoomNotFound, Kind: KindNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrRoomIsFull:            {Code: ErrRoomIsFull, Kind: KindConflict, Message: "Room is already full.", Status: http.StatusConflict},
	ErrRoomNotJoinable:       {Code: ErrRoomNotJoinable, Kind: KindConflict, Message: "Room is not available for joining.", Status: http.StatusConflict},
	ErrOwnRoom:               {Code: ErrOwnRoom, Kind: KindConflict, Message: "Cannot join your own room.", Status: http.StatusConflict},
	ErrPerformanceNotFound:   {Code: ErrPerformanceNotFound, Kind: KindNotFound, Message: "Player performance record not found.", Status: http.StatusNotFound},
	ErrRoomClosed:            {Code: ErrRoomClosed, Kind: KindConflict, Message: "This race is already over.", Status: http.StatusConflict},
	ErrRoomAlreadyCompleted:  {Code: ErrRoomAlreadyCompleted, Kind: KindConflict, Message: "Cannot cancel a completed room.", Status: http.StatusConflict},
	ErrRematchUnavailable:    {Code: ErrRematchUnavailable, Kind: KindConflict, Message: "Cannot create a rematch for this room.", Status: http.StatusConflict},
	ErrPlayerAlreadyFinished: {Code: ErrPlayerAlreadyFinished, Kind: KindConflict, Message: "You already finished this race.", Status: http.StatusConflict},
	ErrRaceStarted:           {Code: ErrRaceStarted, Kind: KindConflict, Message: "The race has already started.", Status: http.StatusConflict},
	ErrOpponentMissing:       {Code: ErrOpponentMissing, Kind: KindConflict, Message: "Waiting for an opponent to join.", Status: http.StatusConflict},

	// 3xxx: User, Session, and Security Errors
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Kind: KindAuthorization, Message: "Verification required. Please try again.", Status: http.StatusForbidden},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Kind: KindAuthorization, Message: "Verification failed. Please try again.", Status: http.StatusForbidden},
	ErrUnauthorized:         {Code: ErrUnauthorized, Kind: KindAuthorization, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrNotAuthenticated:     {Code: ErrNotAuthenticated, Kind: KindAuthorization, Message: "Not authenticated.", Status: http.StatusUnauthorized},
	ErrIdentityMismatch:     {Code: ErrIdentityMismatch, Kind: KindAuthorization, Message: "Not authenticated or user ID mismatch.", Status: http.StatusForbidden},
	ErrNotHost:              {Code: ErrNotHost, Kind: KindAuthorization, Message: "Only the host can do that.", Status: http.StatusForbidden},
	ErrUserNotFound:         {Code: ErrUserNotFound, Kind: KindNotFound, Message: "Authentication failed: user not found.", Status: http.StatusNotFound},
	ErrNotParticipant:       {Code: ErrNotParticipant, Kind: KindAuthorization, Message: "You are not a player in this room.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Kind: KindInternal, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Kind: KindInternal, Message: "Could not save your game. Please try again.", Status: http.StatusServiceUnavailable},
	ErrContentUnavailable: {Code: ErrContentUnavailable, Kind: KindInternal, Message: "Could not generate race text. Please try again.", Status: http.StatusBadGateway},
}
