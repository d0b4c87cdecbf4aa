package jwt

import "github.com/golang-jwt/jwt"

// Payload is the identity carried by tokens the account service issues.
// The multiplayer server only reads it; it never grants identities itself.
type Payload struct {
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the opaque user identifier from the user directory.
	UserID string `json:"uid"`

	// Name is the display name at issue time. The directory stays authoritative.
	Name string `json:"name,omitempty"`
}
