package tokenpkg

import (
	"fmt"
	"time"
)

// Token schemes supported by New.
const (
	SchemeJWT    = "jwt"
	SchemePaseto = "paseto"
)

// Maker is an interface for managing access tokens.
type Maker interface {
	// CreateToken creates a new token for a specific username and duration.
	CreateToken(username string, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// New returns the token maker for the configured scheme.
func New(scheme, symmetricKey string) (Maker, error) {
	switch scheme {
	case SchemeJWT:
		return NewJWTMaker(symmetricKey)
	case SchemePaseto:
		return NewPasetoMaker(symmetricKey)
	}

	return nil, fmt.Errorf("unsupported token scheme %q", scheme)
}
