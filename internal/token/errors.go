package token

import "errors"

var (
	// ErrInvalidToken is the single outcome for every malformed, tampered,
	// expired or not-yet-valid token. Callers get no detail on which check failed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfiguration means the deployment lacks the key material needed for
	// the requested operation. It must surface as a server error.
	ErrConfiguration = errors.New("token configuration error")

	// ErrKeyUnavailable means no RSA public key can be published.
	ErrKeyUnavailable = errors.New("public key unavailable")
)
