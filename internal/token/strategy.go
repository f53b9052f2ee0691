package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type Algorithm string

const (
	HS256 Algorithm = "HS256"
	RS256 Algorithm = "RS256"
)

func ParseAlgorithm(raw string) (Algorithm, error) {
	switch Algorithm(raw) {
	case HS256, RS256:
		return Algorithm(raw), nil
	default:
		return "", fmt.Errorf("%w: unsupported JWT algorithm %q", ErrConfiguration, raw)
	}
}

// strategy is the closed set of signing schemes: hmacStrategy or rsaStrategy.
type strategy interface {
	algorithm() Algorithm
	keyID() string
	sign(signingInput string) ([]byte, error)
	verify(signingInput string, signature []byte) error
}

type hmacStrategy struct {
	secret []byte
}

func (s hmacStrategy) algorithm() Algorithm { return HS256 }

func (s hmacStrategy) keyID() string { return "" }

func (s hmacStrategy) sign(signingInput string) ([]byte, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("%w: JWT_SECRET is not configured", ErrConfiguration)
	}
	return jwt.SigningMethodHS256.Sign(signingInput, s.secret)
}

// verify compares in constant time (hmac.Equal inside the signing method).
func (s hmacStrategy) verify(signingInput string, signature []byte) error {
	if len(s.secret) == 0 {
		return fmt.Errorf("%w: JWT_SECRET is not configured", ErrConfiguration)
	}
	if err := jwt.SigningMethodHS256.Verify(signingInput, signature, s.secret); err != nil {
		return ErrInvalidToken
	}
	return nil
}

type rsaStrategy struct {
	keys *KeyProvider
}

func (s rsaStrategy) algorithm() Algorithm { return RS256 }

func (s rsaStrategy) keyID() string {
	if s.keys == nil {
		return DefaultKeyID
	}
	return s.keys.KeyID()
}

func (s rsaStrategy) sign(signingInput string) ([]byte, error) {
	if s.keys == nil {
		return nil, fmt.Errorf("%w: RSA keys are not configured", ErrConfiguration)
	}
	key, err := s.keys.PrivateKey()
	if err != nil {
		return nil, err
	}
	return jwt.SigningMethodRS256.Sign(signingInput, key)
}

func (s rsaStrategy) verify(signingInput string, signature []byte) error {
	if s.keys == nil {
		return fmt.Errorf("%w: RSA keys are not configured", ErrConfiguration)
	}
	key, err := s.keys.PublicKey()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := jwt.SigningMethodRS256.Verify(signingInput, signature, key); err != nil {
		return ErrInvalidToken
	}
	return nil
}
