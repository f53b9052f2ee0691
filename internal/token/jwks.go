package token

import (
	"encoding/base64"
	"fmt"
	"math/big"
)

type JWK struct {
	KeyType   string `json:"kty"`
	Use       string `json:"use"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid"`
	Modulus   string `json:"n"`
	Exponent  string `json:"e"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWKS publishes the RSA verification key. Any failure to produce a public key
// is reported as ErrKeyUnavailable; callers treat it as degraded mode.
func (kp *KeyProvider) JWKS() (JWKS, error) {
	if kp == nil {
		return JWKS{}, ErrKeyUnavailable
	}
	pub, err := kp.PublicKey()
	if err != nil || pub == nil {
		return JWKS{}, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	return JWKS{Keys: []JWK{{
		KeyType:   "RSA",
		Use:       "sig",
		Algorithm: string(RS256),
		KeyID:     kp.keyID,
		Modulus:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		Exponent:  base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}}, nil
}
