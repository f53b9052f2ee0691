package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Issuer = "league-platform"
	TTL    = 24 * time.Hour
)

// segmentEncoding rejects non-canonical text, so every encoded signature maps
// to exactly one byte string.
var segmentEncoding = base64.RawURLEncoding.Strict()

type Options struct {
	// Algorithm selects the issuing strategy. Empty means HS256.
	Algorithm Algorithm
	Secret    string
	Keys      *KeyProvider
	Now       func() time.Time
}

// Codec signs and verifies compact tokens. It issues with one strategy and
// verifies with whichever strategy the token header names, so tokens signed
// before a switch of JWT_ALGORITHM stay valid until they expire.
type Codec struct {
	issuer    strategy
	verifiers map[Algorithm]strategy
	now       func() time.Time
}

type header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
}

func NewCodec(opts Options) (*Codec, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = HS256
	}
	if _, err := ParseAlgorithm(string(opts.Algorithm)); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	hmacS := hmacStrategy{secret: []byte(opts.Secret)}
	rsaS := rsaStrategy{keys: opts.Keys}

	c := &Codec{
		verifiers: map[Algorithm]strategy{},
		now:       opts.Now,
	}
	if len(hmacS.secret) > 0 {
		c.verifiers[HS256] = hmacS
	}
	if opts.Keys.Configured() {
		c.verifiers[RS256] = rsaS
	}

	switch opts.Algorithm {
	case RS256:
		c.issuer = rsaS
	default:
		c.issuer = hmacS
	}
	// The issuing algorithm always verifies; missing material surfaces as
	// ErrConfiguration instead of a rejected token.
	c.verifiers[c.issuer.algorithm()] = c.issuer

	return c, nil
}

// Algorithm is the algorithm new tokens are issued with.
func (c *Codec) Algorithm() Algorithm {
	return c.issuer.algorithm()
}

// EncodeIdentity issues a token for a bare identity plus optional extra claims.
func (c *Codec) EncodeIdentity(userID string, email string, name string, extra map[string]any) (string, error) {
	return c.Encode(Claims{UserID: userID, Email: email, Name: name, Extra: extra})
}

// Encode stamps iat/exp/nbf/iss on claims and signs them.
func (c *Codec) Encode(claims Claims) (string, error) {
	now := c.now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(TTL).Unix()
	claims.NotBefore = now.Unix()
	claims.Issuer = Issuer

	return c.sign(claims)
}

func (c *Codec) sign(claims Claims) (string, error) {
	h := header{Type: "JWT", Algorithm: string(c.issuer.algorithm()), KeyID: c.issuer.keyID()}

	headerJSON, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode token header: %w", err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode token payload: %w", err)
	}

	signingInput := segmentEncoding.EncodeToString(headerJSON) + "." +
		segmentEncoding.EncodeToString(payloadJSON)

	signature, err := c.issuer.sign(signingInput)
	if err != nil {
		return "", err
	}

	return signingInput + "." + segmentEncoding.EncodeToString(signature), nil
}

// Decode verifies a token and returns its payload. Every token-level failure
// is ErrInvalidToken. ErrConfiguration is returned when the issuing
// algorithm has no usable material, or when configured material for the
// header's algorithm cannot be loaded.
func (c *Codec) Decode(raw string) (Claims, error) {
	segments := strings.Split(strings.TrimSpace(raw), ".")
	if len(segments) != 3 {
		return Claims{}, ErrInvalidToken
	}

	headerJSON, err := segmentEncoding.DecodeString(segments[0])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil || h.Algorithm == "" {
		return Claims{}, ErrInvalidToken
	}

	verifier, ok := c.verifiers[Algorithm(h.Algorithm)]
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	signature, err := segmentEncoding.DecodeString(segments[2])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if err := verifier.verify(segments[0]+"."+segments[1], signature); err != nil {
		if errors.Is(err, ErrConfiguration) {
			return Claims{}, err
		}
		return Claims{}, ErrInvalidToken
	}

	payloadJSON, err := segmentEncoding.DecodeString(segments[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}

	now := c.now().Unix()
	if claims.ExpiresAt == 0 || claims.ExpiresAt < now {
		return Claims{}, ErrInvalidToken
	}
	if claims.NotBefore > now {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
