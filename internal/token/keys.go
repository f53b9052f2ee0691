package token

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultKeyID = "league-platform-rs256-1"

// KeyProvider owns the RSA key material. It is built once at startup and
// handed to the codec; files are read on first use and the result (including
// a load failure) is kept for the process lifetime.
type KeyProvider struct {
	privatePath string
	publicPath  string
	keyID       string

	once       sync.Once
	private    *rsa.PrivateKey
	public     *rsa.PublicKey
	privateErr error
	publicErr  error
}

// NewKeyProvider reads PEM files lazily. An empty publicPath derives the
// public key from the private key.
func NewKeyProvider(privatePath string, publicPath string, keyID string) *KeyProvider {
	if strings.TrimSpace(keyID) == "" {
		keyID = DefaultKeyID
	}
	return &KeyProvider{
		privatePath: strings.TrimSpace(privatePath),
		publicPath:  strings.TrimSpace(publicPath),
		keyID:       keyID,
	}
}

// NewStaticKeyProvider wraps in-memory keys. Either key may be nil.
func NewStaticKeyProvider(private *rsa.PrivateKey, public *rsa.PublicKey, keyID string) *KeyProvider {
	kp := NewKeyProvider("", "", keyID)
	kp.once.Do(func() {
		kp.private = private
		kp.public = public
		if kp.public == nil && private != nil {
			kp.public = &private.PublicKey
		}
		if kp.private == nil {
			kp.privateErr = fmt.Errorf("%w: RSA private key is not configured", ErrConfiguration)
		}
		if kp.public == nil {
			kp.publicErr = fmt.Errorf("%w: RSA public key is not configured", ErrKeyUnavailable)
		}
	})
	return kp
}

// Configured reports whether any RSA material was supplied at all.
func (kp *KeyProvider) Configured() bool {
	if kp == nil {
		return false
	}
	if kp.privatePath != "" || kp.publicPath != "" {
		return true
	}
	kp.load()
	return kp.private != nil || kp.public != nil
}

func (kp *KeyProvider) KeyID() string {
	return kp.keyID
}

func (kp *KeyProvider) PrivateKey() (*rsa.PrivateKey, error) {
	kp.load()
	return kp.private, kp.privateErr
}

func (kp *KeyProvider) PublicKey() (*rsa.PublicKey, error) {
	kp.load()
	return kp.public, kp.publicErr
}

func (kp *KeyProvider) load() {
	kp.once.Do(func() {
		if kp.privatePath == "" {
			kp.privateErr = fmt.Errorf("%w: JWT_PRIVATE_KEY_PATH is not configured", ErrConfiguration)
		} else {
			kp.private, kp.privateErr = readPrivateKey(kp.privatePath)
		}

		switch {
		case kp.publicPath != "":
			kp.public, kp.publicErr = readPublicKey(kp.publicPath)
		case kp.private != nil:
			kp.public = &kp.private.PublicKey
		case kp.privatePath != "":
			kp.publicErr = kp.privateErr
		default:
			kp.publicErr = fmt.Errorf("%w: RSA public key is not configured", ErrKeyUnavailable)
		}
	})
}

func readPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read RSA private key %s: %v", ErrConfiguration, path, err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse RSA private key %s: %v", ErrConfiguration, path, err)
	}
	return key, nil
}

func readPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read RSA public key %s: %v", ErrConfiguration, path, err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse RSA public key %s: %v", ErrConfiguration, path, err)
	}
	return key, nil
}
