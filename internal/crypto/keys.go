package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// MasterKeySize is the length of the decoded master key in bytes.
const MasterKeySize = 32

// ErrInvalidKeyLength is returned when the provided key length is invalid.
var ErrInvalidKeyLength = errors.New("invalid key length")

// ReadMasterKey returns the master key from MASTER_KEY_HEX, falling back to the
// hex file at path.
func ReadMasterKey(path string) ([]byte, error) {
	h := os.Getenv("MASTER_KEY_HEX")
	if h == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("MASTER_KEY_HEX not set and %s not readable: %w", path, err)
		}
		h = string(data)
	}
	return DecodeMasterKey(h)
}

// DecodeMasterKey parses a 64 character hex key.
func DecodeMasterKey(h string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != MasterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes (hex %d chars): %w", MasterKeySize, MasterKeySize*2, ErrInvalidKeyLength)
	}
	return b, nil
}

// GenerateMasterKey returns a fresh random master key.
func GenerateMasterKey() ([]byte, error) {
	return generateRandomBytes(MasterKeySize)
}

// DeriveCookieKeys derives the session cookie HMAC key (64 bytes) and AES key
// (32 bytes) from the master key using HKDF-SHA256.
func DeriveCookieKeys(master []byte) (hashKey, blockKey []byte, err error) {
	if len(master) != MasterKeySize {
		return nil, nil, ErrInvalidKeyLength
	}
	hashKey, err = derive(master, "cookie-hash", 64)
	if err != nil {
		return nil, nil, err
	}
	blockKey, err = derive(master, "cookie-block", 32)
	if err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

func derive(secret []byte, info string, n int) ([]byte, error) {
	h := hkdf.New(sha256.New, secret, nil, []byte(info))
	out := make([]byte, n)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

func generateRandomBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
