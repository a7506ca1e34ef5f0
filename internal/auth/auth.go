// Package auth provides Xena API authentication using ECDSA P-256 signatures.
package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Signer produces the Password field of a Logon from its RawData payload.
type Signer interface {
	Sign(payload string) (string, error)
}

// ECDSASigner signs payloads with a P-256 private key.
type ECDSASigner struct {
	key *ecdsa.PrivateKey
}

// NewSigner parses an API secret as issued by Xena: a hex-encoded SEC1 DER
// EC private key.
func NewSigner(hexSecret string) (*ECDSASigner, error) {
	hexSecret = strings.TrimSpace(hexSecret)
	if hexSecret == "" {
		return nil, fmt.Errorf("API secret is required")
	}

	der, err := hex.DecodeString(hexSecret)
	if err != nil {
		return nil, fmt.Errorf("decode API secret: %w", err)
	}

	key, err := x509.ParseECPrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse API secret: %w", err)
	}

	return newECDSASigner(key)
}

// LoadSignerPEM loads a signer from a PEM file holding an EC private key,
// either SEC1 ("EC PRIVATE KEY") or PKCS#8 ("PRIVATE KEY").
func LoadSignerPEM(path string) (*ECDSASigner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	// Try SEC1 first (what Xena issues)
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err == nil {
		return newECDSASigner(key)
	}

	// Fall back to PKCS#8
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	ecKey, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key is not an EC private key")
	}

	return newECDSASigner(ecKey)
}

func newECDSASigner(key *ecdsa.PrivateKey) (*ECDSASigner, error) {
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("curve %s is not supported, want P-256", key.Curve.Params().Name)
	}
	return &ECDSASigner{key: key}, nil
}

// Sign hashes payload with SHA-256 and returns the signature as upper-case
// hex of r and s, each left-padded to 32 bytes.
func (s *ECDSASigner) Sign(payload string) (string, error) {
	digest := sha256.Sum256([]byte(payload))

	r, ss, err := ecdsa.Sign(rand.Reader, s.key, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}

	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	ss.FillBytes(sig[32:])

	return strings.ToUpper(hex.EncodeToString(sig)), nil
}

// PublicKey returns the public half of the signing key.
func (s *ECDSASigner) PublicKey() *ecdsa.PublicKey {
	return &s.key.PublicKey
}

// LogonPayload returns the nonce and RawData for a logon sent at t. The
// nonce is nanoseconds since the epoch truncated to milliseconds.
func LogonPayload(t time.Time) (nonce int64, payload string) {
	nonce = t.UnixMilli() * 1_000_000
	return nonce, "AUTH" + strconv.FormatInt(nonce, 10)
}
