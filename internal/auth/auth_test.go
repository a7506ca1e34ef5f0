package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func generateKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	return key
}

func verify(t *testing.T, pub *ecdsa.PublicKey, payload, sig string) bool {
	t.Helper()
	raw, err := hex.DecodeString(sig)
	if err != nil {
		t.Fatalf("signature is not hex: %v", err)
	}
	if len(raw) != 64 {
		t.Fatalf("signature length = %d, want 64", len(raw))
	}
	digest := sha256.Sum256([]byte(payload))
	r := new(big.Int).SetBytes(raw[:32])
	s := new(big.Int).SetBytes(raw[32:])
	return ecdsa.Verify(pub, digest[:], r, s)
}

func TestNewSigner_Sign(t *testing.T) {
	key := generateKey(t)
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	signer, err := NewSigner(hex.EncodeToString(der))
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}

	payload := "AUTH1700000000000000000"
	sig, err := signer.Sign(payload)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if sig != strings.ToUpper(sig) {
		t.Errorf("signature is not upper-case hex: %q", sig)
	}
	if !verify(t, &key.PublicKey, payload, sig) {
		t.Error("signature does not verify")
	}
	if verify(t, &key.PublicKey, payload+"x", sig) {
		t.Error("signature verifies for a different payload")
	}
}

func TestNewSigner_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"not hex", "zz"},
		{"not a key", "3003020101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSigner(tt.secret); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewSigner_WrongCurve(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	der, _ := x509.MarshalECPrivateKey(key)

	if _, err := NewSigner(hex.EncodeToString(der)); err == nil {
		t.Error("expected error for P-384 key")
	}
}

func TestLoadSignerPEM_SEC1(t *testing.T) {
	key := generateKey(t)
	der, _ := x509.MarshalECPrivateKey(key)

	tmpFile := filepath.Join(t.TempDir(), "test-key.pem")
	if err := os.WriteFile(tmpFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	signer, err := LoadSignerPEM(tmpFile)
	if err != nil {
		t.Fatalf("LoadSignerPEM failed: %v", err)
	}
	if !signer.PublicKey().Equal(&key.PublicKey) {
		t.Error("loaded key does not match original")
	}
}

func TestLoadSignerPEM_PKCS8(t *testing.T) {
	key := generateKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal PKCS#8: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test-key.pem")
	if err := os.WriteFile(tmpFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	signer, err := LoadSignerPEM(tmpFile)
	if err != nil {
		t.Fatalf("LoadSignerPEM failed: %v", err)
	}
	if !signer.PublicKey().Equal(&key.PublicKey) {
		t.Error("loaded key does not match original")
	}
}

func TestLoadSignerPEM_FileNotFound(t *testing.T) {
	if _, err := LoadSignerPEM("/nonexistent/path/to/key.pem"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadSignerPEM_InvalidPEM(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "invalid.pem")
	if err := os.WriteFile(tmpFile, []byte("not a pem file"), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	if _, err := LoadSignerPEM(tmpFile); err == nil {
		t.Error("expected error for invalid PEM")
	}
}

func TestLogonPayload(t *testing.T) {
	ts := time.UnixMilli(1700000000123).Add(456 * time.Microsecond)

	nonce, payload := LogonPayload(ts)

	if nonce != 1700000000123000000 {
		t.Errorf("nonce = %d, want %d", nonce, int64(1700000000123000000))
	}
	if payload != "AUTH1700000000123000000" {
		t.Errorf("payload = %q, want %q", payload, "AUTH1700000000123000000")
	}
}
