package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestNewAESEncryptor(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid 32-byte key", testKey(t), false},
		{"empty key", "", true},
		{"not base64", "!!!not-base64!!!", true},
		{"wrong length", base64.StdEncoding.EncodeToString([]byte("short")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAESEncryptor(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAESEncryptor() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewAESEncryptor(testKey(t))
	if err != nil {
		t.Fatalf("NewAESEncryptor: %v", err)
	}
	plaintext := "oauth-access-token-value"
	ct, err := EncryptString(enc, plaintext)
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if ct == plaintext {
		t.Error("ciphertext equals plaintext")
	}
	got, err := DecryptString(enc, ct)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if got != plaintext {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}
}

func TestEncryptStringEmptyPassthrough(t *testing.T) {
	enc, _ := NewAESEncryptor(testKey(t))
	ct, err := EncryptString(enc, "")
	if err != nil || ct != "" {
		t.Errorf("EncryptString(\"\") = (%q, %v), want empty passthrough", ct, err)
	}
	pt, err := DecryptString(enc, "")
	if err != nil || pt != "" {
		t.Errorf("DecryptString(\"\") = (%q, %v), want empty passthrough", pt, err)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	enc, _ := NewAESEncryptor(testKey(t))
	ct, err := enc.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	ct[len(ct)-1] ^= 0xff
	if _, err := enc.Decrypt(ct); err == nil {
		t.Error("Decrypt accepted tampered ciphertext")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	enc1, _ := NewAESEncryptor(testKey(t))
	enc2, _ := NewAESEncryptor(testKey(t))
	ct, _ := enc1.Encrypt([]byte("secret"))
	if _, err := enc2.Decrypt(ct); err == nil {
		t.Error("Decrypt with wrong key succeeded")
	}
}

func TestDecryptTooShort(t *testing.T) {
	enc, _ := NewAESEncryptor(testKey(t))
	_, err := enc.Decrypt([]byte{1, 2, 3})
	if err == nil || !strings.Contains(err.Error(), "too short") {
		t.Errorf("Decrypt short input error = %v, want too-short error", err)
	}
}

func TestNoncesAreUnique(t *testing.T) {
	enc, _ := NewAESEncryptor(testKey(t))
	a, _ := enc.Encrypt([]byte("same input"))
	b, _ := enc.Encrypt([]byte("same input"))
	if string(a) == string(b) {
		t.Error("two encryptions of the same plaintext produced identical output")
	}
}
