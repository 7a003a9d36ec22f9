package tags

import (
	"testing"

	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/model"
)

func testCipher(t *testing.T) *cipher.Cipher {
	t.Helper()
	c, err := cipher.New("password", "salt")
	if err != nil {
		t.Fatalf("cipher.New: %v", err)
	}
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := testCipher(t)
	p := model.TagPayload{
		EncryptedHash: []byte{0xde, 0xad, 0xbe, 0xef},
		PlaintextHash: []byte{0x01, 0x02},
		Unknown:       map[string]interface{}{"note": "hello"},
	}

	enc, err := Encode(c, p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(c, enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got.EncryptedHash) != string(p.EncryptedHash) {
		t.Fatalf("eh mismatch: got %x want %x", got.EncryptedHash, p.EncryptedHash)
	}
	if string(got.PlaintextHash) != string(p.PlaintextHash) {
		t.Fatalf("h mismatch: got %x want %x", got.PlaintextHash, p.PlaintextHash)
	}
	if got.Unknown["note"] != "hello" {
		t.Fatalf("expected unknown field preserved, got %v", got.Unknown)
	}
}

func TestDecodeRejectsBadBase64(t *testing.T) {
	c := testCipher(t)
	if _, err := Decode(c, "not valid base64!!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}

func TestCheckHashMatches(t *testing.T) {
	p := model.TagPayload{EncryptedHash: []byte{0xab, 0xcd}}
	if err := CheckHash(true, "abcd", p); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCheckHashMismatch(t *testing.T) {
	p := model.TagPayload{EncryptedHash: []byte{0xab, 0xcd}}
	if err := CheckHash(true, "ffff", p); err == nil {
		t.Fatalf("expected EncryptedHashMismatch")
	}
}

func TestCheckHashSkippedForDirectories(t *testing.T) {
	p := model.TagPayload{EncryptedHash: []byte{0xab, 0xcd}}
	if err := CheckHash(false, "ffff", p); err != nil {
		t.Fatalf("expected no check for directories, got %v", err)
	}
}

func TestCheckHashSkippedWithoutEncryptedHash(t *testing.T) {
	if err := CheckHash(true, "ffff", model.TagPayload{}); err != nil {
		t.Fatalf("expected no check without an eh field, got %v", err)
	}
}
