package cipher

import (
	"bytes"
	"testing"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := New("password", "salt")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestDeriveKeysSplitSizes(t *testing.T) {
	keys, err := DeriveKeys("password", "salt")
	if err != nil {
		t.Fatalf("DeriveKeys() failed: %v", err)
	}
	if len(keys.DataKey) != DataKeyLen {
		t.Errorf("DataKey length = %d, want %d", len(keys.DataKey), DataKeyLen)
	}
	if len(keys.NameKey) != NameKeyLen {
		t.Errorf("NameKey length = %d, want %d", len(keys.NameKey), NameKeyLen)
	}
	if len(keys.NameTweak) != NameTweakLen {
		t.Errorf("NameTweak length = %d, want %d", len(keys.NameTweak), NameTweakLen)
	}
}

func TestNameCipherRoundTrip(t *testing.T) {
	c := testCipher(t)
	names := []string{"file.txt", "My Folder", "日本語", "a b c"}
	for _, n := range names {
		enc, err := c.Name.Encrypt(n)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", n, err)
		}
		dec, err := c.Name.Decrypt(enc)
		if err != nil {
			t.Fatalf("Decrypt(%q) failed: %v", enc, err)
		}
		if dec != n {
			t.Errorf("round trip: got %q, want %q", dec, n)
		}
	}
}

func TestNameCipherDeterministic(t *testing.T) {
	c := testCipher(t)
	a, _ := c.Name.Encrypt("file.txt")
	b, _ := c.Name.Encrypt("file.txt")
	if a != b {
		t.Errorf("name cipher must be deterministic: %q != %q", a, b)
	}
}

func TestNameCipherRejectsInvalidNames(t *testing.T) {
	c := testCipher(t)
	for _, n := range []string{"", ".", "..", "a/b", "a\x01b"} {
		if _, err := c.Name.Encrypt(n); err == nil {
			t.Errorf("Encrypt(%q) should have failed", n)
		}
	}
}

func TestPathCipherShapePreserving(t *testing.T) {
	c := testCipher(t)
	for _, p := range []string{"/a", "/a/b", "/a/b/c"} {
		enc, err := c.EncryptPath(p)
		if err != nil {
			t.Fatalf("EncryptPath(%q) failed: %v", p, err)
		}
		if strSlashCount(enc) != strSlashCount(p) {
			t.Errorf("EncryptPath(%q) = %q changed slash count", p, enc)
		}
		dec, err := c.DecryptPath(enc)
		if err != nil {
			t.Fatalf("DecryptPath(%q) failed: %v", enc, err)
		}
		if dec != p {
			t.Errorf("path round trip: got %q, want %q", dec, p)
		}
	}
	if root, _ := c.EncryptPath("/"); root != "/" {
		t.Errorf("EncryptPath(/) = %q, want /", root)
	}
}

func strSlashCount(s string) int {
	n := 0
	for _, r := range s {
		if r == '/' {
			n++
		}
	}
	return n
}

func TestFileBodyRoundTripAndSize(t *testing.T) {
	c := testCipher(t)
	for _, size := range []int{0, 1, 4, BlockSize - 1, BlockSize, BlockSize + 1, 2*BlockSize + 100} {
		plain := bytes.Repeat([]byte{0xAB}, size)
		enc, err := c.EncryptBytes(plain)
		if err != nil {
			t.Fatalf("EncryptBytes(size=%d) failed: %v", size, err)
		}
		if int64(len(enc)) != EncryptedSize(int64(size)) {
			t.Errorf("size=%d: len(enc)=%d, EncryptedSize=%d", size, len(enc), EncryptedSize(int64(size)))
		}
		dec, err := c.DecryptBytes(enc)
		if err != nil {
			t.Fatalf("DecryptBytes(size=%d) failed: %v", size, err)
		}
		if !bytes.Equal(dec, plain) {
			t.Errorf("size=%d: round trip mismatch", size)
		}
	}
}

func TestEncryptedSizeS1Vector(t *testing.T) {
	// spec S1: encrypted_size(4) = 32 + 16 + 4 = 52 bytes.
	if got := EncryptedSize(4); got != 52 {
		t.Errorf("EncryptedSize(4) = %d, want 52", got)
	}
}

func TestDecryptBadMagic(t *testing.T) {
	c := testCipher(t)
	_, err := c.DecryptBytes([]byte("not-a-valid-header-at-all-xxxx"))
	if err == nil {
		t.Error("expected an error decrypting garbage input")
	}
}

func TestValidatorRoundTrip(t *testing.T) {
	c := testCipher(t)
	const validator = "123e4567-e89b-12d3-a456-426614174000"
	enc, err := c.EncryptValidator(validator)
	if err != nil {
		t.Fatalf("EncryptValidator failed: %v", err)
	}
	if enc[:3] != "v2:" {
		t.Errorf("expected v2: prefix, got %q", enc)
	}
	dec, err := c.DecryptValidator(enc)
	if err != nil {
		t.Fatalf("DecryptValidator failed: %v", err)
	}
	if dec != validator {
		t.Errorf("validator round trip: got %q, want %q", dec, validator)
	}
}
