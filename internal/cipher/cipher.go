package cipher

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"

	"github.com/rescale-labs/safebox/internal/errs"
)

// Cipher bundles the derived keys and the two primitives (name cipher,
// file-body cipher) a repo needs once unlocked. It is immutable once
// constructed and safe to share across goroutines.
type Cipher struct {
	Keys *Keys
	Name *NameCipher
	Body *FileCipher
}

// New derives keys from (password, salt) and builds the name and body
// ciphers.
func New(password, salt string) (*Cipher, error) {
	keys, err := DeriveKeys(password, salt)
	if err != nil {
		return nil, err
	}
	return FromKeys(keys)
}

// FromKeys builds a Cipher from already-derived keys.
func FromKeys(keys *Keys) (*Cipher, error) {
	nc, err := NewNameCipher(keys)
	if err != nil {
		return nil, err
	}
	return &Cipher{Keys: keys, Name: nc, Body: NewFileCipher(keys)}, nil
}

// EncryptBytes encrypts an in-memory payload using the file-body format,
// used for the password validator and tag payloads.
func (c *Cipher) EncryptBytes(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.Body.NewEncryptWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecryptBytes inverts EncryptBytes.
func (c *Cipher) DecryptBytes(encrypted []byte) ([]byte, error) {
	r := c.Body.NewDecryptReader(bytes.NewReader(encrypted))
	return io.ReadAll(r)
}

// EncryptValidator produces the "v2:" validator form: base64url-no-pad of
// the file-cipher-encrypted plaintext validator (a UUID string).
func (c *Cipher) EncryptValidator(plaintext string) (string, error) {
	ct, err := c.EncryptBytes([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return "v2:" + base64.RawURLEncoding.EncodeToString(ct), nil
}

// DecryptValidator inverts EncryptValidator. A v1 validator (no "v2:"
// prefix) is treated as a name-cipher-encrypted string per the legacy
// format; any format this cannot parse is reported as a crypto decryption
// error, which callers translate to InvalidPassword rather than an
// internal error (spec open question).
func (c *Cipher) DecryptValidator(stored string) (string, error) {
	if rest, ok := strings.CutPrefix(stored, "v2:"); ok {
		raw, err := base64.RawURLEncoding.DecodeString(rest)
		if err != nil {
			return "", errs.Wrap(errs.KindCrypto, "invalid_base32", err)
		}
		plain, err := c.DecryptBytes(raw)
		if err != nil {
			return "", err
		}
		return string(plain), nil
	}
	// v1: the stored value is itself name-cipher-encrypted.
	return c.Name.Decrypt(stored)
}
