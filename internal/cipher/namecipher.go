package cipher

import (
	"crypto/aes"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/rfjakob/eme"

	"github.com/rescale-labs/safebox/internal/errs"
)

// base32HexNoPad is the "hex" base32 alphabet with padding stripped,
// matching the wire format's lowercase-output convention.
var base32HexNoPad = base32.HexEncoding.WithPadding(base32.NoPadding)

// NameCipher encrypts/decrypts individual path segments deterministically:
// the same plaintext name in the same repo always yields the same
// ciphertext, which stable ids and directory listing depend on.
type NameCipher struct {
	eme   *eme.EMECipher
	tweak []byte
}

func newEMECipher(keys *Keys) (*eme.EMECipher, error) {
	block, err := aes.NewCipher(keys.NameKey)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher for name key: %w", err)
	}
	return eme.New(block), nil
}

// NewNameCipher builds a NameCipher from derived keys.
func NewNameCipher(keys *Keys) (*NameCipher, error) {
	e, err := newEMECipher(keys)
	if err != nil {
		return nil, err
	}
	return &NameCipher{eme: e, tweak: keys.NameTweak}, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%blockSize != 0 {
		return nil, errs.New(errs.KindCrypto, "invalid_padding", "padded data is not block-aligned")
	}
	padding := int(data[n-1])
	if padding == 0 || padding > blockSize || padding > n {
		return nil, errs.New(errs.KindCrypto, "invalid_padding", "invalid PKCS7 padding length")
	}
	for i := 0; i < padding; i++ {
		if data[n-1-i] != byte(padding) {
			return nil, errs.New(errs.KindCrypto, "invalid_padding", "invalid PKCS7 padding byte")
		}
	}
	return data[:n-padding], nil
}

// Encrypt encrypts a single decrypted name to its deterministic,
// base32-hex-lowercase ciphertext form.
func (c *NameCipher) Encrypt(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	padded := pkcs7Pad([]byte(name), aes.BlockSize)
	ct := c.eme.Encrypt(c.tweak, padded)
	return strings.ToLower(base32HexNoPad.EncodeToString(ct)), nil
}

// Decrypt inverts Encrypt.
func (c *NameCipher) Decrypt(encrypted string) (string, error) {
	ct, err := base32HexNoPad.DecodeString(strings.ToUpper(encrypted))
	if err != nil {
		return "", errs.Wrap(errs.KindCrypto, "invalid_base32", err)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errs.New(errs.KindCrypto, "invalid_base32", "decoded ciphertext is not block-aligned")
	}
	padded := c.eme.Decrypt(c.tweak, ct)
	plain, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !isValidUTF8(plain) {
		return "", errs.New(errs.KindCrypto, "invalid_utf8", "decrypted name is not valid UTF-8")
	}
	name := string(plain)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
