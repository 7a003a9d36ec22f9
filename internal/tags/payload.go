// Package tags implements the per-file tag payload (component J): a
// fixed-key ("vault") encrypted MsgPack blob carrying a content hash
// pair plus whatever unrecognized fields a newer client wrote.
//
// Grounded on internal/cipher's EncryptBytes/DecryptBytes (the same
// file-body cipher used for the password validator) for the payload
// cipher, and the pack dependency github.com/vmihailenco/msgpack/v5
// for the wire encoding fixed by SPEC_FULL.md.
package tags

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/model"
)

// VaultKey is the fixed remote tag key every Safe Box tag payload lives
// under.
const VaultKey = "vault"

// Decode decrypts and parses one vault tag value: base64url-no-pad of
// the file-cipher-encrypted MsgPack map {eh, h, ...unknown}.
func Decode(c *cipher.Cipher, raw string) (model.TagPayload, error) {
	enc, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return model.TagPayload{}, errs.Wrap(errs.KindTag, "invalid_base64", err)
	}
	plain, err := c.DecryptBytes(enc)
	if err != nil {
		return model.TagPayload{}, err
	}

	var fields map[string]interface{}
	if err := msgpack.Unmarshal(plain, &fields); err != nil {
		return model.TagPayload{}, errs.Wrap(errs.KindTag, "msgpack_decode", err)
	}

	out := model.TagPayload{Unknown: map[string]interface{}{}}
	for k, v := range fields {
		switch k {
		case "eh":
			out.EncryptedHash = toBytes(v)
		case "h":
			out.PlaintextHash = toBytes(v)
		default:
			out.Unknown[k] = v
		}
	}
	return out, nil
}

// Encode is the inverse of Decode.
func Encode(c *cipher.Cipher, p model.TagPayload) (string, error) {
	fields := make(map[string]interface{}, len(p.Unknown)+2)
	for k, v := range p.Unknown {
		fields[k] = v
	}
	if p.EncryptedHash != nil {
		fields["eh"] = p.EncryptedHash
	}
	if p.PlaintextHash != nil {
		fields["h"] = p.PlaintextHash
	}

	plain, err := msgpack.Marshal(fields)
	if err != nil {
		return "", errs.Wrap(errs.KindTag, "msgpack_encode", err)
	}
	enc, err := c.EncryptBytes(plain)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(enc), nil
}

// CheckHash implements the EncryptedHashMismatch rule: for a regular
// file, the tag's encrypted-hash field must match the remote file's
// reported content hash. A mismatch means the tags are stale, left
// over from a rewrite that happened before tags existed on the file.
func CheckHash(isRegularFile bool, remoteHashHex string, p model.TagPayload) error {
	if !isRegularFile || len(p.EncryptedHash) == 0 || remoteHashHex == "" {
		return nil
	}
	if hex.EncodeToString(p.EncryptedHash) != remoteHashHex {
		return errs.ErrEncryptedHashMismatch
	}
	return nil
}

func toBytes(v interface{}) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return nil
	}
}
