// Package cipher implements key derivation and the name/path/file-body
// ciphers (component A): deterministic per-repo name encryption and a
// streaming authenticated file-body format compatible with the rclone
// "crypt" wire format.
package cipher

const (
	// ScryptLogN, ScryptR, ScryptP are the fixed scrypt cost parameters.
	// The wire format is fixed by compatibility with an existing ecosystem;
	// do not make these configurable.
	ScryptLogN = 14
	ScryptR    = 8
	ScryptP    = 1

	// DerivedKeyLen is the total scrypt output: 32-byte data key, 32-byte
	// name key, 16-byte name tweak.
	DerivedKeyLen = 32 + 32 + 16

	DataKeyLen    = 32
	NameKeyLen    = 32
	NameTweakLen  = 16
)

// DefaultSalt is used when a repo carries no explicit salt. It is a fixed,
// published vector, not a secret.
var DefaultSalt = []byte("\xa8\x0d\xf4\x3a\x8f\xbd\x03\x08\xa7\xca\xb8\x3e\x58\x1f\x86\xb1")

const (
	// FileMagic prefixes every encrypted file body.
	FileMagic = "RCLONE\x00\x00"

	// FileNonceSize is the header nonce length in bytes (192-bit secretbox nonce).
	FileNonceSize = 24

	// BlockSize is the fixed plaintext block size; the final block may be shorter.
	BlockSize = 64 * 1024

	// blockTagSize is the Poly1305 tag prepended to every ciphertext block.
	blockTagSize = 16

	// encryptedBlockSize is the fixed ciphertext size of a full block.
	encryptedBlockSize = blockTagSize + BlockSize

	// headerSize is the magic + nonce preceding the first block.
	headerSize = len(FileMagic) + FileNonceSize
)
