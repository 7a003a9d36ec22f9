package cipher

import (
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// Keys holds the three key material slices split from the scrypt output:
// 32-byte data key, 32-byte name key, 16-byte name tweak.
type Keys struct {
	DataKey   []byte
	NameKey   []byte
	NameTweak []byte
}

// DeriveKeys runs scrypt(password, salt) with the fixed cost parameters and
// splits the 80-byte output into data-key ‖ name-key ‖ name-tweak. An empty
// salt falls back to DefaultSalt.
func DeriveKeys(password, salt string) (*Keys, error) {
	saltBytes := []byte(salt)
	if len(saltBytes) == 0 {
		saltBytes = DefaultSalt
	}

	n := 1 << ScryptLogN
	out, err := scrypt.Key([]byte(password), saltBytes, n, ScryptR, ScryptP, DerivedKeyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation failed: %w", err)
	}

	return &Keys{
		DataKey:   out[:DataKeyLen],
		NameKey:   out[DataKeyLen : DataKeyLen+NameKeyLen],
		NameTweak: out[DataKeyLen+NameKeyLen : DataKeyLen+NameKeyLen+NameTweakLen],
	}, nil
}
