package cipher

import (
	"unicode/utf8"

	"github.com/rescale-labs/safebox/internal/errs"
)

func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}

// ValidateName rejects decrypted names that are empty, ".", "..", or
// contain "/", "\\", DEL (0x7F), or any control character below 0x20.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return errs.New(errs.KindCrypto, "invalid_name", "name is empty, \".\" or \"..\"")
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r == 0x7F || r < 0x20 {
			return errs.New(errs.KindCrypto, "invalid_name", "name contains a forbidden character")
		}
	}
	return nil
}
