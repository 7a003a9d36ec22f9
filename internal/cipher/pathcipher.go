package cipher

import "strings"

// EncryptPath splits p on "/" and encrypts each non-empty segment
// independently, rejoining with "/". Root "/" encrypts to "/".
func (c *Cipher) EncryptPath(p string) (string, error) {
	if p == "/" || p == "" {
		return "/", nil
	}
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	enc := make([]string, len(segments))
	for i, seg := range segments {
		e, err := c.Name.Encrypt(seg)
		if err != nil {
			return "", err
		}
		enc[i] = e
	}
	return "/" + strings.Join(enc, "/"), nil
}

// DecryptPath inverts EncryptPath.
func (c *Cipher) DecryptPath(p string) (string, error) {
	if p == "/" || p == "" {
		return "/", nil
	}
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	dec := make([]string, len(segments))
	for i, seg := range segments {
		d, err := c.Name.Decrypt(seg)
		if err != nil {
			return "", err
		}
		dec[i] = d
	}
	return "/" + strings.Join(dec, "/"), nil
}
