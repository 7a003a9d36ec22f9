// Package ids implements path and name utilities (component C): the
// disjoint remote/encrypted/decrypted path spaces, id construction, and
// path normalization/decomposition.
package ids

import (
	"strings"

	"github.com/rescale-labs/safebox/internal/errs"
)

// MountId identifies a mount root.
type MountId string

func (m MountId) String() string { return string(m) }

// RepoId identifies a repo (safe box).
type RepoId string

func (r RepoId) String() string { return string(r) }

// RemoteFileId is the stable identity of a remote file: mount + lowercased
// path. Two paths differing only in case share an id (§3, property 4).
type RemoteFileId string

func FileId(mount MountId, path RemotePath) RemoteFileId {
	return RemoteFileId(string(mount) + ":" + strings.ToLower(string(path)))
}

// The three disjoint path spaces. The type system forbids confusing them;
// never convert between them except through a Cipher (internal/cipher).
type (
	RemotePath    string
	EncryptedPath string
	DecryptedPath string
)

func (p RemotePath) Lower() string    { return strings.ToLower(string(p)) }
func (p EncryptedPath) Lower() string { return strings.ToLower(string(p)) }
func (p DecryptedPath) Lower() string { return strings.ToLower(string(p)) }

type (
	RemoteName    string
	EncryptedName string
	DecryptedName string
)

func (n RemoteName) Lower() string    { return strings.ToLower(string(n)) }
func (n EncryptedName) Lower() string { return strings.ToLower(string(n)) }
func (n DecryptedName) Lower() string { return strings.ToLower(string(n)) }

// NormalizePath collapses runs of "/", rejects "." and ".." components and
// any "\", adds a leading "/" if missing, and strips a trailing "/" (except
// for root itself).
func NormalizePath(p string) (string, error) {
	if p == "" {
		p = "/"
	}
	if strings.Contains(p, "\\") {
		return "", errs.New(errs.KindFile, "invalid_path", "path contains a backslash")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if part == "." || part == ".." {
			return "", errs.New(errs.KindFile, "invalid_path", "path contains a . or .. component")
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(out, "/"), nil
}

// PathsChain returns the chain of ancestor paths from root to p inclusive:
// PathsChain("/a/b") = ["/", "/a", "/a/b"].
func PathsChain(p string) []string {
	if p == "/" {
		return []string{"/"}
	}
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	chain := make([]string, 0, len(segments)+1)
	chain = append(chain, "/")
	cur := ""
	for _, seg := range segments {
		cur += "/" + seg
		chain = append(chain, cur)
	}
	return chain
}

// SplitParentName splits "/a/b" into ("/a", "b"). Root has no parent and
// ok is false.
func SplitParentName(p string) (parent, name string, ok bool) {
	if p == "/" {
		return "", "", false
	}
	idx := strings.LastIndex(p, "/")
	if idx == 0 {
		return "/", p[1:], true
	}
	return p[:idx], p[idx+1:], true
}

// Join appends name as a child of parent, honoring root's no-trailing-slash
// rule.
func Join(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}
