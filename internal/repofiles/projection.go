// Package repofiles implements the repo-file projection (component G): a
// lazily decrypted view layered on the remote-file cache for unlocked
// repos. Decryption failures are preserved as per-field errors so a
// single bad entry never poisons its directory listing.
package repofiles

import (
	"path"
	"strings"

	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

// Project translates one RemoteFile, encrypted under repoRoot, into its
// decrypted RepoFile view using c. Any cipher failure is preserved as a
// DecryptError on the relevant field rather than returned as an error.
func Project(c *cipher.Cipher, repoId ids.RepoId, repoRoot ids.RemotePath, f *model.RemoteFile) *model.RepoFile {
	encPath := encryptedPathRelativeToRoot(repoRoot, f.Path)

	rfile := &model.RepoFile{
		RepoId:        repoId,
		EncryptedPath: encPath,
		Type:          f.Type,
		Modified:      f.Modified,
		RemoteHash:    f.Hash,
	}

	decPath, err := c.DecryptPath(string(encPath))
	if err != nil {
		rfile.PathErr = &model.DecryptError{Err: err}
	} else {
		rfile.DecryptedPath = ids.DecryptedPath(decPath)
		_, name, ok := ids.SplitParentName(decPath)
		if ok {
			rfile.DecryptedName = ids.DecryptedName(name)
		}
	}

	if f.Type == model.FileTypeFile {
		size, err := cipher.DecryptedSize(f.Size)
		if err != nil {
			rfile.SizeErr = &model.DecryptError{Err: err}
		} else {
			rfile.DecryptedSize = size
		}
	}

	rfile.Category = CategorizeByName(string(rfile.DecryptedName))
	rfile.ContentType = ContentTypeByName(string(rfile.DecryptedName))

	return rfile
}

// encryptedPathRelativeToRoot strips the repo's encrypted remote root
// from a remote path, yielding the repo-local encrypted path. Callers
// outside this package only ever see paths in this space for repo files.
func encryptedPathRelativeToRoot(root ids.RemotePath, p ids.RemotePath) ids.EncryptedPath {
	rel := strings.TrimPrefix(string(p), string(root))
	if rel == "" {
		rel = "/"
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return ids.EncryptedPath(path.Clean(rel))
}
