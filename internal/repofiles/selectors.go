package repofiles

import (
	"sort"
	"strings"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

// Get returns the cached projection for id, if any.
func Get(s *appstate.State, id ids.RemoteFileId) (*model.RepoFile, bool) {
	rfile, ok := s.RepoFiles.Files[id]
	return rfile, ok
}

// Children returns the cached projections of id's children, sorted by
// the same rule the remote cache uses (dirs first) but with ties broken
// on the decrypted name case-insensitively rather than the encrypted
// one. Entries without a cached projection yet are skipped rather than
// failing the whole listing.
func Children(s *appstate.State, id ids.RemoteFileId) []*model.RepoFile {
	childIds, ok := s.RemoteFiles.Children[id]
	if !ok {
		return nil
	}
	out := make([]*model.RepoFile, 0, len(childIds))
	for _, cid := range childIds {
		if rfile, ok := s.RepoFiles.Files[cid]; ok {
			out = append(out, rfile)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type == model.FileTypeDir
		}
		return strings.ToLower(string(a.DecryptedName)) < strings.ToLower(string(b.DecryptedName))
	})
	return out
}
