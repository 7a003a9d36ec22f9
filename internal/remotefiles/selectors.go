package remotefiles

import (
	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

// Get returns the cached file for id, if any.
func Get(s *appstate.State, id ids.RemoteFileId) (*model.RemoteFile, bool) {
	f, ok := s.RemoteFiles.Files[id]
	return f, ok
}

// Children returns the ordered children of dirId and whether that
// directory has been loaded at all (an unloaded directory is absent from
// the index entirely, not merely empty).
func Children(s *appstate.State, dirId ids.RemoteFileId) ([]*model.RemoteFile, bool) {
	if _, loaded := s.RemoteFiles.LoadedRoots[dirId]; !loaded {
		return nil, false
	}
	childIds := s.RemoteFiles.Children[dirId]
	out := make([]*model.RemoteFile, 0, len(childIds))
	for _, id := range childIds {
		if f, ok := s.RemoteFiles.Files[id]; ok {
			out = append(out, f)
		}
	}
	return out, true
}

// IsLoaded reports whether dirId's children have been installed by a
// listing.
func IsLoaded(s *appstate.State, dirId ids.RemoteFileId) bool {
	_, ok := s.RemoteFiles.LoadedRoots[dirId]
	return ok
}
