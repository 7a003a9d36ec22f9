// Package remotefiles implements the remote-file cache (component D): a
// mirror of server-side directory trees per mount, kept consistent under
// listings, direct mutations, and eventstream-driven updates.
//
// Grounded on the teacher's internal/transfer/queue.go pattern of a
// map-indexed collection mutated only through named operations that each
// emit one event, adapted here to the store's mutation-closure model.
package remotefiles

import (
	"sort"
	"strings"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/store"
)

func sortedChildren(rf appstate.RemoteFilesState, childIds []ids.RemoteFileId) []ids.RemoteFileId {
	sorted := append([]ids.RemoteFileId{}, childIds...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := rf.Files[sorted[i]], rf.Files[sorted[j]]
		if a == nil || b == nil {
			return false
		}
		return a.Less(b)
	})
	return sorted
}

// unloadSubtree recursively removes id and its descendants from Files,
// Children, and LoadedRoots.
func unloadSubtree(rf *appstate.RemoteFilesState, id ids.RemoteFileId) {
	if children, ok := rf.Children[id]; ok {
		for _, c := range children {
			unloadSubtree(rf, c)
		}
		delete(rf.Children, id)
	}
	delete(rf.Files, id)
	delete(rf.LoadedRoots, id)
}

// LoadFiles installs a freshly fetched directory listing: dirId's
// children are replaced wholesale, each listed file is inserted/updated,
// and any previously cached child that disappeared or changed type has
// its subtree recursively unloaded.
func LoadFiles(st *appstate.Store, mount ids.MountId, dirPath ids.RemotePath, listing []*model.RemoteFile) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		dirId := ids.FileId(mount, dirPath)
		rf := &s.RemoteFiles

		oldChildren := rf.Children[dirId]
		oldSet := make(map[ids.RemoteFileId]*model.RemoteFile, len(oldChildren))
		for _, id := range oldChildren {
			oldSet[id] = rf.Files[id]
		}

		newIds := make([]ids.RemoteFileId, 0, len(listing))
		newSet := make(map[ids.RemoteFileId]struct{}, len(listing))
		for _, f := range listing {
			id := f.Id()
			newIds = append(newIds, id)
			newSet[id] = struct{}{}
			rf.Files[id] = f
		}

		for oldId, oldFile := range oldSet {
			if _, stillPresent := newSet[oldId]; stillPresent {
				newFile := rf.Files[oldId]
				if oldFile == nil || oldFile.Type == newFile.Type {
					continue
				}
				unloadSubtree(rf, oldId)
				rf.Files[oldId] = newFile
				continue
			}
			unloadSubtree(rf, oldId)
			mutState.RemovedFiles = append(mutState.RemovedFiles, string(oldId))
		}

		rf.Children[dirId] = sortedChildren(*rf, newIds)
		rf.LoadedRoots[dirId] = struct{}{}

		notify(store.EventRemoteFiles)
		mutNotify(store.MutationRemoteFiles)
	})
}

// CreateFile inserts a new file (or directory) and appends it to its
// parent's children in sorted order.
func CreateFile(st *appstate.Store, f *model.RemoteFile) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		rf := &s.RemoteFiles
		id := f.Id()
		rf.Files[id] = f

		parentPath, _, ok := ids.SplitParentName(string(f.Path))
		if ok {
			parentId := ids.FileId(f.MountId, ids.RemotePath(parentPath))
			if _, loaded := rf.LoadedRoots[parentId]; loaded {
				children := rf.Children[parentId]
				found := false
				for _, c := range children {
					if c == id {
						found = true
						break
					}
				}
				if !found {
					children = append(children, id)
				}
				rf.Children[parentId] = sortedChildren(*rf, children)
			}
		}

		mutState.CreatedFiles = append(mutState.CreatedFiles, string(id))
		notify(store.EventRemoteFiles)
		mutNotify(store.MutationRemoteFiles)
	})
}

// RemoveFile recursively drops the subtree rooted at id.
func RemoveFile(st *appstate.Store, id ids.RemoteFileId) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		rf := &s.RemoteFiles
		f := rf.Files[id]
		unloadSubtree(rf, id)
		if f != nil {
			if parentPath, _, ok := ids.SplitParentName(string(f.Path)); ok {
				parentId := ids.FileId(f.MountId, ids.RemotePath(parentPath))
				rf.Children[parentId] = removeId(rf.Children[parentId], id)
			}
		}
		mutState.RemovedFiles = append(mutState.RemovedFiles, string(id))
		notify(store.EventRemoteFiles)
		mutNotify(store.MutationRemoteFiles)
	})
}

func removeId(list []ids.RemoteFileId, target ids.RemoteFileId) []ids.RemoteFileId {
	out := list[:0]
	for _, id := range list {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// MoveFile re-keys the subtree at oldId to (newMount, newPath) in one
// mutation: every descendant is retargeted to the new path prefix and
// kept in Files/Children/LoadedRoots with its cached metadata intact,
// rather than being unloaded. mutState.MovedFiles records (oldId, newId)
// so downstream selections can retarget.
func MoveFile(st *appstate.Store, oldId ids.RemoteFileId, newMount ids.MountId, newPath ids.RemotePath) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		rf := &s.RemoteFiles
		f := rf.Files[oldId]
		if f == nil {
			return
		}

		if parentPath, _, ok := ids.SplitParentName(string(f.Path)); ok {
			parentId := ids.FileId(f.MountId, ids.RemotePath(parentPath))
			rf.Children[parentId] = removeId(rf.Children[parentId], oldId)
		}

		idMap := make(map[ids.RemoteFileId]ids.RemoteFileId)
		retargetNode(rf, oldId, string(f.Path), newMount, newPath, idMap)
		newId := idMap[oldId]

		if parentPath, _, ok := ids.SplitParentName(string(newPath)); ok {
			parentId := ids.FileId(newMount, ids.RemotePath(parentPath))
			if _, loaded := rf.LoadedRoots[parentId]; loaded {
				rf.Children[parentId] = sortedChildren(*rf, append(rf.Children[parentId], newId))
			}
		}

		mutState.MovedFiles = append(mutState.MovedFiles, store.MovedFile{OldId: string(oldId), NewId: string(newId)})
		notify(store.EventRemoteFiles)
		notify(store.EventRepoFilesMove)
		mutNotify(store.MutationRemoteFiles)
	})
}

// retargetNode re-keys id (and recursively every descendant reachable
// through Children) from its old mount/path to newMount, rebasing each
// node's path onto topNewPath by replacing the oldPathPrefix it shares
// with the subtree root. Cached metadata, Children, and LoadedRoots
// membership carry over under the new id. idMap accumulates old->new id
// pairs for every retargeted node.
func retargetNode(rf *appstate.RemoteFilesState, id ids.RemoteFileId, oldPathPrefix string, newMount ids.MountId, topNewPath ids.RemotePath, idMap map[ids.RemoteFileId]ids.RemoteFileId) {
	f := rf.Files[id]
	if f == nil {
		return
	}

	suffix := strings.TrimPrefix(string(f.Path), oldPathPrefix)
	moved := *f
	moved.MountId = newMount
	moved.Path = ids.RemotePath(string(topNewPath) + suffix)
	newId := moved.Id()
	idMap[id] = newId

	oldChildren := rf.Children[id]
	_, wasLoaded := rf.LoadedRoots[id]

	delete(rf.Files, id)
	delete(rf.Children, id)
	delete(rf.LoadedRoots, id)

	rf.Files[newId] = &moved
	if wasLoaded {
		rf.LoadedRoots[newId] = struct{}{}
	}

	newChildren := make([]ids.RemoteFileId, 0, len(oldChildren))
	for _, childId := range oldChildren {
		retargetNode(rf, childId, oldPathPrefix, newMount, topNewPath, idMap)
		if nid, ok := idMap[childId]; ok {
			newChildren = append(newChildren, nid)
		}
	}
	if len(newChildren) > 0 {
		rf.Children[newId] = sortedChildren(*rf, newChildren)
	}
}

// TagsUpdated replaces a file's tags map.
func TagsUpdated(st *appstate.Store, id ids.RemoteFileId, tags map[string][]string) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		f := s.RemoteFiles.Files[id]
		if f == nil {
			return
		}
		f.Tags = tags
		mutState.TagsUpdatedFiles = append(mutState.TagsUpdatedFiles, string(id))
		notify(store.EventRemoteFiles)
		mutNotify(store.MutationRemoteFiles)
	})
}
