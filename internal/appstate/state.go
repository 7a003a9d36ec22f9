// Package appstate defines the single State tree held by the store
// (component B). Every component's mutations.go/selectors.go operates on
// this one struct through a *store.Store[appstate.State]; keeping the
// struct itself dependency-free of the component packages avoids import
// cycles (they import appstate, not the reverse).
package appstate

import (
	"time"

	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

// RemoteFilesState is the component D cache: three indices mirroring
// server directory trees.
type RemoteFilesState struct {
	Files       map[ids.RemoteFileId]*model.RemoteFile
	Children    map[ids.RemoteFileId][]ids.RemoteFileId // ordered
	LoadedRoots map[ids.RemoteFileId]struct{}
}

func newRemoteFilesState() RemoteFilesState {
	return RemoteFilesState{
		Files:       make(map[ids.RemoteFileId]*model.RemoteFile),
		Children:    make(map[ids.RemoteFileId][]ids.RemoteFileId),
		LoadedRoots: make(map[ids.RemoteFileId]struct{}),
	}
}

// RepoFilesState caches decrypted projections (component G) keyed by the
// same RemoteFileId as the underlying cache entry; entries are dropped on
// repo lock or removal and by repofiles.Invalidate/InvalidateRepo, not by
// remote-cache mutations.
type RepoFilesState struct {
	Files map[ids.RemoteFileId]*model.RepoFile
}

func newRepoFilesState() RepoFilesState {
	return RepoFilesState{Files: make(map[ids.RemoteFileId]*model.RepoFile)}
}

// EventstreamState tracks the WebSocket session and mount listeners.
type EventstreamConnState int

const (
	EventstreamInitial EventstreamConnState = iota
	EventstreamConnecting
	EventstreamAuthenticating
	EventstreamConnected
	EventstreamDisconnected
	EventstreamReconnecting
)

type EventstreamState struct {
	ConnState     EventstreamConnState
	NextRequestId int64
	Listeners     map[string]*model.MountListener // key: mountId+":"+path
}

func newEventstreamState() EventstreamState {
	return EventstreamState{Listeners: make(map[string]*model.MountListener)}
}

// TransfersState is the transfer engine's (component H) state: the
// transfer map plus incrementally maintained aggregate counters.
type TransfersState struct {
	Transfers map[string]*model.Transfer

	TransferringUploads   int
	TransferringDownloads int
	DoneCount             int
	FailedCount           int
	DoneBytes             int64
	LastProgressUpdate    time.Time
	NextInsertionOrder    int64
}

func newTransfersState() TransfersState {
	return TransfersState{Transfers: make(map[string]*model.Transfer)}
}

// TagsState tracks in-flight optimistic-concurrency tag updates
// (component J) so retries can be deduplicated.
type TagsState struct {
	PendingSetTags map[ids.RemoteFileId]int // retry attempt count
}

func newTagsState() TagsState {
	return TagsState{PendingSetTags: make(map[ids.RemoteFileId]int)}
}

// DialogState is pending-confirmation state for destructive operations
// (component K).
type DialogState struct {
	Id      string
	Kind    string // "overwrite" | "delete"
	Message string
}

// DirPickerState is a cached listing-navigation cursor for "choose a
// folder" flows (component K).
type DirPickerState struct {
	Id       string
	RepoId   ids.RepoId
	Path     ids.DecryptedPath
	Selected *ids.DecryptedPath
}

// SpaceUsage reports a repo's remote used/quota bytes (component K).
type SpaceUsage struct {
	Used  int64
	Quota *int64 // nil = unknown
}

// State is the single value held behind the store's read-write lock.
type State struct {
	Mounts map[ids.MountId]*model.Mount
	Repos  map[ids.RepoId]*model.Repo

	RemoteFiles RemoteFilesState
	RepoFiles   RepoFilesState
	Eventstream EventstreamState
	Transfers   TransfersState
	Tags        TagsState

	Dialogs     map[string]*DialogState
	DirPickers  map[string]*DirPickerState
	SpaceUsage  map[ids.RepoId]*SpaceUsage
	Notifications []string // recent notification log, for tests/inspection
}

// New builds an empty State with all maps initialized.
func New() State {
	return State{
		Mounts:        make(map[ids.MountId]*model.Mount),
		Repos:         make(map[ids.RepoId]*model.Repo),
		RemoteFiles:   newRemoteFilesState(),
		RepoFiles:     newRepoFilesState(),
		Eventstream:   newEventstreamState(),
		Transfers:     newTransfersState(),
		Tags:          newTagsState(),
		Dialogs:       make(map[string]*DialogState),
		DirPickers:    make(map[string]*DirPickerState),
		SpaceUsage:    make(map[ids.RepoId]*SpaceUsage),
	}
}
