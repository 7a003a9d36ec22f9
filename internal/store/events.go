package store

// Event is the closed set of outer, user-visible event topics a
// subscriber can observe (§4.B).
type Event int

const (
	EventLifecycle Event = iota
	EventNotifications
	EventDialogs
	EventAuth
	EventUser
	EventEventstream
	EventRemoteFiles
	EventRemoteFilesBrowsers
	EventRepos
	EventRepoFiles
	EventRepoFilesBrowsers
	EventRepoFilesDetails
	EventRepoFilesDetailsContentData
	EventRepoFilesMove
	EventTransfers
	EventDirPickers
	EventSpaceUsage
	EventRepoCreate
	EventRepoUnlock
	EventRepoRemove
	EventConfigBackup
)

// MutationEvent mirrors Event for the inner, in-lock listener layer.
type MutationEvent int

const (
	MutationLifecycle MutationEvent = iota
	MutationNotifications
	MutationDialogs
	MutationAuth
	MutationUser
	MutationEventstream
	MutationRemoteFiles
	MutationRepos
	MutationRepoFiles
	MutationRepoFilesMove
	MutationTransfers
	MutationDirPickers
	MutationSpaceUsage
	MutationRepoCreate
	MutationRepoUnlock
	MutationRepoRemove
)

// MovedFile retargets a selection/cursor after a cache move: the entry
// that used to live at OldId now lives at NewId.
type MovedFile struct {
	OldId string
	NewId string
}

// MutationState is the small per-mutation struct carrying side effects to
// fire once the write lock is released: outer subscribers consult it to
// decide whether they need to recompute, and to retarget references like
// selections across a move.
type MutationState struct {
	UnlockedRepos    []string
	LockedRepos      []string
	CreatedFiles     []string
	RemovedFiles     []string
	MovedFiles       []MovedFile
	TagsUpdatedFiles []string
	Extra            map[string]interface{}
}

func newMutationState() *MutationState {
	return &MutationState{Extra: make(map[string]interface{})}
}
