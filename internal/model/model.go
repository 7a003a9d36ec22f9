// Package model holds the shared entity types (§3) referenced across
// store, remote-file cache, repo projection, transfer engine, and
// eventstream packages. Keeping them in one leaf package avoids import
// cycles between those components.
package model

import (
	"time"

	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/ids"
)

type MountType string

const (
	MountTypeDevice MountType = "device"
	MountTypeExport MountType = "export"
	MountTypeImport MountType = "import"
)

type MountOrigin string

const (
	OriginHosted     MountOrigin = "hosted"
	OriginDesktop    MountOrigin = "desktop"
	OriginDropbox    MountOrigin = "dropbox"
	OriginGoogleDrive MountOrigin = "googledrive"
	OriginOneDrive   MountOrigin = "onedrive"
	OriginShare      MountOrigin = "share"
	OriginOther      MountOrigin = "other"
)

// Mount is a server-side directory root.
type Mount struct {
	Id        ids.MountId
	Name      string
	Type      MountType
	Origin    MountOrigin
	Online    bool
	IsPrimary bool
}

type FileType string

const (
	FileTypeDir  FileType = "dir"
	FileTypeFile FileType = "file"
)

// RemoteFile mirrors one server-side directory entry.
type RemoteFile struct {
	MountId  ids.MountId
	Path     ids.RemotePath
	Name     ids.RemoteName
	Type     FileType
	Size     int64
	Modified int64 // ms since epoch
	Hash     string // MD5 hex, optional
	Tags     map[string][]string
}

func (f *RemoteFile) Id() ids.RemoteFileId {
	return ids.FileId(f.MountId, f.Path)
}

// Less orders directory entries: directories first, then case-insensitive
// name.
func (f *RemoteFile) Less(other *RemoteFile) bool {
	if f.Type != other.Type {
		return f.Type == FileTypeDir
	}
	return f.Name.Lower() < other.Name.Lower()
}

type LockState int

const (
	Locked LockState = iota
	Unlocked
)

type AutoLockAfter struct {
	Enabled  bool
	Duration time.Duration
}

type AutoLockPolicy struct {
	After       AutoLockAfter
	OnAppHidden bool
}

// Repo is a safe box: an encrypted subtree anchored at RemotePath inside
// MountId.
type Repo struct {
	Id                         ids.RepoId
	Name                       string // decrypted display name
	MountId                    ids.MountId
	RemotePath                 ids.RemotePath
	Salt                       string
	PasswordValidator          string // plaintext UUID
	PasswordValidatorEncrypted string // stored "v2:..." or legacy v1 form
	AutoLock                   AutoLockPolicy

	State        LockState
	Cipher       *cipher.Cipher // non-nil only while State == Unlocked
	LastActivity time.Time
}

type FileCategory string

const (
	CategoryGeneric      FileCategory = "generic"
	CategoryFolder       FileCategory = "folder"
	CategoryArchive      FileCategory = "archive"
	CategoryAudio        FileCategory = "audio"
	CategoryCode         FileCategory = "code"
	CategoryDocument     FileCategory = "document"
	CategoryImage        FileCategory = "image"
	CategoryPdf          FileCategory = "pdf"
	CategoryPresentation FileCategory = "presentation"
	CategorySheet        FileCategory = "sheet"
	CategoryText         FileCategory = "text"
	CategoryVideo        FileCategory = "video"
)

// DecryptError carries a per-field decryption failure without poisoning
// the rest of the RepoFile projection.
type DecryptError struct {
	Err error
}

func (e *DecryptError) Error() string { return e.Err.Error() }

// RepoFile is the decrypted projection of a RemoteFile within an unlocked
// repo. Any of the decrypted fields may instead carry a *DecryptError.
type RepoFile struct {
	RepoId        ids.RepoId
	EncryptedPath ids.EncryptedPath

	DecryptedPath ids.DecryptedPath
	PathErr       error

	DecryptedName ids.DecryptedName
	NameErr       error

	Type          FileType
	DecryptedSize int64
	SizeErr       error

	ContentType string
	Modified    int64
	RemoteHash  string
	Category    FileCategory
	Tags        map[string]TagPayload
}

// TagPayload is the decoded per-file tag metadata (§4.J).
type TagPayload struct {
	EncryptedHash []byte
	PlaintextHash []byte
	Unknown       map[string]interface{}
}

type TransferKind int

const (
	TransferUpload TransferKind = iota
	TransferDownload
	TransferDownloadReader
)

type TransferState int

const (
	TransferWaiting TransferState = iota
	TransferProcessing
	TransferTransferring
	TransferDone
	TransferFailed
)

func (s TransferState) String() string {
	switch s {
	case TransferWaiting:
		return "waiting"
	case TransferProcessing:
		return "processing"
	case TransferTransferring:
		return "transferring"
	case TransferDone:
		return "done"
	case TransferFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type TransferSize struct {
	Exact    *int64
	Estimate *int64
}

// UploadSpec is the Upload-kind payload of a Transfer.
type UploadSpec struct {
	RepoId           ids.RepoId
	ParentPath       ids.EncryptedPath
	OriginalName     string
	CurrentName      string
	RelativeNamePrefix string
}

// DownloadSpec is the Download/DownloadReader-kind payload of a Transfer.
type DownloadSpec struct {
	RepoId        ids.RepoId
	EncryptedPath ids.EncryptedPath
}

// Transfer tracks one upload, download, or reader-only download.
type Transfer struct {
	Id              string
	Kind            TransferKind
	Upload          *UploadSpec
	Download        *DownloadSpec
	Size            TransferSize
	Started         time.Time
	IsPersistent    bool
	IsRetriable     bool
	IsOpenable      bool
	State           TransferState
	TransferredBytes int64
	Attempts        int
	InsertionOrder  int64
	LastError       error
	Aborted         bool
	SpeedBytesPerSec float64
}

func (t *Transfer) IsTerminal() bool {
	return t.State == TransferDone || (t.State == TransferFailed && !t.IsRetriable)
}

type MountListenerState int

const (
	ListenerUnregistered MountListenerState = iota
	ListenerRegistering
	ListenerRegistered
)

// MountListener is the eventstream subscription for one (mount, path).
type MountListener struct {
	Id              string
	MountId         ids.MountId
	Path            ids.RemotePath
	State           MountListenerState
	Canceling       bool
	ServerListenerId string
	RequestId       string
	SubscriberTags  map[string]int // multi-set
}

// Selection is a generic selection model for browser/details views.
type Selection[T comparable] struct {
	Selected     map[T]struct{}
	LastSelected *T
	RangeAnchor  *T
}

func NewSelection[T comparable]() *Selection[T] {
	return &Selection[T]{Selected: make(map[T]struct{})}
}
