package transfer

import (
	"context"
	"io"
	"time"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/config"
	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/httpapi"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/logging"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/store"
)

// Sources resolves an upload/download's source or sink objects and the
// repo's cipher. Kept as an interface so the engine stays decoupled
// from the repos/repofiles packages (no import cycle).
type Sources interface {
	Cipher(repoId string) (*cipher.Cipher, error)
	Upload(t *model.Transfer) Uploadable
	Download(t *model.Transfer) Downloadable
	PutFile(ctx context.Context, repoId string, t *model.Transfer, encReader io.Reader, size int64, contentType string) (*httpapi.Response, error)
	GetFile(ctx context.Context, repoId string, t *model.Transfer) (*httpapi.Response, error)
}

// Engine is the scheduler (component H): on every Transfers mutation it
// re-scans for idle slots and dispatches the next eligible Waiting
// transfer.
type Engine struct {
	st      *appstate.Store
	sources Sources
	cfg     config.TransfersConfig
	log     *logging.Logger

	subID uint64
}

func NewEngine(st *appstate.Store, sources Sources, cfg config.TransfersConfig, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{st: st, sources: sources, cfg: cfg, log: log}
}

// Run installs the re-scan-on-mutation listener and blocks until ctx is
// canceled.
func (e *Engine) Run(ctx context.Context) {
	e.subID = e.st.OnMutation(store.MutationTransfers, func(me store.MutationEvent, s *appstate.State, mutState *store.MutationState, notify store.NotifyFunc) {
		go e.pump(ctx)
	})
	defer e.st.OffMutation(store.MutationTransfers, e.subID)

	e.pump(ctx)
	<-ctx.Done()
}

func (e *Engine) pump(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		t := TryDispatch(e.st, SchedulerLimits{UploadConcurrency: e.cfg.UploadConcurrency, DownloadConcurrency: e.cfg.DownloadConcurrency})
		if t == nil {
			return
		}
		go e.run(ctx, t)
	}
}

func (e *Engine) run(ctx context.Context, t *model.Transfer) {
	var err error
	switch t.Kind {
	case model.TransferUpload:
		err = e.runUpload(ctx, t)
	default:
		err = e.runDownload(ctx, t)
	}

	if err == nil {
		MarkDone(e.st, t.Id)
		return
	}
	if err == errs.ErrAborted {
		return // Abort() already removed/finalized a non-persistent transfer
	}
	MarkFailed(e.st, t.Id, err, e.cfg.AutoretryAttempts)
}

func (e *Engine) runUpload(ctx context.Context, t *model.Transfer) error {
	up := e.sources.Upload(t)
	c, err := e.sources.Cipher(string(t.Upload.RepoId))
	if err != nil {
		return err
	}

	reader, size, err := up.Reader(ctx)
	if err != nil {
		if up.IsRetriable() {
			return err
		}
		return errs.ErrUploadableLocal
	}
	defer reader.Close()

	MarkTransferring(e.st, t.Id)

	counting := &countingReadCloser{rc: reader, t: t, st: e.st, engine: e}
	fc := cipher.NewFileCipher(c.Keys)
	pr, pw := io.Pipe()
	go func() {
		ew, err := fc.NewEncryptWriter(pw)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(ew, counting); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(ew.Close())
	}()

	encSize := cipher.EncryptedSize(size)
	resp, err := e.sources.PutFile(ctx, string(t.Upload.RepoId), t, pr, encSize, "application/octet-stream")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (e *Engine) runDownload(ctx context.Context, t *model.Transfer) error {
	down := e.sources.Download(t)
	c, err := e.sources.Cipher(string(t.Download.RepoId))
	if err != nil {
		return err
	}

	resp, err := e.sources.GetFile(ctx, string(t.Download.RepoId), t)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	MarkTransferring(e.st, t.Id)

	fc := cipher.NewFileCipher(c.Keys)
	dr := fc.NewDecryptReader(resp.Body)

	_, name, _ := ids.SplitParentName(string(t.Download.EncryptedPath))
	w, _, err := down.Writer(ctx, name, 0, "application/octet-stream", name)
	if err != nil {
		return err
	}
	defer w.Close()

	counting := &countingWriteCloser{wc: w, t: t, st: e.st, engine: e}
	_, err = io.Copy(counting, dr)
	if err != nil {
		down.Done(err)
		return err
	}
	down.Done(nil)
	return nil
}

type countingReadCloser struct {
	rc     io.ReadCloser
	t      *model.Transfer
	st     *appstate.Store
	engine *Engine
	done   int64
}

func (c *countingReadCloser) Read(p []byte) (int, error) {
	if c.t.Aborted {
		return 0, errs.ErrAborted
	}
	n, err := c.rc.Read(p)
	c.done += int64(n)
	c.engine.tick(c.t, c.done)
	return n, err
}
func (c *countingReadCloser) Close() error { return c.rc.Close() }

type countingWriteCloser struct {
	wc     io.WriteCloser
	t      *model.Transfer
	st     *appstate.Store
	engine *Engine
	done   int64
}

func (c *countingWriteCloser) Write(p []byte) (int, error) {
	if c.t.Aborted {
		return 0, errs.ErrAborted
	}
	n, err := c.wc.Write(p)
	c.done += int64(n)
	c.engine.tick(c.t, c.done)
	return n, err
}
func (c *countingWriteCloser) Close() error { return c.wc.Close() }

// tick updates byte counters unconditionally and notifies Transfers
// only if progressThrottle has elapsed since the last notified tick.
func (e *Engine) tick(t *model.Transfer, transferredBytes int64) {
	e.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		delta := transferredBytes - t.TransferredBytes
		t.TransferredBytes = transferredBytes
		s.Transfers.DoneBytes += delta
		if ShouldEmitProgress(s, time.Now(), e.cfg.ProgressThrottle) {
			notify(store.EventTransfers)
		}
	})
}
