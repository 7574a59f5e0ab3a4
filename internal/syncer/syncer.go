package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/settings"
)

// Drive is the remote store. Upload applies the size policy itself.
type Drive interface {
	Upload(ctx context.Context, c clips.Clip, threshold int64) (models.UploadResult, error)
	ListFiles(ctx context.Context, cursor string) ([]models.RemoteFile, string, error)
}

type CursorStore interface {
	LoadSyncCursor(ctx context.Context) (string, bool, error)
	PersistSyncCursor(ctx context.Context, token string) error
	ClearSyncCursor(ctx context.Context) error
}

type SettingsSource interface {
	Get() settings.AppSettings
}

// StatusSink receives the outcome of each sync attempt.
type StatusSink interface {
	SetSyncStatus(st clips.SyncStatus)
}

// Reporter is the observability sink. Implementations must not block.
type Reporter interface {
	ReportError(ctx context.Context, err error)
}

// LogReporter reports errors to a logger.
type LogReporter struct {
	Logger logging.Logger
}

func (r LogReporter) ReportError(ctx context.Context, err error) {
	r.Logger.Error(ctx, "sync failed", "error", err)
}

var ErrNoClips = errors.New("no clips to upload")

type Coordinator struct {
	drive    Drive
	cursors  CursorStore
	settings SettingsSource
	status   StatusSink
	reporter Reporter
	logger   logging.Logger

	mu     sync.Mutex
	cursor string
	// gen changes on Reset; cursor keys from an older generation are dropped.
	gen uint64

	wg sync.WaitGroup
}

func New(d Drive, cursors CursorStore, s SettingsSource, status StatusSink, r Reporter, logger logging.Logger) *Coordinator {
	return &Coordinator{
		drive:    d,
		cursors:  cursors,
		settings: s,
		status:   status,
		reporter: r,
		logger:   logger,
	}
}

// Restore loads the persisted cursor. A missing cursor starts listing from
// the beginning.
func (c *Coordinator) Restore(ctx context.Context) error {
	token, ok, err := c.cursors.LoadSyncCursor(ctx)
	if err != nil {
		return fmt.Errorf("load sync cursor: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = ""
	if ok {
		c.cursor = token
	}
	return nil
}

// Cursor returns the current listing cursor.
func (c *Coordinator) Cursor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Reset forgets the cursor, in memory and on disk. Uploads and listings
// still in flight can no longer move it.
func (c *Coordinator) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cursor = ""
	c.gen++
	if err := c.cursors.ClearSyncCursor(ctx); err != nil {
		c.logger.Error(ctx, "clear sync cursor", "error", err)
	}
}

func (c *Coordinator) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// OnClip starts a background upload of clip when drive sync is enabled.
// The upload outlives ctx's cancellation; Wait drains it.
func (c *Coordinator) OnClip(ctx context.Context, clip clips.Clip) {
	cfg := c.settings.Get().Drive
	if !cfg.Sync {
		return
	}

	c.status.SetSyncStatus(clips.SyncPending)
	ctx = context.WithoutCancel(ctx)
	gen := c.generation()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.upload(ctx, gen, []clips.Clip{clip}, cfg.Threshold)
	}()
}

// UploadClips uploads cs and returns once every upload finished or the
// first one failed. Invalid clips are reported and dropped; when none is
// left common.ErrInvalidClip is returned.
func (c *Coordinator) UploadClips(ctx context.Context, cs []clips.Clip) ([]models.UploadResult, error) {
	if len(cs) == 0 {
		return nil, ErrNoClips
	}
	c.status.SetSyncStatus(clips.SyncPending)

	var results []models.UploadResult
	err := c.uploadEach(ctx, c.generation(), cs, c.settings.Get().Drive.Threshold, func(r models.UploadResult) {
		results = append(results, r)
	})
	return results, err
}

func (c *Coordinator) upload(ctx context.Context, gen uint64, cs []clips.Clip, threshold int64) error {
	return c.uploadEach(ctx, gen, cs, threshold, func(models.UploadResult) {})
}

func (c *Coordinator) uploadEach(ctx context.Context, gen uint64, cs []clips.Clip, threshold int64, collect func(models.UploadResult)) error {
	valid := 0
	for _, clip := range cs {
		if err := clip.ValidateForUpload(); err != nil {
			c.reporter.ReportError(ctx, fmt.Errorf("upload clip %q: %w", clip.ID, err))
			continue
		}
		valid++

		res, err := c.drive.Upload(ctx, clip, threshold)
		if err != nil {
			err = fmt.Errorf("upload clip %s: %w", clip.ID, err)
			c.reporter.ReportError(ctx, err)
			c.status.SetSyncStatus(clips.SyncRejected)
			return err
		}
		collect(res)

		if res.Skipped {
			continue
		}
		c.advance(ctx, gen, res.Key)
	}

	if valid == 0 {
		c.status.SetSyncStatus(clips.SyncRejected)
		return common.ErrInvalidClip
	}
	c.status.SetSyncStatus(clips.SyncResolved)
	return nil
}

// ListFiles lists the remote files after the current cursor and advances
// the cursor past them.
func (c *Coordinator) ListFiles(ctx context.Context) ([]models.RemoteFile, error) {
	c.mu.Lock()
	cursor, gen := c.cursor, c.gen
	c.mu.Unlock()

	files, next, err := c.drive.ListFiles(ctx, cursor)
	if err != nil {
		err = fmt.Errorf("list files: %w", err)
		c.reporter.ReportError(ctx, err)
		return nil, err
	}

	c.advance(ctx, gen, next)
	return files, nil
}

// advance moves the cursor forward to key and persists it. Keys sort by
// capture time, so a smaller key never moves the cursor back. Keys obtained
// before the last Reset are ignored.
func (c *Coordinator) advance(ctx context.Context, gen uint64, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || key == "" || key <= c.cursor {
		return
	}
	c.cursor = key

	if err := c.cursors.PersistSyncCursor(ctx, key); err != nil {
		c.logger.Error(ctx, "persist sync cursor", "error", err)
	}
}

// Wait blocks until all background uploads have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
