package syncer

import (
	"errors"
	"fmt"
	"hotbackup/internal/logger"
	"hotbackup/internal/model"
	"hotbackup/internal/paths"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type Engine struct {
	cfg      paths.Config
	fs       afero.Fs
	emitter  Emitter
	recorder Recorder
}

type Option func(*Engine)

func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

func New(cfg paths.Config, emitter Emitter, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		fs:      cfg.Fs(),
		emitter: emitter,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Handle performs exactly one of skip, delete, create-backup or
// update-backup for entry. Failures are reported in the result and logged;
// they never panic or abort the caller's pass.
func (e *Engine) Handle(entry model.Entry) model.SyncResult {
	result := e.handle(entry)

	switch {
	case result.Err != nil:
		logger.Log.Error("sync failed",
			zap.String("action", string(result.Action)),
			zap.String("path", entry.Path),
			zap.Error(result.Err))
	case result.Action == model.ActionSkip:
		return result
	default:
		logger.Log.Info("synced",
			zap.String("action", string(result.Action)),
			zap.String("src", result.SrcPath),
			zap.String("dst", result.DstPath))
	}

	if e.recorder != nil {
		e.recorder.Record(result)
	}

	return result
}

func (e *Engine) handle(entry model.Entry) model.SyncResult {
	if !entry.IsRegular() {
		logger.Log.Debug("not a file, skipping",
			zap.String("path", entry.Path))
		return model.SyncResult{Entry: entry, Action: model.ActionSkip, SrcPath: entry.Path}
	}

	if e.cfg.IsDeleteMarker(entry.Name()) {
		return e.handleDeleteMarker(entry)
	}

	return e.handleBackup(entry)
}

// handleDeleteMarker removes the marker from the hot folder and the backup of
// the file it names. Only the marker is logged.
func (e *Engine) handleDeleteMarker(entry model.Entry) model.SyncResult {
	result := model.SyncResult{
		Entry:   entry,
		Action:  model.ActionDelete,
		SrcPath: entry.Path,
	}

	removed, err := e.removeIfExists(entry.Path)
	if err != nil {
		result.Err = err
		return result
	}

	if removed {
		e.emitter.Emit(model.NewDeleteEvent(entry.Path))
	} else {
		logger.Log.Debug("delete marker already gone",
			zap.String("path", entry.Path))
	}

	marked, ok := e.cfg.MarkedName(entry.Name())
	if !ok {
		logger.Log.Debug("delete marker names no file, no backup to remove",
			zap.String("path", entry.Path))
		return result
	}

	result.DstPath = e.cfg.BackupPath(marked)
	if _, err := e.removeIfExists(result.DstPath); err != nil {
		result.Err = err
	}

	return result
}

func (e *Engine) handleBackup(src model.Entry) model.SyncResult {
	dstPath := e.cfg.BackupPath(src.Name())
	result := model.SyncResult{
		Entry:   src,
		Action:  model.ActionBackup,
		SrcPath: src.Path,
		DstPath: dstPath,
	}

	needsBackup, action, err := e.needsBackup(src, dstPath)
	result.Action = action
	if err != nil {
		result.Err = err
		return result
	}
	if !needsBackup {
		return result
	}

	if err := e.copyFile(src.Path, dstPath); err != nil {
		if errors.Is(err, ErrDestinationExists) {
			logger.Log.Debug("backup reappeared during copy, skipping",
				zap.String("dst", dstPath))
			result.Action = model.ActionSkip
			return result
		}

		result.Err = err
		return result
	}

	// Matching mtimes let the next pass recognise the copy as current
	// without reading its content.
	if err := e.fs.Chtimes(dstPath, src.ModTime, src.ModTime); err != nil {
		result.Err = fmt.Errorf("failed to update last write time of %s: %w", dstPath, err)
	}

	if action == model.ActionUpdate {
		e.emitter.Emit(model.NewUpdateEvent(dstPath))
	} else {
		e.emitter.Emit(model.NewBackupEvent(src.Path, dstPath))
	}

	return result
}

// needsBackup compares src against its backup. A modification time mismatch
// is checked before a size mismatch; either one alone makes the backup stale,
// and a stale backup is removed here.
func (e *Engine) needsBackup(src model.Entry, dstPath string) (bool, model.Action, error) {
	dst, err := e.cfg.Stat(dstPath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, model.ActionBackup, nil
	}
	if err != nil {
		return false, model.ActionBackup, fmt.Errorf("failed to stat backup %s: %w", dstPath, err)
	}

	switch {
	case !src.ModTime.Equal(dst.ModTime):
		logger.Log.Debug("modification time changed",
			zap.String("src", src.Path),
			zap.Time("src_mod", src.ModTime),
			zap.Time("dst_mod", dst.ModTime))
	case src.Size != dst.Size:
		logger.Log.Debug("size changed",
			zap.String("src", src.Path),
			zap.Int64("src_size", src.Size),
			zap.Int64("dst_size", dst.Size))
	default:
		return false, model.ActionSkip, nil
	}

	if _, err := e.removeIfExists(dstPath); err != nil {
		return false, model.ActionUpdate, err
	}

	return true, model.ActionUpdate, nil
}

// copyFile never replaces an existing destination: if one shows up between
// the decision and the copy, ErrDestinationExists is returned and nothing is
// written. A failed copy leaves no partial destination behind.
func (e *Engine) copyFile(src, dst string) error {
	in, err := e.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open src: %w", err)
	}

	defer func(in afero.File) {
		_ = in.Close()
	}(in)

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat src: %w", err)
	}

	out, err := e.fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrDestinationExists
		}
		return fmt.Errorf("failed to create dst: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = e.fs.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := out.Close(); err != nil {
		_ = e.fs.Remove(dst)
		return fmt.Errorf("failed to close dst: %w", err)
	}

	return nil
}

func (e *Engine) removeIfExists(path string) (bool, error) {
	if err := e.fs.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return true, nil
}
