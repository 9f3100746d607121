// Package paths holds the hot/backup directory pair and the naming
// conventions that tie a hot file to its backup copy.
package paths

import (
	"errors"
	"fmt"
	"hotbackup/internal/model"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	DefaultBackupSuffix = ".bak"
	DefaultDeletePrefix = "delete_"
)

var ErrEmptyPrefix = errors.New("delete prefix must not be empty")

// Config is built once at startup and never modified afterwards. Every
// metadata query goes to the filesystem again, nothing is cached.
type Config struct {
	fs           afero.Fs
	hotDir       string
	backupDir    string
	backupSuffix string
	deletePrefix string
}

type Option func(*Config)

func WithBackupSuffix(suffix string) Option {
	return func(c *Config) {
		c.backupSuffix = suffix
	}
}

func WithDeletePrefix(prefix string) Option {
	return func(c *Config) {
		c.deletePrefix = prefix
	}
}

func New(fs afero.Fs, hotDir, backupDir string, opts ...Option) (Config, error) {
	absHot, err := filepath.Abs(hotDir)
	if err != nil {
		return Config{}, fmt.Errorf("invalid hot dir path: %w", err)
	}

	absBackup, err := filepath.Abs(backupDir)
	if err != nil {
		return Config{}, fmt.Errorf("invalid backup dir path: %w", err)
	}

	c := Config{
		fs:           fs,
		hotDir:       absHot,
		backupDir:    absBackup,
		backupSuffix: DefaultBackupSuffix,
		deletePrefix: DefaultDeletePrefix,
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.deletePrefix == "" {
		return Config{}, ErrEmptyPrefix
	}

	return c, nil
}

func (c Config) Fs() afero.Fs {
	return c.fs
}

func (c Config) HotDir() string {
	return c.hotDir
}

func (c Config) BackupDir() string {
	return c.backupDir
}

func (c Config) BackupSuffix() string {
	return c.backupSuffix
}

func (c Config) DeletePrefix() string {
	return c.deletePrefix
}

// Stat returns a fresh snapshot of path.
func (c Config) Stat(path string) (model.Entry, error) {
	info, err := c.fs.Stat(path)
	if err != nil {
		return model.Entry{Path: path}, err
	}

	return model.EntryFromInfo(path, info), nil
}

func (c Config) FileExists(path string) bool {
	entry, err := c.Stat(path)
	return err == nil && entry.IsRegular()
}

func (c Config) DirExists(path string) bool {
	entry, err := c.Stat(path)
	return err == nil && entry.Kind == model.KindDir
}

func (c Config) HotDirExists() bool {
	return c.DirExists(c.hotDir)
}

func (c Config) BackupDirExists() bool {
	return c.DirExists(c.backupDir)
}

// SameDirectory reports whether hot and backup resolve to the same directory,
// either by path or, when both exist, by file identity.
func (c Config) SameDirectory() bool {
	if c.hotDir == c.backupDir {
		return true
	}

	hotInfo, err := c.fs.Stat(c.hotDir)
	if err != nil {
		return false
	}
	backupInfo, err := c.fs.Stat(c.backupDir)
	if err != nil {
		return false
	}

	return os.SameFile(hotInfo, backupInfo)
}

// BackupPath returns backupDir/<name><suffix>. The suffix is appended after
// any existing extension.
func (c Config) BackupPath(name string) string {
	return filepath.Join(c.backupDir, name+c.backupSuffix)
}

// IsDeleteMarker reports whether the stem of name (name without its last
// extension) starts with the delete prefix.
func (c Config) IsDeleteMarker(name string) bool {
	s := stem(name)
	if len(s) < len(c.deletePrefix) {
		return false
	}

	return s[:len(c.deletePrefix)] == c.deletePrefix
}

// MarkedName strips the delete prefix from a marker file name. It returns
// false when nothing is left after the prefix.
func (c Config) MarkedName(name string) (string, bool) {
	if !c.IsDeleteMarker(name) || len(name) <= len(c.deletePrefix) {
		return "", false
	}

	return name[len(c.deletePrefix):], true
}

// InBackupDir reports whether path is the backup directory or below it.
func (c Config) InBackupDir(path string) bool {
	rel, err := filepath.Rel(c.backupDir, path)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func stem(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}

	return strings.TrimSuffix(name, ext)
}
