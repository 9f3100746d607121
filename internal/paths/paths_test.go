package paths

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T, fs afero.Fs, opts ...Option) Config {
	t.Helper()

	cfg, err := New(fs, "/hot", "/backup", opts...)
	require.NoError(t, err)
	return cfg
}

func TestNewRejectsEmptyPrefix(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "/hot", "/backup", WithDeletePrefix(""))
	assert.ErrorIs(t, err, ErrEmptyPrefix)
}

func TestNewMakesPathsAbsolute(t *testing.T) {
	cfg, err := New(afero.NewMemMapFs(), "hot", "backup")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.HotDir()))
	assert.True(t, filepath.IsAbs(cfg.BackupDir()))
	assert.Equal(t, DefaultBackupSuffix, cfg.BackupSuffix())
	assert.Equal(t, DefaultDeletePrefix, cfg.DeletePrefix())
}

func TestIsDeleteMarker(t *testing.T) {
	cfg := newConfig(t, afero.NewMemMapFs())

	tests := []struct {
		name string
		want bool
	}{
		{"delete_a.txt", true},
		{"delete_a", true},
		{"delete_", true},
		{"delete.txt", false},
		{"a_delete_b.txt", false},
		{"DELETE_a.txt", false},
		{"a.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.IsDeleteMarker(tt.name))
		})
	}
}

func TestMarkedName(t *testing.T) {
	cfg := newConfig(t, afero.NewMemMapFs())

	name, ok := cfg.MarkedName("delete_report.pdf")
	require.True(t, ok)
	assert.Equal(t, "report.pdf", name)

	_, ok = cfg.MarkedName("delete_")
	assert.False(t, ok)

	_, ok = cfg.MarkedName("report.pdf")
	assert.False(t, ok)
}

func TestCustomNaming(t *testing.T) {
	cfg := newConfig(t, afero.NewMemMapFs(), WithBackupSuffix(".old"), WithDeletePrefix("rm-"))

	assert.Equal(t, filepath.Join("/backup", "a.txt.old"), cfg.BackupPath("a.txt"))
	assert.True(t, cfg.IsDeleteMarker("rm-a.txt"))
	assert.False(t, cfg.IsDeleteMarker("delete_a.txt"))
}

func TestBackupPathIsFlat(t *testing.T) {
	cfg := newConfig(t, afero.NewMemMapFs())

	assert.Equal(t, filepath.Join("/backup", "a.txt.bak"), cfg.BackupPath("a.txt"))
	assert.Equal(t, filepath.Join("/backup", "archive.tar.gz.bak"), cfg.BackupPath("archive.tar.gz"))
}

func TestExistenceChecks(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/hot", 0755))
	require.NoError(t, afero.WriteFile(fs, "/hot/a.txt", []byte("abc"), 0644))
	cfg := newConfig(t, fs)

	assert.True(t, cfg.HotDirExists())
	assert.False(t, cfg.BackupDirExists())
	assert.True(t, cfg.FileExists("/hot/a.txt"))
	assert.False(t, cfg.FileExists("/hot"))
	assert.False(t, cfg.DirExists("/hot/a.txt"))

	entry, err := cfg.Stat("/hot/a.txt")
	require.NoError(t, err)
	assert.True(t, entry.IsRegular())
	assert.Equal(t, int64(3), entry.Size)
	assert.Equal(t, "a.txt", entry.Name())
}

func TestSameDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	same, err := New(fs, "/data/hot", "/data/../data/hot")
	require.NoError(t, err)
	assert.True(t, same.SameDirectory())

	differ := newConfig(t, fs)
	assert.False(t, differ.SameDirectory())
}

func TestSameDirectoryThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	hot := filepath.Join(dir, "hot")
	link := filepath.Join(dir, "link")

	fs := afero.NewOsFs()
	require.NoError(t, fs.MkdirAll(hot, 0755))
	linker, ok := fs.(afero.Linker)
	require.True(t, ok)
	require.NoError(t, linker.SymlinkIfPossible(hot, link))

	cfg, err := New(fs, hot, link)
	require.NoError(t, err)
	assert.True(t, cfg.SameDirectory())
}

func TestInBackupDir(t *testing.T) {
	cfg, err := New(afero.NewMemMapFs(), "/hot", "/hot/backup")
	require.NoError(t, err)

	assert.True(t, cfg.InBackupDir("/hot/backup"))
	assert.True(t, cfg.InBackupDir("/hot/backup/a.txt.bak"))
	assert.False(t, cfg.InBackupDir("/hot/backups"))
	assert.False(t, cfg.InBackupDir("/hot/a.txt"))
}
