package autostart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderUnit(&buf, "/usr/local/bin/hotbackup", []string{"/data/hot dir", "/data/backup"}))

	unit := buf.String()
	assert.Contains(t, unit, "Description=hotbackup mirror of /data/hot dir")
	assert.Contains(t, unit, "[Service]")
	assert.Contains(t, unit, `ExecStart="/usr/local/bin/hotbackup" "/data/hot dir" "/data/backup" --no-menu`)
	assert.Contains(t, unit, "WantedBy=default.target")
}

func TestUnsupportedHasNothingToRemove(t *testing.T) {
	as := &UnsupportedAutoStarter{}
	assert.Error(t, as.Install("/usr/local/bin/hotbackup", nil))
	assert.ErrorIs(t, as.Uninstall(), ErrNotInstalled)

	installed, err := as.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestCommandLineEscapesQuotes(t *testing.T) {
	assert.Equal(t, `"a" "b\"c"`, commandLine("a", []string{`b"c`}))
}
