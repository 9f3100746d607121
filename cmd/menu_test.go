package cmd

import (
	"bytes"
	"hotbackup/internal/logreader"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `2024-01-02T03:04:05+00:00 /hot/a.txt was backed up to: /backup/a.txt.bak
2024-01-02T03:04:06+00:00 /backup/a.txt.bak was updated
2024-01-02T03:04:07+00:00 /hot/delete_a.txt was deleted
`

func newTestReader(t *testing.T) *logreader.Reader {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/log.txt", []byte(sampleLog), 0644))
	return logreader.New(fs, "/log.txt", &sync.RWMutex{})
}

func TestMenuPrintThenExit(t *testing.T) {
	var out bytes.Buffer
	err := runMenu(strings.NewReader("p\ne\n"), &out, newTestReader(t))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Log file contents:")
	assert.Contains(t, out.String(), "/hot/a.txt was backed up to: /backup/a.txt.bak")
	assert.Contains(t, out.String(), "/hot/delete_a.txt was deleted")
}

func TestMenuSimpleSearch(t *testing.T) {
	var out bytes.Buffer
	err := runMenu(strings.NewReader("s\nwas updated\ne\n"), &out, newTestReader(t))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "/backup/a.txt.bak was updated")
	assert.NotContains(t, out.String(), "was deleted")
}

func TestMenuRegexSearch(t *testing.T) {
	var out bytes.Buffer
	err := runMenu(strings.NewReader("r\n03:04:0[57]\ne\n"), &out, newTestReader(t))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "was backed up to:")
	assert.Contains(t, out.String(), "was deleted")
	assert.NotContains(t, out.String(), "was updated")
}

func TestMenuInvalidRegex(t *testing.T) {
	var out bytes.Buffer
	err := runMenu(strings.NewReader("r\n(unclosed\ne\n"), &out, newTestReader(t))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Unsupported regex format")
}

func TestMenuInvalidOption(t *testing.T) {
	var out bytes.Buffer
	err := runMenu(strings.NewReader("x\ne\n"), &out, newTestReader(t))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Invalid option")
}

func TestMenuClosedInput(t *testing.T) {
	var out bytes.Buffer
	err := runMenu(strings.NewReader("p\n"), &out, newTestReader(t))
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	printUsage(&out)
	assert.Contains(t, out.String(), "Please enter paths for hot and backup folders.")
}

func TestEnvFailureExitCode(t *testing.T) {
	err := envFailure(assert.AnError)

	assert.ErrorIs(t, err, assert.AnError)
	exitErr, ok := err.(*exitError)
	require.True(t, ok)
	assert.Equal(t, -1, exitErr.code)
}
