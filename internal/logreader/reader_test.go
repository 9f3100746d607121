package logreader

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logPath = "/log.txt"

func newReader(t *testing.T, content string) *Reader {
	t.Helper()

	fs := afero.NewMemMapFs()
	if content != "" {
		require.NoError(t, afero.WriteFile(fs, logPath, []byte(content), 0644))
	}
	return New(fs, logPath, &sync.RWMutex{})
}

const sample = `2024-02-12T12:20:55+00:00 /hot/a.txt was backed up to: /backup/a.txt.bak
2024-02-12T12:20:56+00:00 /backup/a.txt.bak was updated
2024-02-12T12:21:00+00:00 /hot/delete_a.txt was deleted
`

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newReader(t, sample).Print(&out))
	assert.Equal(t, sample, out.String())
}

func TestMissingLogHasNoLines(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newReader(t, "").Print(&out))
	assert.Empty(t, out.String())
}

func TestSearch(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newReader(t, sample).Search(&out, "12:20:5"))
	assert.Equal(t, `2024-02-12T12:20:55+00:00 /hot/a.txt was backed up to: /backup/a.txt.bak
2024-02-12T12:20:56+00:00 /backup/a.txt.bak was updated
`, out.String())
}

func TestSearchRegex(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newReader(t, sample).SearchRegex(&out, `was (updated|deleted)$`))
	assert.Equal(t, `2024-02-12T12:20:56+00:00 /backup/a.txt.bak was updated
2024-02-12T12:21:00+00:00 /hot/delete_a.txt was deleted
`, out.String())
}

func TestSearchRegexInvalid(t *testing.T) {
	var out bytes.Buffer
	err := newReader(t, sample).SearchRegex(&out, `([a-z`)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Empty(t, out.String())
}

func TestCollectKeepsLastLines(t *testing.T) {
	lines, err := newReader(t, sample).Collect(All(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-02-12T12:20:56+00:00 /backup/a.txt.bak was updated",
		"2024-02-12T12:21:00+00:00 /hot/delete_a.txt was deleted",
	}, lines)

	lines, err = newReader(t, sample).Collect(Contains("backed up"), 0)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestEachReleasesLockBeforeCallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, logPath, []byte(sample), 0644))
	lock := &sync.RWMutex{}
	r := New(fs, logPath, lock)

	var calls int
	err := r.Each(All(), func(string) {
		calls++
		locked := make(chan struct{})
		go func() {
			lock.Lock()
			lock.Unlock()
			close(locked)
		}()
		select {
		case <-locked:
		case <-time.After(time.Second):
			t.Error("writer blocked while a line was being consumed")
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
