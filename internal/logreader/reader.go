// Package logreader scans the backup log for printing and searching.
package logreader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

var ErrInvalidPattern = errors.New("unsupported regex format")

const maxLineSize = 1 << 20

// Matcher selects log lines.
type Matcher func(line string) bool

func All() Matcher {
	return func(string) bool { return true }
}

func Contains(term string) Matcher {
	return func(line string) bool {
		return strings.Contains(line, term)
	}
}

func Regex(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return re.MatchString, nil
}

type Reader struct {
	fs   afero.Fs
	path string
	lock *sync.RWMutex
}

// New creates a reader for path. lock must be the one shared with the writer
// so a line is never read while it is being appended.
func New(fs afero.Fs, path string, lock *sync.RWMutex) *Reader {
	return &Reader{
		fs:   fs,
		path: path,
		lock: lock,
	}
}

// Each calls fn for every line matching m, oldest first. A missing log file
// has no lines. fn runs after the lock is released, so a slow consumer never
// holds up the writer.
func (r *Reader) Each(m Matcher, fn func(line string)) error {
	lines, err := r.matching(m, 0)
	if err != nil {
		return err
	}

	for _, line := range lines {
		fn(line)
	}

	return nil
}

// Collect returns the last limit lines matching m. limit <= 0 means all.
func (r *Reader) Collect(m Matcher, limit int) ([]string, error) {
	return r.matching(m, limit)
}

func (r *Reader) matching(m Matcher, limit int) ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	f, err := r.fs.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	defer func(f afero.File) {
		_ = f.Close()
	}(f)

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if !m(line) {
			continue
		}
		lines = append(lines, line)
		if limit > 0 && len(lines) > limit {
			lines = lines[1:]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	return lines, nil
}

func (r *Reader) Print(w io.Writer) error {
	return r.fprint(w, All())
}

func (r *Reader) Search(w io.Writer, term string) error {
	return r.fprint(w, Contains(term))
}

func (r *Reader) SearchRegex(w io.Writer, expr string) error {
	m, err := Regex(expr)
	if err != nil {
		return err
	}

	return r.fprint(w, m)
}

func (r *Reader) fprint(w io.Writer, m Matcher) error {
	var werr error
	err := r.Each(m, func(line string) {
		if werr == nil {
			_, werr = fmt.Fprintln(w, line)
		}
	})
	if err != nil {
		return err
	}

	return werr
}
