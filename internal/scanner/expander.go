package scanner

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/capsaicin/pathfuzz/internal/config"
)

const maxLineBytes = 1024 * 1024

var errLineTooLong = errors.New("wordlist line exceeds 1 MiB")

// WordlistSource opens a fresh reader over the wordlist. Every pass opens
// its own.
type WordlistSource interface {
	Open() (io.ReadCloser, error)
}

// FileWordlist reads the wordlist from disk on every Open.
type FileWordlist string

func (f FileWordlist) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// Expander lazily turns wordlist lines into candidate URLs for one base.
// Each entry yields the resolved URL followed by one URL per extension.
// Lines longer than 1 MiB are skipped and counted.
type Expander struct {
	rc      io.ReadCloser
	reader  *bufio.Reader
	base    string
	exts    []string
	pending []string
	skipped int
	err     error
}

func NewExpander(src WordlistSource, base string, exts []string) (*Expander, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}

	return &Expander{
		rc:     rc,
		reader: bufio.NewReaderSize(rc, 64*1024),
		base:   base,
		exts:   exts,
	}, nil
}

func (e *Expander) Next() (string, bool) {
	for len(e.pending) == 0 {
		line, err := e.readLine()
		if errors.Is(err, errLineTooLong) {
			e.skipped++
			continue
		}
		if err != nil && err != io.EOF {
			e.err = err
			return "", false
		}
		if err == io.EOF && line == "" {
			return "", false
		}

		entry := strings.TrimSpace(line)
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}

		candidate := config.Resolve(e.base, entry)
		e.pending = append(e.pending, candidate)
		for _, ext := range e.exts {
			e.pending = append(e.pending, candidate+"."+ext)
		}
	}

	candidate := e.pending[0]
	e.pending = e.pending[1:]
	return candidate, true
}

// readLine returns the next line including its newline. The final line may
// come back together with io.EOF. An oversized line is drained up to its
// newline and reported as errLineTooLong.
func (e *Expander) readLine() (string, error) {
	var line []byte
	tooLong := false

	for {
		chunk, err := e.reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		if err == bufio.ErrBufferFull {
			continue
		}
		if tooLong {
			if err != nil && err != io.EOF {
				return "", err
			}
			return "", errLineTooLong
		}
		return string(line), err
	}
}

// Skipped returns how many oversized lines were dropped so far.
func (e *Expander) Skipped() int {
	return e.skipped
}

// Err reports a read failure that ended the stream early.
func (e *Expander) Err() error {
	return e.err
}

func (e *Expander) Close() error {
	return e.rc.Close()
}
