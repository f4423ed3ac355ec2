// Package logostore keeps uploaded company logos on local disk.
package logostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PathPrefix is the URL path logos are served under.
const PathPrefix = "/uploads/logos/"

// ErrInvalidName is returned for names that are not a bare file name.
var ErrInvalidName = errors.New("logostore: invalid file name")

// Local stores logos as <uuid><ext> files in Dir.
type Local struct {
	Dir     string
	BaseURL string
}

// NewLocal creates dir if needed and returns a store rooted there. baseURL is prefixed to
// returned URLs; empty yields host-relative URLs.
func NewLocal(dir, baseURL string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("logostore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logostore: create dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes r to a new file with extension ext and returns the file name.
// A partially written file is removed on error.
func (s *Local) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.New().String() + strings.ToLower(ext)
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("logostore: create: %w", err)
	}
	_, copyErr := io.Copy(f, ctxReader{ctx: ctx, r: r})
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("logostore: write: %w", err)
	}
	return name, nil
}

// Delete removes the named file. A missing file is not an error.
func (s *Local) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("logostore: delete: %w", err)
	}
	return nil
}

// URL returns the public URL of the named file.
func (s *Local) URL(name string) string {
	return s.BaseURL + PathPrefix + name
}

// Open returns the named file for reading.
func (s *Local) Open(name string) (*os.File, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	return os.Open(filepath.Join(s.Dir, name))
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
