package logostore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T, baseURL string) *Local {
	t.Helper()
	s, err := NewLocal(filepath.Join(t.TempDir(), "logos"), baseURL)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return s
}

func TestNewLocal_RequiresDir(t *testing.T) {
	if _, err := NewLocal("  ", ""); err == nil {
		t.Fatal("NewLocal should reject empty dir")
	}
}

func TestLocal_SaveOpenDelete(t *testing.T) {
	s := newTestStore(t, "")
	ctx := context.Background()
	content := []byte("\x89PNG\r\n\x1a\nlogo")

	name, err := s.Save(ctx, ".PNG", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(name, ".png") || len(name) != 36+len(".png") {
		t.Errorf("name = %q, want <uuid>.png", name)
	}

	f, err := s.Open(name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(f)
	f.Close()
	if !bytes.Equal(got, content) {
		t.Error("stored content differs")
	}

	if err := s.Delete(ctx, name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, name)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file still present after Delete: %v", err)
	}
	if err := s.Delete(ctx, name); err != nil {
		t.Errorf("second Delete: %v, want nil", err)
	}
}

func TestLocal_SaveUniqueNames(t *testing.T) {
	s := newTestStore(t, "")
	a, err := s.Save(context.Background(), "gif", strings.NewReader("GIF89a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := s.Save(context.Background(), "gif", strings.NewReader("GIF89a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a == b {
		t.Error("two saves returned the same name")
	}
	if !strings.HasSuffix(a, ".gif") {
		t.Errorf("name = %q, want .gif suffix", a)
	}
}

func TestLocal_SaveCanceledRemovesFile(t *testing.T) {
	s := newTestStore(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Save(ctx, ".png", strings.NewReader("data")); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	entries, _ := os.ReadDir(s.Dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries, want 0", len(entries))
	}
}

func TestLocal_URL(t *testing.T) {
	testCases := []struct {
		base string
		want string
	}{
		{"", "/uploads/logos/x.png"},
		{"https://api.example.com", "https://api.example.com/uploads/logos/x.png"},
		{"https://api.example.com/", "https://api.example.com/uploads/logos/x.png"},
	}
	for _, tc := range testCases {
		s := newTestStore(t, tc.base)
		if got := s.URL("x.png"); got != tc.want {
			t.Errorf("URL with base %q = %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestLocal_RejectsTraversal(t *testing.T) {
	s := newTestStore(t, "")
	for _, name := range []string{"", ".", "..", "../secret", "a/b.png", `a\b.png`} {
		if _, err := s.Open(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Open(%q) err = %v, want ErrInvalidName", name, err)
		}
		if err := s.Delete(context.Background(), name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Delete(%q) err = %v, want ErrInvalidName", name, err)
		}
	}
}
