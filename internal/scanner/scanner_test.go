package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func relPaths(t *testing.T, entries []Entry, ann, media string) []string {
	t.Helper()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		root := media
		prefix := "m:"
		if e.Announcement {
			root = ann
			prefix = "a:"
		}
		rel, err := filepath.Rel(root, e.Path)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, prefix+filepath.ToSlash(rel))
	}
	return out
}

func TestScan_Order(t *testing.T) {
	ann := t.TempDir()
	media := t.TempDir()

	writeFiles(t, ann, "b.png", "a.jpg")
	writeFiles(t, media,
		"z.jpg",
		"sub/two.mp4",
		"sub/one.jpg",
		"sub/deeper/x.txt",
		"another/c.gif",
		"a.png",
	)

	result := New(ann, media).Scan(context.Background())

	got := relPaths(t, result.Entries, ann, media)
	want := []string{
		"a:a.jpg",
		"a:b.png",
		"m:a.png",
		"m:z.jpg",
		"m:another/c.gif",
		"m:sub/one.jpg",
		"m:sub/two.mp4",
		"m:sub/deeper/x.txt",
	}

	if len(got) != len(want) {
		t.Fatalf("Scan() returned %d entries %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}

	if result.Announcements != 2 {
		t.Errorf("Announcements = %d, want 2", result.Announcements)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
}

func TestScan_NoExtensionFiltering(t *testing.T) {
	media := t.TempDir()
	writeFiles(t, media, "notes.txt", "README", "clip.mkv")

	result := New("", media).Scan(context.Background())
	if len(result.Entries) != 3 {
		t.Errorf("Scan() returned %d entries, want 3", len(result.Entries))
	}
}

func TestScan_Hidden(t *testing.T) {
	media := t.TempDir()
	writeFiles(t, media, ".DS_Store", ".cache/thumb.jpg", "visible.jpg")

	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{name: "default includes hidden", want: 3},
		{name: "WithoutHidden skips hidden", opts: []Option{WithoutHidden()}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New("", media, tt.opts...).Scan(context.Background())
			if len(result.Entries) != tt.want {
				t.Errorf("Scan() returned %d entries, want %d", len(result.Entries), tt.want)
			}
		})
	}
}

func TestScan_HiddenAnnouncementsCount(t *testing.T) {
	announcements := t.TempDir()
	media := t.TempDir()
	writeFiles(t, announcements, ".DS_Store", "a.jpg")
	writeFiles(t, media, "b.jpg")

	result := New(announcements, media).Scan(context.Background())

	if result.Announcements != 2 {
		t.Errorf("Announcements = %d, want 2", result.Announcements)
	}
	want := []Entry{
		{Path: filepath.Join(announcements, ".DS_Store"), Announcement: true},
		{Path: filepath.Join(announcements, "a.jpg"), Announcement: true},
		{Path: filepath.Join(media, "b.jpg")},
	}
	if len(result.Entries) != len(want) {
		t.Fatalf("Entries = %+v, want %+v", result.Entries, want)
	}
	for i := range want {
		if result.Entries[i] != want[i] {
			t.Errorf("Entries[%d] = %+v, want %+v", i, result.Entries[i], want[i])
		}
	}
}

func TestScan_MissingRoot(t *testing.T) {
	media := t.TempDir()
	writeFiles(t, media, "one.jpg")
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	result := New(missing, media).Scan(context.Background())

	if result.Announcements != 0 {
		t.Errorf("Announcements = %d, want 0", result.Announcements)
	}
	if len(result.Entries) != 1 || result.Entries[0].Announcement {
		t.Errorf("Entries = %+v, want one media entry", result.Entries)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", result.Errors)
	}
	if !errors.Is(result.Errors[0], ErrScan) {
		t.Errorf("error %v does not wrap ErrScan", result.Errors[0])
	}
	if !errors.Is(result.Errors[0], os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", result.Errors[0])
	}
}

func TestScan_BothRootsEmpty(t *testing.T) {
	result := New(t.TempDir(), t.TempDir()).Scan(context.Background())
	if len(result.Entries) != 0 || result.Announcements != 0 || len(result.Errors) != 0 {
		t.Errorf("Scan() = %+v, want empty result", result)
	}
}

func TestScan_Symlinks(t *testing.T) {
	media := t.TempDir()
	outside := t.TempDir()
	writeFiles(t, outside, "target.jpg", "dir/inner.jpg")

	if err := os.Symlink(filepath.Join(outside, "target.jpg"), filepath.Join(media, "link.jpg")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "dir"), filepath.Join(media, "linkdir")); err != nil {
		t.Fatalf("symlink dir: %v", err)
	}
	if err := os.Symlink(filepath.Join(outside, "gone.jpg"), filepath.Join(media, "dangling.jpg")); err != nil {
		t.Fatalf("symlink dangling: %v", err)
	}

	result := New("", media).Scan(context.Background())
	got := relPaths(t, result.Entries, "", media)
	if len(got) != 1 || got[0] != "m:link.jpg" {
		t.Errorf("Scan() = %v, want [m:link.jpg]", got)
	}
}

func TestScan_CancelledContext(t *testing.T) {
	media := t.TempDir()
	writeFiles(t, media, "a.jpg", "sub/b.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New("", media).Scan(ctx)
	if len(result.Entries) != 0 {
		t.Errorf("Scan() with cancelled context returned %d entries, want 0", len(result.Entries))
	}
}

func TestScan_RescanSeesChanges(t *testing.T) {
	media := t.TempDir()
	writeFiles(t, media, "a.jpg")

	s := New("", media)
	if n := len(s.Scan(context.Background()).Entries); n != 1 {
		t.Fatalf("first scan = %d entries, want 1", n)
	}

	writeFiles(t, media, "b.jpg")
	if err := os.Remove(filepath.Join(media, "a.jpg")); err != nil {
		t.Fatal(err)
	}

	entries := s.Scan(context.Background()).Entries
	if len(entries) != 1 || filepath.Base(entries[0].Path) != "b.jpg" {
		t.Errorf("second scan = %+v, want only b.jpg", entries)
	}
}
