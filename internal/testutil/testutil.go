package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Entry is one file of a zip fixture.
type Entry struct {
	Name string
	Data []byte
}

// WriteZip writes entries, in order, to a zip archive at path.
// t is the active test; path is the archive to create.
func WriteZip(t *testing.T, path string, entries ...Entry) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
}

// ReadZip returns every entry of the zip archive at path keyed by name, plus
// the names in archive order.
// t is the active test; path is the archive to read.
func ReadZip(t *testing.T, path string) (map[string][]byte, []string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer func() { _ = zr.Close() }()
	out := make(map[string][]byte, len(zr.File))
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		_ = rc.Close()
		out[f.Name] = buf.Bytes()
		names = append(names, f.Name)
	}
	return out, names
}

// UserImage returns an entry for IMAGES/<partition>.img holding content.
func UserImage(partition string, content string) Entry {
	return Entry{Name: "IMAGES/" + partition + ".img", Data: []byte(content)}
}

// SparseImage returns an entry for IMAGES/<partition>.img starting with the
// Android sparse header magic.
func SparseImage(partition string) Entry {
	data := make([]byte, 28)
	binary.LittleEndian.PutUint32(data, 0xed26ff3a)
	return Entry{Name: "IMAGES/" + partition + ".img", Data: data}
}

// File returns an entry named name holding content.
func File(name string, content string) Entry {
	return Entry{Name: name, Data: []byte(content)}
}

// WithWorkingDir runs fn with dir as the current working directory and restores the previous directory.
// t is the active test; dir is the temporary working directory for fn.
func WithWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(cwd); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	}()
	fn()
}
