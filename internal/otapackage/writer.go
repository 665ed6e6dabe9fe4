// Package otapackage assembles the OTA package a build produces: files staged
// by the install hooks, the install script, and the operation manifest.
package otapackage

import (
	"archive/zip"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/renameio"

	"github.com/conn-castle/ota-layer/internal/messages"
)

// entryTime is stamped on every entry so identical inputs give identical packages.
var entryTime = time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC)

type entry struct {
	name string
	data []byte
}

// Writer stages entries in memory and writes them out in staging order on Commit.
type Writer struct {
	path    string
	entries []entry
	index   map[string]int
}

// NewWriter returns a writer that will produce the package at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path, index: make(map[string]int)}
}

// Path returns the package path.
func (w *Writer) Path() string {
	return w.path
}

// WriteEntry stages data under name. Staging the same name twice is an error.
func (w *Writer) WriteEntry(name string, data []byte) error {
	if name == "" {
		return errors.New(messages.OutputEntryNameRequired)
	}
	if _, ok := w.index[name]; ok {
		return fmt.Errorf(messages.OutputEntryDuplicateFmt, name)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	w.index[name] = len(w.entries)
	w.entries = append(w.entries, entry{name: name, data: buf})
	return nil
}

// Entries returns the staged entry names in order.
func (w *Writer) Entries() []string {
	out := make([]string, 0, len(w.entries))
	for _, e := range w.entries {
		out = append(out, e.name)
	}
	return out
}

// Entry returns the staged bytes for name.
func (w *Writer) Entry(name string) ([]byte, bool) {
	i, ok := w.index[name]
	if !ok {
		return nil, false
	}
	return w.entries[i].data, true
}

// Commit writes the package. The file at Path is replaced atomically, so a
// failed commit leaves any previous package untouched.
func (w *Writer) Commit() (err error) {
	pending, err := renameio.TempFile(filepath.Dir(w.path), w.path)
	if err != nil {
		return fmt.Errorf(messages.OutputCreateFailedFmt, w.path, err)
	}
	defer func() {
		if cleanupErr := pending.Cleanup(); cleanupErr != nil && err == nil {
			err = fmt.Errorf(messages.OutputCommitFailedFmt, w.path, cleanupErr)
		}
	}()

	zw := zip.NewWriter(pending)
	for _, e := range w.entries {
		header := &zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: entryTime}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf(messages.OutputWriteEntryFailedFmt, e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return fmt.Errorf(messages.OutputWriteEntryFailedFmt, e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf(messages.OutputCommitFailedFmt, w.path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf(messages.OutputCommitFailedFmt, w.path, err)
	}
	return nil
}
