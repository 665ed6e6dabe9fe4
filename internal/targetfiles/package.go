// Package targetfiles reads target-files packages: the zip archives a
// platform build produces, holding every image of one build.
package targetfiles

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/ota-layer/internal/messages"
)

// ErrNotFound reports a missing archive entry.
var ErrNotFound = errors.New("archive entry not found")

// Package is an open target-files archive.
type Package struct {
	path    string
	reader  *zip.ReadCloser
	entries map[string]*zip.File
	names   []string
}

// Open opens the archive at path. Close releases it.
func Open(path string) (*Package, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ArchiveOpenFailedFmt, path, err)
	}
	pkg := &Package{
		path:    path,
		reader:  reader,
		entries: make(map[string]*zip.File, len(reader.File)),
		names:   make([]string, 0, len(reader.File)),
	}
	for _, f := range reader.File {
		if _, dup := pkg.entries[f.Name]; dup {
			continue
		}
		pkg.entries[f.Name] = f
		pkg.names = append(pkg.names, f.Name)
	}
	return pkg, nil
}

// Close closes the underlying archive.
func (p *Package) Close() error {
	if p == nil || p.reader == nil {
		return nil
	}
	return p.reader.Close()
}

// Path returns the archive's file path.
func (p *Package) Path() string {
	return p.path
}

// Names returns the archive's entry names in archive order.
func (p *Package) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Contains reports whether the archive holds an entry named name.
func (p *Package) Contains(name string) bool {
	_, ok := p.entries[name]
	return ok
}

// Read returns the bytes of entry name. Missing entries wrap ErrNotFound.
func (p *Package) Read(name string) ([]byte, error) {
	f, ok := p.entries[name]
	if !ok {
		return nil, fmt.Errorf(messages.ArchiveEntryNotFoundFmt, p.path, name, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf(messages.ArchiveEntryReadFailedFmt, p.path, name, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf(messages.ArchiveEntryReadFailedFmt, p.path, name, err)
	}
	return data, nil
}

// Extract writes every entry matching one of patterns (path.Match syntax,
// e.g. "IMAGES/*") under dir, keeping archive-relative paths. It returns the
// extracted names sorted.
func (p *Package) Extract(dir string, patterns ...string) ([]string, error) {
	for _, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf(messages.ArchivePatternInvalidFmt, pattern, err)
		}
	}
	var extracted []string
	for _, name := range p.names {
		if strings.HasSuffix(name, "/") || !matchesAny(name, patterns) {
			continue
		}
		dest, err := safeJoin(dir, name)
		if err != nil {
			return nil, fmt.Errorf(messages.ArchiveEntryUnsafePathFmt, p.path, name)
		}
		if err := p.extractFile(p.entries[name], dest); err != nil {
			return nil, fmt.Errorf(messages.ArchiveExtractFailedFmt, p.path, name, err)
		}
		extracted = append(extracted, name)
	}
	sort.Strings(extracted)
	return extracted, nil
}

func (p *Package) extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// safeJoin joins an archive entry name under dir, refusing names that climb out.
func safeJoin(dir, name string) (string, error) {
	clean := path.Clean(name)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", os.ErrInvalid
	}
	return filepath.Join(dir, filepath.FromSlash(clean)), nil
}
