package targetfiles

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/ota-layer/internal/logging"
	"github.com/conn-castle/ota-layer/internal/messages"
	"github.com/conn-castle/ota-layer/internal/partition"
)

// Directories of a target-files package the install logic reads from.
const (
	ImagesDir = "IMAGES"
	RadioDir  = "RADIO"
)

// UnpackPatterns are the archive entries extracted for a build.
var UnpackPatterns = []string{ImagesDir + "/*", RadioDir + "/*"}

// sparseMagic opens every Android sparse image (little endian).
const sparseMagic uint32 = 0xed26ff3a

// Build is one build's target-files package plus the directory its images
// were extracted to. It resolves user images for partition.Collect.
type Build struct {
	Package *Package
	TempDir string
	log     logrus.FieldLogger
}

// Unpack extracts the image directories of pkg into tempDir.
func Unpack(pkg *Package, tempDir string, log logrus.FieldLogger) (*Build, error) {
	log = logging.OrDiscard(log)
	names, err := pkg.Extract(tempDir, UnpackPatterns...)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"package": pkg.Path(), "entries": len(names)}).Debug("unpacked target-files images")
	return &Build{Package: pkg, TempDir: tempDir, log: log}, nil
}

// Contains reports whether the build's archive holds name.
func (b *Build) Contains(name string) bool {
	return b.Package.Contains(name)
}

// Read returns the bytes of archive entry name.
func (b *Build) Read(name string) ([]byte, error) {
	return b.Package.Read(name)
}

// ImagePath returns where the extracted image of name lives.
func (b *Build) ImagePath(name partition.Name) string {
	return filepath.Join(b.TempDir, ImagesDir, string(name)+".img")
}

// HasImage reports whether the build's image directory holds name.img.
func (b *Build) HasImage(name partition.Name) bool {
	_, err := os.Stat(b.ImagePath(name))
	return err == nil
}

// LoadImage stats, sniffs, and hashes the extracted image for name. A block
// map (name.map) next to the image is attached when present.
func (b *Build) LoadImage(name partition.Name) (*partition.Image, error) {
	imgPath := b.ImagePath(name)
	info, err := os.Stat(imgPath)
	if err != nil {
		return nil, fmt.Errorf(messages.ImageStatFailedFmt, imgPath, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf(messages.ImageNotRegularFmt, imgPath)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf(messages.ImageZeroLengthFmt, imgPath)
	}

	sparse, digest, err := inspectImage(imgPath)
	if err != nil {
		return nil, err
	}

	img := &partition.Image{
		Partition: name,
		Path:      imgPath,
		Size:      info.Size(),
		Sparse:    sparse,
		SHA256:    digest,
	}
	mapPath := filepath.Join(b.TempDir, ImagesDir, string(name)+".map")
	if _, err := os.Stat(mapPath); err == nil {
		img.MapPath = mapPath
	}

	logging.OrDiscard(b.log).WithFields(logrus.Fields{
		"partition": name,
		"path":      imgPath,
		"size":      img.Size,
		"sparse":    sparse,
	}).Debug("loaded user image")
	return img, nil
}

// inspectImage reads the sparse header and the SHA-256 digest in one pass.
func inspectImage(imgPath string) (bool, string, error) {
	f, err := os.Open(imgPath)
	if err != nil {
		return false, "", fmt.Errorf(messages.ImageDigestFailedFmt, imgPath, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	var header [4]byte
	n, err := io.ReadFull(f, header[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, "", fmt.Errorf(messages.ImageHeaderReadFailFmt, imgPath, err)
	}
	h.Write(header[:n])
	if _, err := io.Copy(h, f); err != nil {
		return false, "", fmt.Errorf(messages.ImageDigestFailedFmt, imgPath, err)
	}
	sparse := n == len(header) && binary.LittleEndian.Uint32(header[:]) == sparseMagic
	return sparse, hex.EncodeToString(h.Sum(nil)), nil
}
