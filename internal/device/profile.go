// Package device loads the per-device tables that drive install-script
// generation: the partition catalog, the firmware flash list, and the images
// installed only when a build carries them.
package device

import (
	_ "embed"
	"path"
	"strconv"

	"github.com/conn-castle/ota-layer/internal/partition"
)

//go:embed profiles/default.toml
var defaultProfile []byte

// DefaultProfileName is the file name `otal profile init` writes.
const DefaultProfileName = "device.toml"

// Profile is the parsed device profile.
type Profile struct {
	Device       Info          `toml:"device"`
	Catalog      CatalogConfig `toml:"catalog"`
	Firmware     Firmware      `toml:"firmware"`
	InstallBegin InstallBegin  `toml:"install_begin"`
	InstallEnd   InstallEnd    `toml:"install_end"`
}

// Info identifies the device the profile describes.
type Info struct {
	Name string `toml:"name"`
}

// CatalogConfig holds the append-only partition catalog.
type CatalogConfig struct {
	Partitions []string `toml:"partitions"`
}

// Firmware lists the firmware writes every package performs, in order.
type Firmware struct {
	Banner string       `toml:"banner"`
	Flash  []FlashEntry `toml:"flash"`
}

// FlashEntry writes one bundled firmware file to one device partition slot.
type FlashEntry struct {
	Source string `toml:"source"`
	Device string `toml:"device"`
}

// ImageEntry installs dir/name from the build archive to device, if present.
type ImageEntry struct {
	Dir    string `toml:"dir"`
	Name   string `toml:"name"`
	Device string `toml:"device"`
}

// ArchivePath returns the entry's path inside the build archive.
func (e ImageEntry) ArchivePath() string {
	return path.Join(e.Dir, e.Name)
}

// InstallBegin runs at the start of full packages.
type InstallBegin struct {
	Images  []ImageEntry `toml:"images"`
	Program *Program     `toml:"program"`
}

// Program is a helper shipped in the package that is extracted and run on device.
type Program struct {
	Source string `toml:"source"`
	Path   string `toml:"path"`
	UID    int    `toml:"uid"`
	GID    int    `toml:"gid"`
	Mode   string `toml:"mode"`
}

// FileMode parses Mode as octal permissions. An empty mode is 0755.
func (p Program) FileMode() (uint32, error) {
	if p.Mode == "" {
		return 0o755, nil
	}
	mode, err := strconv.ParseUint(p.Mode, 8, 32)
	if err != nil {
		return 0, err
	}
	if mode > 0o7777 {
		return 0, strconv.ErrRange
	}
	return uint32(mode), nil
}

// InstallEnd runs at the end of full and incremental packages.
type InstallEnd struct {
	Images []ImageEntry `toml:"images"`
}

// PartitionCatalog returns the profile's catalog as a validated partition.Catalog.
func (p *Profile) PartitionCatalog() (partition.Catalog, error) {
	names := make([]partition.Name, 0, len(p.Catalog.Partitions))
	for _, name := range p.Catalog.Partitions {
		names = append(names, partition.Name(name))
	}
	return partition.NewCatalog(names...)
}
