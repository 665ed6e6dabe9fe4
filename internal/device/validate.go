package device

import (
	"fmt"
	"strings"

	"github.com/conn-castle/ota-layer/internal/messages"
)

// Validate checks the profile is complete. path names the profile in errors.
func (p *Profile) Validate(path string) error {
	if strings.TrimSpace(p.Device.Name) == "" {
		return fmt.Errorf(messages.DeviceNameRequiredFmt, path)
	}
	if len(p.Catalog.Partitions) == 0 {
		return fmt.Errorf(messages.DeviceCatalogRequiredFmt, path)
	}
	if _, err := p.PartitionCatalog(); err != nil {
		return fmt.Errorf(messages.DeviceCatalogInvalidFmt, path, err)
	}

	if len(p.Firmware.Flash) > 0 && strings.TrimSpace(p.Firmware.Banner) == "" {
		return fmt.Errorf(messages.DeviceFirmwareBannerRequiredFmt, path)
	}
	for i, entry := range p.Firmware.Flash {
		if strings.TrimSpace(entry.Source) == "" {
			return fmt.Errorf(messages.DeviceFirmwareSourceRequiredFmt, path, i)
		}
		if strings.TrimSpace(entry.Device) == "" {
			return fmt.Errorf(messages.DeviceFirmwareDeviceRequiredFmt, path, i)
		}
	}

	if err := validateImages(path, "install_begin", p.InstallBegin.Images); err != nil {
		return err
	}
	if err := validateImages(path, "install_end", p.InstallEnd.Images); err != nil {
		return err
	}

	if prog := p.InstallBegin.Program; prog != nil {
		if strings.TrimSpace(prog.Source) == "" {
			return fmt.Errorf(messages.DeviceProgramSourceRequiredFmt, path)
		}
		if strings.TrimSpace(prog.Path) == "" {
			return fmt.Errorf(messages.DeviceProgramPathRequiredFmt, path)
		}
		if _, err := prog.FileMode(); err != nil {
			return fmt.Errorf(messages.DeviceProgramModeInvalidFmt, path, prog.Mode)
		}
	}
	return nil
}

// validateImages checks one images table. Images are installed under their
// bare name, so two rows sharing dir and name would collide in the package.
func validateImages(path string, table string, images []ImageEntry) error {
	seen := make(map[string]struct{}, len(images))
	for i, img := range images {
		if strings.TrimSpace(img.Dir) == "" {
			return fmt.Errorf(messages.DeviceImageDirRequiredFmt, path, table, i)
		}
		if strings.TrimSpace(img.Name) == "" {
			return fmt.Errorf(messages.DeviceImageNameRequiredFmt, path, table, i)
		}
		if strings.ContainsAny(img.Name, `/\`) {
			return fmt.Errorf(messages.DeviceImageNameNestedFmt, path, table, i, img.Name)
		}
		if strings.TrimSpace(img.Device) == "" {
			return fmt.Errorf(messages.DeviceImageDeviceRequiredFmt, path, table, i)
		}
		key := img.ArchivePath()
		if _, ok := seen[key]; ok {
			return fmt.Errorf(messages.DeviceImageDuplicateFmt, path, table, i, img.Dir, img.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
