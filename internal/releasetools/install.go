package releasetools

import (
	"fmt"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/ota-layer/internal/device"
	"github.com/conn-castle/ota-layer/internal/messages"
)

// UpdateFirmware appends the firmware flash directives. Every package runs
// them, full or incremental, in table order.
func UpdateFirmware(info *Info) error {
	if err := info.checkBase(); err != nil {
		return err
	}
	fw := info.Profile.Firmware
	if len(fw.Flash) == 0 {
		return nil
	}
	info.Script.Print(fw.Banner)
	for _, entry := range fw.Flash {
		info.Script.PackageExtractFile(entry.Source, entry.Device)
	}
	info.log().WithField("directives", len(fw.Flash)).Debug("appended firmware directives")
	return nil
}

// AddImage installs entry from archive when the archive carries it: the bytes
// are staged into the package under the image's bare name and written to the
// entry's device path. A missing image is skipped without error.
func AddImage(info *Info, archive Archive, entry device.ImageEntry) error {
	if err := info.checkBase(); err != nil {
		return err
	}
	src := entry.ArchivePath()
	log := info.log().WithFields(logrus.Fields{"image": src, "device": entry.Device})
	if !archive.Contains(src) {
		log.Debug("image not in build; skipping")
		return nil
	}
	data, err := archive.Read(src)
	if err != nil {
		return fmt.Errorf(messages.HookReadImageFailedFmt, src, err)
	}
	if err := info.Output.WriteEntry(entry.Name, data); err != nil {
		return fmt.Errorf(messages.HookStageImageFailedFmt, src, err)
	}
	info.Script.Print(fmt.Sprintf(messages.HookPatchingImageFmt, path.Base(entry.Device)))
	info.Script.PackageExtractFile(entry.Name, entry.Device)
	log.Info("installing image unconditionally")
	return nil
}

// installImages runs AddImage for each entry. Presence is checked per image.
func installImages(info *Info, archive Archive, images []device.ImageEntry) error {
	for _, entry := range images {
		if err := AddImage(info, archive, entry); err != nil {
			return err
		}
	}
	return nil
}

// FullInstallBegin runs before any partition is written in a full package:
// optional install-begin images, then the helper program.
func FullInstallBegin(info *Info) error {
	if err := info.checkFull(); err != nil {
		return err
	}
	begin := info.Profile.InstallBegin
	if err := installImages(info, info.Input, begin.Images); err != nil {
		return err
	}
	if begin.Program == nil {
		return nil
	}
	mode, err := begin.Program.FileMode()
	if err != nil {
		return fmt.Errorf(messages.HookProgramModeInvalidFmt, begin.Program.Mode, err)
	}
	info.Script.PackageExtractFile(begin.Program.Source, begin.Program.Path)
	info.Script.SetMetadata(begin.Program.Path, begin.Program.UID, begin.Program.GID, mode)
	info.Script.RunProgram(begin.Program.Path)
	return nil
}

// FullInstallEnd flashes firmware and installs the optional images the input build carries.
func FullInstallEnd(info *Info) error {
	if err := info.checkFull(); err != nil {
		return err
	}
	return installEnd(info, info.Input)
}

// IncrementalInstallEnd flashes firmware and installs the optional images the target build carries.
func IncrementalInstallEnd(info *Info) error {
	if err := info.checkIncremental(); err != nil {
		return err
	}
	return installEnd(info, info.Target)
}

func installEnd(info *Info, archive Archive) error {
	if err := UpdateFirmware(info); err != nil {
		return err
	}
	return installImages(info, archive, info.Profile.InstallEnd.Images)
}
