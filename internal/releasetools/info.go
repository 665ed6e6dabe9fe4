// Package releasetools holds the device-specific hooks the OTA package
// builder calls: which user images to diff, which firmware to flash, and
// which optional images to install.
package releasetools

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/conn-castle/ota-layer/internal/device"
	"github.com/conn-castle/ota-layer/internal/edify"
	"github.com/conn-castle/ota-layer/internal/logging"
	"github.com/conn-castle/ota-layer/internal/messages"
	"github.com/conn-castle/ota-layer/internal/partition"
)

// Archive is read access to one build's target-files package.
type Archive interface {
	Contains(name string) bool
	Read(name string) ([]byte, error)
}

// Build is one build as the hooks see it: its archive plus its extracted user images.
type Build interface {
	Archive
	partition.Source
}

// Output stages files into the package being produced.
type Output interface {
	WriteEntry(name string, data []byte) error
}

// Info is the state shared by the hooks of one package build. Full packages
// set Input; incremental packages set Source and Target.
type Info struct {
	Script  *edify.Script
	Output  Output
	Profile *device.Profile

	Input  Build
	Source Build
	Target Build

	Log logrus.FieldLogger
}

func (info *Info) log() logrus.FieldLogger {
	return logging.OrDiscard(info.Log)
}

// checkBase verifies the fields every hook needs.
func (info *Info) checkBase() error {
	switch {
	case info == nil:
		return errors.New(messages.HookInfoRequired)
	case info.Script == nil:
		return errors.New(messages.HookScriptRequired)
	case info.Output == nil:
		return errors.New(messages.HookOutputRequired)
	case info.Profile == nil:
		return errors.New(messages.HookProfileRequired)
	}
	return nil
}

func (info *Info) checkFull() error {
	if err := info.checkBase(); err != nil {
		return err
	}
	if info.Input == nil {
		return errors.New(messages.HookInputRequired)
	}
	return nil
}

func (info *Info) checkIncremental() error {
	if err := info.checkBase(); err != nil {
		return err
	}
	if info.Source == nil || info.Target == nil {
		return errors.New(messages.HookSourceTargetRequired)
	}
	return nil
}
