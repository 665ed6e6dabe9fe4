package messages

// Device profile messages for loading, validation, and catalog edits.
const (
	DeviceMissingProfileFmt         = "missing device profile %s: %w"
	DeviceInvalidProfileFmt         = "invalid device profile %s: %w"
	DeviceUnrecognizedKeysFmt       = "%s: unrecognized keys: %v"
	DeviceValidationGuidance        = "(compare the profile with 'otal profile init' output)"
	DeviceNameRequiredFmt           = "%s: device.name is required"
	DeviceCatalogRequiredFmt        = "%s: catalog.partitions must list at least one partition"
	DeviceCatalogInvalidFmt         = "%s: catalog.partitions: %w"
	DeviceFirmwareBannerRequiredFmt = "%s: firmware.banner is required when firmware.flash is set"
	DeviceFirmwareSourceRequiredFmt = "%s: firmware.flash[%d].source is required"
	DeviceFirmwareDeviceRequiredFmt = "%s: firmware.flash[%d].device is required"
	DeviceImageDirRequiredFmt       = "%s: %s.images[%d].dir is required"
	DeviceImageNameRequiredFmt      = "%s: %s.images[%d].name is required"
	DeviceImageNameNestedFmt        = "%s: %s.images[%d].name %q must be a bare file name"
	DeviceImageDeviceRequiredFmt    = "%s: %s.images[%d].device is required"
	DeviceImageDuplicateFmt         = "%s: %s.images[%d] repeats %s/%s"
	DeviceProgramSourceRequiredFmt  = "%s: install_begin.program.source is required"
	DeviceProgramPathRequiredFmt    = "%s: install_begin.program.path is required"
	DeviceProgramModeInvalidFmt     = "%s: install_begin.program.mode %q must be an octal permission such as 0755"

	DeviceCatalogParseFailedFmt   = "parse profile before catalog edit: %w"
	DeviceCatalogResultInvalidFmt = "catalog edit produced an invalid profile: %w"
	DeviceCatalogKeyMissing       = "profile has no catalog.partitions array to append to"
	DeviceCatalogArrayUnclosed    = "catalog.partitions array is not closed"
	DeviceCatalogAlreadyListedFmt = "partition %q is already in the catalog"
	DeviceCatalogEditMismatchFmt  = "catalog edit did not append %q: catalog.partitions reads %v"
)
