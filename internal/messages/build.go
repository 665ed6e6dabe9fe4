package messages

// Build messages for archive access, package assembly, and the build pipeline.
const (
	ArchiveOpenFailedFmt      = "open target-files package %s: %w"
	ArchiveEntryNotFoundFmt   = "%s: %s: %w"
	ArchiveEntryReadFailedFmt = "%s: read entry %s: %w"
	ArchiveEntryUnsafePathFmt = "%s: entry %s escapes the extraction directory"
	ArchiveExtractFailedFmt   = "%s: extract %s: %w"
	ArchivePatternInvalidFmt  = "invalid extraction pattern %q: %w"

	ImageStatFailedFmt     = "stat image %s: %w"
	ImageNotRegularFmt     = "image %s is not a regular file"
	ImageZeroLengthFmt     = "image %s is empty"
	ImageDigestFailedFmt   = "hash image %s: %w"
	ImageHeaderReadFailFmt = "read image header %s: %w"

	OutputEntryNameRequired   = "output entry name is required"
	OutputEntryDuplicateFmt   = "output entry %s was staged twice"
	OutputCreateFailedFmt     = "create output package %s: %w"
	OutputWriteEntryFailedFmt = "write output entry %s: %w"
	OutputCommitFailedFmt     = "commit output package %s: %w"
	OutputLockOpenFailedFmt   = "open lock for output package %s: %w"
	OutputLockFailedFmt       = "lock output package %s: %w"
	OutputLockTimeoutFmt      = "output package %s is locked by another build (%s; waited %s)"
	OutputLockHolderFmt       = "pid %d\n"
	OutputLockHolderUnknown   = "holder unknown"

	PlanEncodeFailedFmt = "encode partition operations: %w"

	HookInfoRequired          = "hook info is required"
	HookScriptRequired        = "hook info has no install script"
	HookOutputRequired        = "hook info has no output package"
	HookProfileRequired       = "hook info has no device profile"
	HookInputRequired         = "full package hooks need an input build"
	HookSourceTargetRequired  = "incremental package hooks need source and target builds"
	HookReadImageFailedFmt    = "read %s: %w"
	HookStageImageFailedFmt   = "stage %s: %w"
	HookProgramModeInvalidFmt = "install_begin.program.mode %q: %w"
	HookPatchingImageFmt      = "Patching %s image unconditionally..."

	BuildTargetRequired   = "target-files package is required"
	BuildSourceRequired   = "source target-files package is required for incremental packages"
	BuildOutputRequired   = "output package path is required"
	BuildSystemRequired   = "build system is required"
	BuildTempDirFailedFmt = "create temp dir: %w"
	BuildUnpackFailedFmt  = "unpack %s: %w"
	BuildScriptDrift      = "install script differs"
	BuildScriptDriftFmt   = "%w from %s"
	BuildReadReferenceFmt = "read reference script %s: %w"
	BuildStepFailedFmt    = "%s: %w"
	BuildCleanupFailed    = "remove build temp dir"
	BuildDiffTruncatedFmt = "... (truncated to %d lines; rerun with %s <n> to see more)"
)
