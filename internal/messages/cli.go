package messages

// CLI messages for user-facing commands.
const (
	// RootUse is the CLI command name.
	RootUse = "otal"
	// RootShort is the short description for the root command.
	RootShort        = "Build OTA update packages for the device"
	RootLong         = "Build full and incremental OTA packages from target-files packages, using the device profile to pick\nuser partitions, firmware, and optional images."
	RootVersionFlag  = "Print version and exit"
	RootFlagProfile  = "Device profile TOML (default: the built-in profile)"
	RootFlagVerbose  = "Log every build step"
	RootFlagQuiet    = "Only log warnings and errors"
	RootFlagConflict = "--verbose and --quiet cannot be used together"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	FlagSource    = "Source build target-files package (makes the package incremental)"
	FlagTarget    = "Target build target-files package"
	FlagOutput    = "Path of the OTA package to write"
	FlagAgainst   = "Reference updater-script to compare against"
	FlagDiffLines = "Maximum diff lines to show"
	FlagForce     = "Overwrite an existing file"
	FlagPrevious  = "Profile of the previous release; every partition it lists must still be cataloged"

	// FullUse is the full command name.
	FullUse   = "full"
	FullShort = "Build a full OTA package"

	IncrementalUse   = "incremental"
	IncrementalShort = "Build an incremental OTA package"

	BuildWroteFmt   = "Wrote %s package %s\n"
	BuildSummaryFmt = "%d operations: %d write, %d diff, %d remove\n"

	PlanUse          = "plan"
	PlanShort        = "Show the partition operations a package would carry"
	PlanLineFmt      = "%-7s %s\n"
	PlanNoOperations = "No user partitions to update."

	ScriptUse   = "script"
	ScriptShort = "Print the install script a package would carry"

	CheckUse      = "check"
	CheckShort    = "Compare the generated install script against a reference"
	CheckMatchFmt = "Install script matches %s\n"

	CatalogUse        = "catalog"
	CatalogShort      = "Inspect or extend the partition catalog"
	CatalogListUse    = "list"
	CatalogListShort  = "List cataloged user partitions in order"
	CatalogAddUse     = "add <partition>"
	CatalogAddShort   = "Append a partition to the catalog"
	CatalogAddedFmt   = "Added partition %s to %s\n"
	CatalogAddProfile = "catalog add edits a profile file; pass --profile <path> (create one with 'otal profile init')"

	ProfileUse         = "profile"
	ProfileShort       = "Manage device profiles"
	ProfileInitUse     = "init [path]"
	ProfileInitShort   = "Write the built-in device profile to a file"
	ProfileWroteFmt    = "Wrote device profile to %s\n"
	ProfileExistsFmt   = "%s already exists; re-run with --force to overwrite"
	ProfileReadFmt     = "read profile %s: %w"
	ProfileWriteFmt    = "write profile %s: %w"
	ProfileExpandFmt   = "expand profile path %s: %w"
	ProfileValidateUse = "validate [path]"
	ProfileValidShort  = "Validate a device profile"
	ProfileValidFmt    = "%s is valid (%d partitions, %d firmware directives)\n"
	ProfilePreviousFmt = "compare with previous profile %s: %w"
)
