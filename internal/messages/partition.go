package messages

// Partition messages for catalog handling and image set construction.
const (
	PartitionCatalogEmptyNameFmt   = "catalog entry %d: partition name is required"
	PartitionCatalogDuplicateFmt   = "catalog entry %d: partition %q is already listed"
	PartitionCatalogInvalidNameFmt = "catalog entry %d: partition name %q must be lowercase letters, digits, or underscores"
	PartitionCatalogDroppedFmt     = "catalog dropped previously shipped partitions: %s; partition names must never be removed"
	PartitionSourceRequired        = "image source is required"
	PartitionLoadImageFmt          = "load image for partition %s: %w"
	PartitionLookupReturnedNilFmt  = "image lookup for partition %s reported present but returned no image"

	// PartitionEmptyImageString is how the removal sentinel renders in logs and plans.
	PartitionEmptyImageString = "<empty>"
)
