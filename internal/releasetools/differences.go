package releasetools

import (
	"github.com/sirupsen/logrus"

	"github.com/conn-castle/ota-layer/internal/partition"
)

// FullBlockDifferences schedules a fresh write of every user image in the input build.
func FullBlockDifferences(info *Info) ([]partition.Operation, error) {
	if err := info.checkFull(); err != nil {
		return nil, err
	}
	catalog, err := info.Profile.PartitionCatalog()
	if err != nil {
		return nil, err
	}
	images, err := partition.Collect(catalog, info.Input)
	if err != nil {
		return nil, err
	}
	ops := partition.ScheduleFull(images)
	logOperations(info.log(), ops)
	return ops, nil
}

// IncrementalBlockDifferences reconciles the source and target user images.
// Partitions the target no longer carries are scheduled for removal.
func IncrementalBlockDifferences(info *Info) ([]partition.Operation, error) {
	if err := info.checkIncremental(); err != nil {
		return nil, err
	}
	catalog, err := info.Profile.PartitionCatalog()
	if err != nil {
		return nil, err
	}
	sourceImages, err := partition.Collect(catalog, info.Source)
	if err != nil {
		return nil, err
	}
	targetImages, err := partition.Collect(catalog, info.Target)
	if err != nil {
		return nil, err
	}
	for _, name := range sourceImages.Names() {
		if !targetImages.Has(name) {
			info.log().WithField("partition", name).Info("partition retired by target build")
		}
	}
	ops := partition.ScheduleIncremental(sourceImages, targetImages)
	logOperations(info.log(), ops)
	return ops, nil
}

func logOperations(log logrus.FieldLogger, ops []partition.Operation) {
	for _, op := range ops {
		fields := logrus.Fields{
			"partition": op.Partition,
			"target":    op.Target.String(),
		}
		if src, ok := op.Source.Get(); ok {
			fields["source"] = src.String()
		}
		log.WithFields(fields).Debug("scheduled partition update")
	}
}
