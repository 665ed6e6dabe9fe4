package partition

// ScheduleFull returns one fresh-write operation per image in target, in the
// set's order. Full packages never diff.
func ScheduleFull(target *ImageSet) []Operation {
	ops := make([]Operation, 0, target.Len())
	for name, img := range target.All() {
		ops = append(ops, Operation{Partition: name, Target: img, Source: None()})
	}
	return ops
}

// ScheduleIncremental reconciles the image sets of a source and a target build.
//
// Partitions in both builds diff against the source image. Partitions only in
// the target are written fresh. Partitions only in the source are scheduled
// with EmptyImage as their target so they are cleared rather than left behind.
// Operations follow the target's order, then retired partitions in source
// order. Neither set is modified.
func ScheduleIncremental(source, target *ImageSet) []Operation {
	working := target.Clone()
	for name := range source.All() {
		working.SetDefault(name, EmptyImage())
	}

	ops := make([]Operation, 0, working.Len())
	for name, img := range working.All() {
		ops = append(ops, Operation{Partition: name, Target: img, Source: source.Get(name)})
	}
	return ops
}
