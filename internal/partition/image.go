package partition

import (
	"fmt"

	"github.com/conn-castle/ota-layer/internal/messages"
)

// Image is a handle to one build's on-disk content for a partition. The
// content itself stays on disk; the handle only carries what the packaging
// pass needs to locate and describe it.
type Image struct {
	Partition Name
	// Path is the extracted image file.
	Path string
	// MapPath is the block map next to the image, empty when the build has none.
	MapPath string
	Size    int64
	Sparse  bool
	// SHA256 is the hex digest of the image file as loaded.
	SHA256 string

	empty bool
}

var emptyImage = &Image{empty: true}

// EmptyImage returns the sentinel that schedules a partition for removal.
// Every call returns the same value and no loaded image ever compares equal to it.
func EmptyImage() *Image {
	return emptyImage
}

// IsEmpty reports whether img is the removal sentinel.
func (img *Image) IsEmpty() bool {
	return img != nil && img.empty
}

// String renders the image for logs.
func (img *Image) String() string {
	switch {
	case img == nil:
		return "<nil>"
	case img.empty:
		return messages.PartitionEmptyImageString
	default:
		return fmt.Sprintf("%s (%d bytes)", img.Path, img.Size)
	}
}

// Slot is an optional image reference. An unset slot means the build has no
// image for the partition; a slot holding EmptyImage means the partition is
// being removed. The two are never interchangeable.
type Slot struct {
	image *Image
}

// Some wraps img in a set slot. A nil img yields an unset slot.
func Some(img *Image) Slot {
	return Slot{image: img}
}

// None returns an unset slot.
func None() Slot {
	return Slot{}
}

// Get returns the image and whether the slot is set.
func (s Slot) Get() (*Image, bool) {
	return s.image, s.image != nil
}

// IsSet reports whether the slot holds an image (including the empty sentinel).
func (s Slot) IsSet() bool {
	return s.image != nil
}

// Operation is one per-partition update handed to the packaging pass.
// Target may be EmptyImage; an unset Source means a fresh write with no diff base.
type Operation struct {
	Partition Name
	Target    *Image
	Source    Slot
}

// IsDiff reports whether the operation carries a source to diff against.
func (op Operation) IsDiff() bool {
	return op.Source.IsSet()
}

// IsRemoval reports whether the operation clears the partition.
func (op Operation) IsRemoval() bool {
	return op.Target.IsEmpty()
}
