package partition

import (
	"errors"
	"fmt"

	"github.com/conn-castle/ota-layer/internal/messages"
)

// Source resolves partition images for one build.
type Source interface {
	// HasImage reports whether the build physically carries an image for name.
	HasImage(name Name) bool
	// LoadImage resolves the image for name. It is only called after HasImage
	// returned true; an error means the file is present but unusable.
	LoadImage(name Name) (*Image, error)
}

// Collect builds the image set of one build by walking the catalog in order.
// Partitions the build does not carry are left out; a partition that is
// present but cannot be loaded aborts the walk.
func Collect(catalog Catalog, src Source) (*ImageSet, error) {
	if src == nil {
		return nil, errors.New(messages.PartitionSourceRequired)
	}
	set := NewImageSet()
	for _, name := range catalog.names {
		if !src.HasImage(name) {
			continue
		}
		img, err := src.LoadImage(name)
		if err != nil {
			return nil, fmt.Errorf(messages.PartitionLoadImageFmt, name, err)
		}
		if img == nil {
			return nil, fmt.Errorf(messages.PartitionLookupReturnedNilFmt, name)
		}
		set.Set(name, img)
	}
	return set, nil
}
