package partition

import "iter"

// ImageSet maps partition names to images for a single build and remembers
// insertion order. Iteration order is observable in the emitted operations.
type ImageSet struct {
	order  []Name
	images map[Name]*Image
}

// NewImageSet returns an empty set.
func NewImageSet() *ImageSet {
	return &ImageSet{images: make(map[Name]*Image)}
}

// Set stores img under name. A new name is appended to the iteration order;
// an existing name keeps its position.
func (s *ImageSet) Set(name Name, img *Image) {
	if s.images == nil {
		s.images = make(map[Name]*Image)
	}
	if _, ok := s.images[name]; !ok {
		s.order = append(s.order, name)
	}
	s.images[name] = img
}

// SetDefault stores img under name only if name is absent and returns the
// image stored afterwards.
func (s *ImageSet) SetDefault(name Name, img *Image) *Image {
	if existing, ok := s.images[name]; ok {
		return existing
	}
	s.Set(name, img)
	return img
}

// Get returns the image stored under name as an optional slot.
func (s *ImageSet) Get(name Name) Slot {
	if s == nil {
		return None()
	}
	return Some(s.images[name])
}

// Has reports whether name has an entry.
func (s *ImageSet) Has(name Name) bool {
	if s == nil {
		return false
	}
	_, ok := s.images[name]
	return ok
}

// Len returns the number of entries.
func (s *ImageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Names returns the entry names in insertion order.
func (s *ImageSet) Names() []Name {
	if s == nil {
		return nil
	}
	out := make([]Name, len(s.order))
	copy(out, s.order)
	return out
}

// All iterates entries in insertion order.
func (s *ImageSet) All() iter.Seq2[Name, *Image] {
	return func(yield func(Name, *Image) bool) {
		if s == nil {
			return
		}
		for _, name := range s.order {
			if !yield(name, s.images[name]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy: a new ordering and map sharing the same images.
func (s *ImageSet) Clone() *ImageSet {
	out := NewImageSet()
	for name, img := range s.All() {
		out.Set(name, img)
	}
	return out
}
