// Package partition reconciles the user-data partition images of one or two
// builds into the ordered list of per-partition update operations an OTA
// package must carry.
package partition

import (
	"fmt"
	"strings"

	"github.com/conn-castle/ota-layer/internal/messages"
)

// Name identifies a user-data partition image, e.g. "product".
type Name string

// String returns the partition name.
func (n Name) String() string {
	return string(n)
}

// Catalog is the ordered list of partitions a device's builds may carry as
// separate user images. Entries are only ever appended: an incremental update
// from an old build must still recognize a partition the new build dropped.
type Catalog struct {
	names []Name
	index map[Name]int
}

// NewCatalog validates names and returns them as a catalog in the given order.
func NewCatalog(names ...Name) (Catalog, error) {
	c := Catalog{
		names: make([]Name, 0, len(names)),
		index: make(map[Name]int, len(names)),
	}
	for i, name := range names {
		if err := validateName(i, name); err != nil {
			return Catalog{}, err
		}
		if _, ok := c.index[name]; ok {
			return Catalog{}, fmt.Errorf(messages.PartitionCatalogDuplicateFmt, i, name)
		}
		c.index[name] = len(c.names)
		c.names = append(c.names, name)
	}
	return c, nil
}

func validateName(i int, name Name) error {
	if strings.TrimSpace(string(name)) == "" {
		return fmt.Errorf(messages.PartitionCatalogEmptyNameFmt, i)
	}
	for _, r := range string(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		default:
			return fmt.Errorf(messages.PartitionCatalogInvalidNameFmt, i, name)
		}
	}
	return nil
}

// Names returns a copy of the catalog entries in order.
func (c Catalog) Names() []Name {
	out := make([]Name, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of cataloged partitions.
func (c Catalog) Len() int {
	return len(c.names)
}

// Contains reports whether name is cataloged.
func (c Catalog) Contains(name Name) bool {
	_, ok := c.index[name]
	return ok
}

// Append returns a new catalog with name added at the end.
func (c Catalog) Append(name Name) (Catalog, error) {
	names := append(c.Names(), name)
	return NewCatalog(names...)
}

// CheckSuperset returns an error naming every partition in previous that c no
// longer lists. Order changes are tolerated; removals are not.
func (c Catalog) CheckSuperset(previous Catalog) error {
	var dropped []string
	for _, name := range previous.names {
		if !c.Contains(name) {
			dropped = append(dropped, string(name))
		}
	}
	if len(dropped) > 0 {
		return fmt.Errorf(messages.PartitionCatalogDroppedFmt, strings.Join(dropped, ", "))
	}
	return nil
}
