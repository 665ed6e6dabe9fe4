// Package plan records the per-partition update operations handed to the
// packaging pass and renders them as a manifest.
package plan

import (
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/ota-layer/internal/messages"
	"github.com/conn-castle/ota-layer/internal/partition"
)

// ManifestPath is where the manifest lives inside an OTA package.
const ManifestPath = "META/partition_operations.toml"

// Package kinds.
const (
	KindFull        = "full"
	KindIncremental = "incremental"
)

// Actions describe what an operation does to its partition.
const (
	ActionWrite  = "write"
	ActionDiff   = "diff"
	ActionRemove = "remove"
)

// Recorder receives operations in the order they must be applied.
type Recorder interface {
	RecordDifference(op partition.Operation)
}

// Manifest is a Recorder that keeps every operation.
type Manifest struct {
	Kind string
	ops  []partition.Operation
}

// NewManifest returns an empty manifest for a package of the given kind.
func NewManifest(kind string) *Manifest {
	return &Manifest{Kind: kind}
}

// RecordDifference appends op.
func (m *Manifest) RecordDifference(op partition.Operation) {
	m.ops = append(m.ops, op)
}

// Operations returns the recorded operations in order.
func (m *Manifest) Operations() []partition.Operation {
	out := make([]partition.Operation, len(m.ops))
	copy(out, m.ops)
	return out
}

// Action classifies op. Removal wins over diff: a retired partition always
// has a source image.
func Action(op partition.Operation) string {
	switch {
	case op.IsRemoval():
		return ActionRemove
	case op.IsDiff():
		return ActionDiff
	default:
		return ActionWrite
	}
}

// Summary counts operations by action.
type Summary struct {
	Write  int
	Diff   int
	Remove int
}

// Summary counts the recorded operations by action.
func (m *Manifest) Summary() Summary {
	var s Summary
	for _, op := range m.ops {
		switch Action(op) {
		case ActionRemove:
			s.Remove++
		case ActionDiff:
			s.Diff++
		default:
			s.Write++
		}
	}
	return s
}

type document struct {
	Kind       string           `toml:"kind"`
	Operations []operationEntry `toml:"operations"`
}

type operationEntry struct {
	Partition string      `toml:"partition"`
	Action    string      `toml:"action"`
	Target    *imageEntry `toml:"target,omitempty"`
	Source    *imageEntry `toml:"source,omitempty"`
}

type imageEntry struct {
	File   string `toml:"file"`
	Size   int64  `toml:"size"`
	Sparse bool   `toml:"sparse"`
	SHA256 string `toml:"sha256"`
}

func describe(img *partition.Image) *imageEntry {
	if img == nil || img.IsEmpty() {
		return nil
	}
	return &imageEntry{
		File:   filepath.Base(img.Path),
		Size:   img.Size,
		Sparse: img.Sparse,
		SHA256: img.SHA256,
	}
}

// Encode renders the manifest as TOML.
func (m *Manifest) Encode() ([]byte, error) {
	doc := document{Kind: m.Kind, Operations: make([]operationEntry, 0, len(m.ops))}
	for _, op := range m.ops {
		entry := operationEntry{
			Partition: string(op.Partition),
			Action:    Action(op),
			Target:    describe(op.Target),
		}
		if src, ok := op.Source.Get(); ok {
			entry.Source = describe(src)
		}
		doc.Operations = append(doc.Operations, entry)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf(messages.PlanEncodeFailedFmt, err)
	}
	return data, nil
}
