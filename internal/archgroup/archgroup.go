// Package archgroup buckets control-file entries by their
// Architecture field for per-architecture index generation.
package archgroup

import (
	"errors"
	"sort"

	"github.com/debstage/debstage/internal/controlfile"
)

// ErrNoGroupableEntries reports that no scanned entry carried an
// Architecture field, so there is nothing to assemble.
var ErrNoGroupableEntries = errors.New("no entries with an Architecture field")

// Groups is the immutable result of grouping. Entries keep their
// per-fragment scan order within each architecture; the architecture
// list is sorted for deterministic output.
type Groups struct {
	byArch map[string][]string

	// Dropped counts entries that were discarded for lacking an
	// Architecture field.
	Dropped int
}

// Architectures returns the distinct architecture names in
// lexicographic order.
func (g *Groups) Architectures() []string {
	archs := make([]string, 0, len(g.byArch))
	for arch := range g.byArch {
		archs = append(archs, arch)
	}
	sort.Strings(archs)
	return archs
}

// Entries returns the raw stanza blocks recorded for an architecture,
// in insertion order.
func (g *Groups) Entries(arch string) []string {
	return g.byArch[arch]
}

// Group buckets every entry of every fragment by its Architecture
// field. Entries without the field are dropped and counted. An empty
// result is an error: it signals a structurally invalid input set.
func Group(fragments []string) (*Groups, error) {
	g := &Groups{byArch: make(map[string][]string)}
	for _, fragment := range fragments {
		for _, block := range controlfile.SplitBlocks(fragment) {
			arch, ok := controlfile.ExtractField(block, "Architecture")
			if !ok || arch == "" {
				g.Dropped++
				continue
			}
			g.byArch[arch] = append(g.byArch[arch], block)
		}
	}
	if len(g.byArch) == 0 {
		return nil, ErrNoGroupableEntries
	}
	return g, nil
}
