package archgroup

import (
	"errors"
	"reflect"
	"testing"
)

func TestGroupDeterminism(t *testing.T) {
	fragmentA := `Package: a1
Architecture: amd64

Package: m1
Architecture: arm64

Package: a2
Architecture: amd64
`
	fragmentB := `Package: m2
Architecture: arm64
`

	groups, err := Group([]string{fragmentA, fragmentB})
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}

	want := []string{"amd64", "arm64"}
	if got := groups.Architectures(); !reflect.DeepEqual(got, want) {
		t.Errorf("Architectures() = %v, want %v", got, want)
	}

	amd := groups.Entries("amd64")
	if len(amd) != 2 {
		t.Fatalf("amd64 entries = %d, want 2", len(amd))
	}
	if amd[0] != "Package: a1\nArchitecture: amd64" || amd[1] != "Package: a2\nArchitecture: amd64" {
		t.Errorf("amd64 entries out of order: %q", amd)
	}

	arm := groups.Entries("arm64")
	if len(arm) != 2 {
		t.Fatalf("arm64 entries = %d, want 2", len(arm))
	}
	// fragment-iteration order across fragments
	if arm[0] != "Package: m1\nArchitecture: arm64" || arm[1] != "Package: m2\nArchitecture: arm64" {
		t.Errorf("arm64 entries out of order: %q", arm)
	}
}

func TestGroupDroppedCount(t *testing.T) {
	fragment := `Package: with
Architecture: amd64

Package: without
`
	groups, err := Group([]string{fragment})
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if groups.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", groups.Dropped)
	}
}

func TestGroupEmptyInput(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
	}{
		{"no_fragments", nil},
		{"fragment_without_architectures", []string{"Package: a\n\nPackage: b\n"}},
		{"blank_fragment", []string{"\n\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Group(tt.fragments)
			if !errors.Is(err, ErrNoGroupableEntries) {
				t.Errorf("expected ErrNoGroupableEntries, got %v", err)
			}
		})
	}
}
