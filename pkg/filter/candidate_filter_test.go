package filter

import (
	"testing"

	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/registry"
)

func buildCandidate(reg *registry.Registry, codim mesh.Codim, contributors ...registry.Contributor) registry.ID {
	id := reg.NewCandidate(codim)
	for _, c := range contributors {
		reg.AddContributor(id, c)
	}
	return id
}

func TestClassifyCodim(t *testing.T) {
	tests := []struct {
		codim    mesh.Codim
		expected SlotClass
	}{
		{mesh.CodimCorner, SlotClassCorner},
		{mesh.CodimFace, SlotClassFace},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			if got := ClassifyCodim(tt.codim); got != tt.expected {
				t.Errorf("ClassifyCodim(%v) = %v, want %v", tt.codim, got, tt.expected)
			}
		})
	}
}

func TestCandidateFilter_PositionInRange(t *testing.T) {
	noFaces := NewCandidateFilter(false)
	if !noFaces.PositionInRange(8) {
		t.Error("expected position 8 in range for withFaces=false")
	}
	if noFaces.PositionInRange(9) {
		t.Error("expected position 9 out of range for withFaces=false")
	}

	withFaces := NewCandidateFilter(true)
	if !withFaces.PositionInRange(24) {
		t.Error("expected position 24 in range for withFaces=true")
	}
	if withFaces.PositionInRange(25) {
		t.Error("expected position 25 out of range for withFaces=true")
	}
}

func TestCandidateFilter_SelectCodim(t *testing.T) {
	reg := registry.New()
	corner := buildCandidate(reg, mesh.CodimCorner, registry.Contributor{Rank: 0, LocalElement: 0, Position: 0})
	face := buildCandidate(reg, mesh.CodimFace, registry.Contributor{Rank: 0, LocalElement: 0, Position: 5})

	f := NewCandidateFilter(true)
	f.SelectCodim(mesh.CodimCorner)

	if !f.Keep(corner, reg.Get(corner)) {
		t.Error("expected corner candidate to be kept when corner codim selected")
	}
	if f.Keep(face, reg.Get(face)) {
		t.Error("expected face candidate to be dropped when corner codim selected")
	}

	f.ClearCodimSelect()
	if !f.Keep(face, reg.Get(face)) {
		t.Error("expected face candidate to be kept once codim selection is cleared")
	}
}

func TestCandidateFilter_OwnerRankRange(t *testing.T) {
	reg := registry.New()
	ownedByZero := buildCandidate(reg, mesh.CodimCorner, registry.Contributor{Rank: 0, LocalElement: 0, Position: 0})
	ownedByTwo := buildCandidate(reg, mesh.CodimCorner, registry.Contributor{Rank: 2, LocalElement: 0, Position: 0})

	f := NewCandidateFilter(true)
	f.AddOwnerRankRange(0, 1)

	if !f.Keep(ownedByZero, reg.Get(ownedByZero)) {
		t.Error("expected candidate owned by rank 0 to be kept within range [0,1]")
	}
	if f.Keep(ownedByTwo, reg.Get(ownedByTwo)) {
		t.Error("expected candidate owned by rank 2 to be dropped outside range [0,1]")
	}

	f.ClearOwnerRankRanges()
	if !f.Keep(ownedByTwo, reg.Get(ownedByTwo)) {
		t.Error("expected candidate owned by rank 2 to be kept once ranges are cleared")
	}
}

func TestCandidateFilter_FilterIDs(t *testing.T) {
	reg := registry.New()
	corner := buildCandidate(reg, mesh.CodimCorner, registry.Contributor{Rank: 0, LocalElement: 0, Position: 0})
	face := buildCandidate(reg, mesh.CodimFace, registry.Contributor{Rank: 0, LocalElement: 0, Position: 5})

	f := NewCandidateFilter(true)
	f.SelectCodim(mesh.CodimFace)

	kept := f.FilterIDs([]registry.ID{corner, face}, reg)
	if len(kept) != 1 || kept[0] != face {
		t.Errorf("FilterIDs = %v, want [%d]", kept, face)
	}
}

func TestCandidateFilter_Cache(t *testing.T) {
	reg := registry.New()
	corner := buildCandidate(reg, mesh.CodimCorner, registry.Contributor{Rank: 0, LocalElement: 0, Position: 0})

	f := NewCandidateFilter(true)

	kept1 := f.Keep(corner, reg.Get(corner))
	kept2 := f.Keep(corner, reg.Get(corner))
	if kept1 != kept2 {
		t.Errorf("cached result differs: %v vs %v", kept1, kept2)
	}

	size, maxSize := f.CacheStats()
	if size != 1 {
		t.Errorf("expected cache size 1, got %d", size)
	}
	if maxSize != 10000 {
		t.Errorf("expected max cache size 10000, got %d", maxSize)
	}

	f.ClearCache()
	size, _ = f.CacheStats()
	if size != 0 {
		t.Errorf("expected cache size 0 after clear, got %d", size)
	}
}

func TestSlotClass_String(t *testing.T) {
	tests := []struct {
		class    SlotClass
		expected string
	}{
		{SlotClassUnknown, "unknown"},
		{SlotClassCorner, "corner"},
		{SlotClassFace, "face"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.class.String(); got != tt.expected {
				t.Errorf("SlotClass.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
