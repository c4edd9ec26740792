// Package testutil provides mesh.ForestHandle fixtures for the concrete
// scenarios of spec §8: single elements, uniform refinement, a hanging
// face, and small multi-rank partitions. Grounded on the teacher's fixture
// style in its own _test.go helper functions — small, explicit, and built
// by hand rather than through a generic mesh generator.
package testutil

import "github.com/meshnum/internal/mesh"

// Forest is a hand-assembled mesh.ForestHandle: a fixed element list plus
// the exact sequence of face and corner events Iterate replays.
type Forest struct {
	rank     int
	elements []mesh.Element
	ghosts   []mesh.GhostElement
	faces    []mesh.FaceEvent
	corners  []mesh.CornerEvent
}

// Rank returns the forest's local rank.
func (f *Forest) Rank() int { return f.rank }

// LocalElements returns the forest's local leaves.
func (f *Forest) LocalElements() []mesh.Element { return f.elements }

// Ghosts returns the forest's ghost layer.
func (f *Forest) Ghosts() []mesh.GhostElement { return f.ghosts }

// Iterate dispatches one OnVolume call per local element followed by every
// recorded face then corner event.
func (f *Forest) Iterate(v mesh.Visitor) {
	for i, e := range f.elements {
		v.OnVolume(int32(i), e)
	}
	for _, ev := range f.faces {
		v.OnFace(ev)
	}
	for _, ev := range f.corners {
		v.OnCorner(ev)
	}
}

func boundaryFace(rank int, element int32, faceID int) mesh.FaceEvent {
	return mesh.FaceEvent{Sides: []mesh.FaceSide{{Element: element, Rank: rank, FaceID: faceID}}}
}

func conformingFace(rank int, elementA int32, faceA int, elementB int32, faceB int) mesh.FaceEvent {
	return mesh.FaceEvent{Sides: []mesh.FaceSide{
		{Element: elementA, Rank: rank, FaceID: faceA},
		{Element: elementB, Rank: rank, FaceID: faceB},
	}}
}

func corner1(rank int, element int32, cornerID int) mesh.CornerEvent {
	return mesh.CornerEvent{Sides: []mesh.CornerSide{{Element: element, Rank: rank, CornerID: cornerID}}}
}

func corner2(rank int, elementA int32, cornerA int, elementB int32, cornerB int) mesh.CornerEvent {
	return mesh.CornerEvent{Sides: []mesh.CornerSide{
		{Element: elementA, Rank: rank, CornerID: cornerA},
		{Element: elementB, Rank: rank, CornerID: cornerB},
	}}
}

// SingleElement is scenario 1/2: one unrefined (level 0) leaf with all four
// faces and corners on the domain boundary. The full_style option passed to
// the builder is what distinguishes the two scenarios: true yields the
// center and four element-face midpoints all as corners (code 17,
// owned_count 5); false leaves the center as face-codim and emits no
// element-face midpoints (code 0, owned_count 4).
func SingleElement() *Forest {
	f := &Forest{
		rank:     0,
		elements: []mesh.Element{{GlobalIndex: 0, Level: 0, ChildID: 0, Rank: 0}},
	}
	for faceID := 0; faceID < 4; faceID++ {
		f.faces = append(f.faces, boundaryFace(0, 0, faceID))
	}
	for cornerID := 0; cornerID < 4; cornerID++ {
		f.corners = append(f.corners, corner1(0, 0, cornerID))
	}
	return f
}

// UniformRefinement2x2 is scenario 3: a unit square split once into four
// level-1 children laid out child0=bottom-left, child1=bottom-right,
// child2=top-left, child3=top-right. Face ids follow 0=left, 1=right,
// 2=bottom, 3=top. The four children's corners nearest the square's center
// collapse to a single shared corner candidate.
func UniformRefinement2x2() *Forest {
	const bl, br, tl, tr = int32(0), int32(1), int32(2), int32(3)

	f := &Forest{
		rank: 0,
		elements: []mesh.Element{
			{GlobalIndex: 0, Level: 1, ChildID: 0, Rank: 0},
			{GlobalIndex: 1, Level: 1, ChildID: 1, Rank: 0},
			{GlobalIndex: 2, Level: 1, ChildID: 2, Rank: 0},
			{GlobalIndex: 3, Level: 1, ChildID: 3, Rank: 0},
		},
	}

	f.faces = []mesh.FaceEvent{
		boundaryFace(0, bl, 0),
		boundaryFace(0, bl, 2),
		boundaryFace(0, br, 1),
		boundaryFace(0, br, 2),
		boundaryFace(0, tl, 0),
		boundaryFace(0, tl, 3),
		boundaryFace(0, tr, 1),
		boundaryFace(0, tr, 3),
		conformingFace(0, bl, 1, br, 0),
		conformingFace(0, tl, 1, tr, 0),
		conformingFace(0, bl, 3, tl, 2),
		conformingFace(0, br, 3, tr, 2),
	}

	f.corners = []mesh.CornerEvent{
		corner1(0, bl, 0),
		corner1(0, br, 1),
		corner1(0, tl, 2),
		corner1(0, tr, 3),
		corner2(0, bl, 1, br, 0),
		corner2(0, tl, 3, tr, 2),
		corner2(0, bl, 2, tl, 0),
		corner2(0, br, 3, tr, 1),
		{Sides: []mesh.CornerSide{
			{Element: bl, Rank: 0, CornerID: 3},
			{Element: br, Rank: 0, CornerID: 2},
			{Element: tl, Rank: 0, CornerID: 1},
			{Element: tr, Rank: 0, CornerID: 0},
		}},
	}

	return f
}

// LShapeHanging is scenario 4: one half-style coarse (level 0) element
// whose right face (face id 1) borders two level-1 children of a
// neighboring, already-refined quadrant — a single nonconforming face, the
// minimal shape that exercises half-to-full promotion (§9).
func LShapeHanging() *Forest {
	const coarse, smallA, smallB = int32(0), int32(1), int32(2)

	f := &Forest{
		rank: 0,
		elements: []mesh.Element{
			{GlobalIndex: 0, Level: 0, ChildID: 1, Rank: 0},
			{GlobalIndex: 1, Level: 1, ChildID: 0, Rank: 0},
			{GlobalIndex: 2, Level: 1, ChildID: 2, Rank: 0},
		},
	}

	f.faces = []mesh.FaceEvent{
		boundaryFace(0, coarse, 0),
		boundaryFace(0, coarse, 2),
		boundaryFace(0, coarse, 3),
		boundaryFace(0, smallA, 1),
		boundaryFace(0, smallA, 2),
		boundaryFace(0, smallB, 1),
		boundaryFace(0, smallB, 3),
		conformingFace(0, smallA, 3, smallB, 2),
		{Sides: []mesh.FaceSide{
			{Element: coarse, Rank: 0, FaceID: 1},
			{Hanging: true, Element: smallA, Rank: 0, FaceID: 0, ChildIDs: [2]uint8{0, 0}},
			{Hanging: true, Element: smallB, Rank: 0, FaceID: 0, ChildIDs: [2]uint8{2, 2}},
		}},
	}

	f.corners = []mesh.CornerEvent{
		corner1(0, coarse, 0),
		corner1(0, coarse, 2),
		corner1(0, smallA, 1),
		corner1(0, smallB, 3),
		corner2(0, smallA, 2, smallB, 0),
	}

	return f
}

// TwoRankStrip is scenario 5: a 2x1 strip of two same-level leaves, one per
// rank, sharing one face. The boundary corners are split one-per-rank so
// each rank owns exactly one corner of the shared face and sees the other
// in its nonlocal table.
func TwoRankStrip() []*Forest {
	left := &Forest{
		rank:     0,
		elements: []mesh.Element{{GlobalIndex: 0, Level: 0, ChildID: 0, Rank: 0}},
		ghosts:   []mesh.GhostElement{{Element: mesh.Element{GlobalIndex: 1, Level: 0, ChildID: 0, Rank: 1}, RemoteLocalIndex: 0}},
	}
	right := &Forest{
		rank:     1,
		elements: []mesh.Element{{GlobalIndex: 1, Level: 0, ChildID: 0, Rank: 1}},
		ghosts:   []mesh.GhostElement{{Element: mesh.Element{GlobalIndex: 0, Level: 0, ChildID: 0, Rank: 0}, RemoteLocalIndex: 0}},
	}

	sharedFace := mesh.FaceEvent{Sides: []mesh.FaceSide{
		{Element: 0, Rank: 0, FaceID: 1},
		{Ghost: true, Element: 0, Rank: 1, FaceID: 0},
	}}
	left.faces = append(left.faces,
		boundaryFace(0, 0, 0), boundaryFace(0, 0, 2), boundaryFace(0, 0, 3),
		sharedFace,
	)
	right.faces = append(right.faces,
		boundaryFace(1, 0, 1), boundaryFace(1, 0, 2), boundaryFace(1, 0, 3),
		mesh.FaceEvent{Sides: []mesh.FaceSide{
			{Element: 0, Rank: 1, FaceID: 0},
			{Ghost: true, Element: 0, Rank: 0, FaceID: 1},
		}},
	)

	left.corners = []mesh.CornerEvent{
		corner1(0, 0, 0),
		corner1(0, 0, 2),
		{Sides: []mesh.CornerSide{{Element: 0, Rank: 0, CornerID: 1}, {Ghost: true, Element: 0, Rank: 1, CornerID: 0}}},
		{Sides: []mesh.CornerSide{{Element: 0, Rank: 0, CornerID: 3}, {Ghost: true, Element: 0, Rank: 1, CornerID: 2}}},
	}
	right.corners = []mesh.CornerEvent{
		corner1(1, 0, 1),
		corner1(1, 0, 3),
		{Sides: []mesh.CornerSide{{Element: 0, Rank: 1, CornerID: 0}, {Ghost: true, Element: 0, Rank: 0, CornerID: 1}}},
		{Sides: []mesh.CornerSide{{Element: 0, Rank: 1, CornerID: 2}, {Ghost: true, Element: 0, Rank: 0, CornerID: 3}}},
	}

	return []*Forest{left, right}
}

// TwoRankHanging is scenario 6: a coarse (level 0, half-style) leaf on rank
// 0 adjacent, across one face, to two level-1 leaves on rank 1 — the
// nonconforming-face and half-to-full-promotion machinery replayed across a
// rank boundary instead of within a single rank.
func TwoRankHanging() []*Forest {
	coarseRank := &Forest{
		rank:     0,
		elements: []mesh.Element{{GlobalIndex: 0, Level: 0, ChildID: 1, Rank: 0}},
		ghosts: []mesh.GhostElement{
			{Element: mesh.Element{GlobalIndex: 1, Level: 1, ChildID: 0, Rank: 1}, RemoteLocalIndex: 0},
			{Element: mesh.Element{GlobalIndex: 2, Level: 1, ChildID: 2, Rank: 1}, RemoteLocalIndex: 1},
		},
	}
	smallRank := &Forest{
		rank: 1,
		elements: []mesh.Element{
			{GlobalIndex: 1, Level: 1, ChildID: 0, Rank: 1},
			{GlobalIndex: 2, Level: 1, ChildID: 2, Rank: 1},
		},
		ghosts: []mesh.GhostElement{{Element: mesh.Element{GlobalIndex: 0, Level: 0, ChildID: 1, Rank: 0}, RemoteLocalIndex: 0}},
	}

	nonconforming := mesh.FaceEvent{Sides: []mesh.FaceSide{
		{Element: 0, Rank: 0, FaceID: 1},
		{Hanging: true, Ghost: true, Element: 0, Rank: 1, FaceID: 0, ChildIDs: [2]uint8{0, 0}},
		{Hanging: true, Ghost: true, Element: 1, Rank: 1, FaceID: 0, ChildIDs: [2]uint8{2, 2}},
	}}
	coarseRank.faces = []mesh.FaceEvent{
		boundaryFace(0, 0, 0), boundaryFace(0, 0, 2), boundaryFace(0, 0, 3),
		nonconforming,
	}
	coarseRank.corners = []mesh.CornerEvent{
		corner1(0, 0, 0),
		corner1(0, 0, 2),
	}

	nonconformingFromSmall := mesh.FaceEvent{Sides: []mesh.FaceSide{
		{Ghost: true, Element: 0, Rank: 0, FaceID: 1},
		{Hanging: true, Element: 0, Rank: 1, FaceID: 0, ChildIDs: [2]uint8{0, 0}},
		{Hanging: true, Element: 1, Rank: 1, FaceID: 0, ChildIDs: [2]uint8{2, 2}},
	}}
	smallRank.faces = []mesh.FaceEvent{
		boundaryFace(1, 0, 1), boundaryFace(1, 0, 2),
		boundaryFace(1, 1, 1), boundaryFace(1, 1, 3),
		conformingFace(1, 0, 3, 1, 2),
		nonconformingFromSmall,
	}
	smallRank.corners = []mesh.CornerEvent{
		corner1(1, 0, 1),
		corner1(1, 1, 3),
		corner2(1, 0, 2, 1, 0),
	}

	return []*Forest{coarseRank, smallRank}
}

// EmptyPartition is the §8 boundary scenario: a rank with zero local
// elements and no ghosts.
func EmptyPartition(rank int) *Forest {
	return &Forest{rank: rank}
}
