// Package numbering implements incidence discovery (spec §4.1): the
// mesh.Visitor that turns the external topology iterator's volume, face and
// corner events into registry candidates and contributors, and that derives
// each local element's configuration code and face code along the way.
package numbering

import (
	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/registry"
	"github.com/meshnum/pkg/utils"
)

// ElementState is the per-local-element bookkeeping the builder produces:
// the element→candidate slot table (indexed by the 9/25-entry position
// schema), its configuration code, and its face code.
type ElementState struct {
	Slots         [mesh.VFaces]registry.ID
	Configuration mesh.Configuration
	FaceCode      mesh.FaceCode
}

// Builder implements mesh.Visitor, accumulating candidates in reg as the
// forest's topology iterator replays volume, face and corner events.
type Builder struct {
	reg       *registry.Registry
	me        int
	fullStyle bool
	withFaces bool
	logger    utils.Logger

	elements []ElementState
}

// NewBuilder creates a Builder for rank me, backed by reg, with numLocal
// pre-sized element slots.
func NewBuilder(reg *registry.Registry, me int, fullStyle, withFaces bool, numLocal int) *Builder {
	elements := make([]ElementState, numLocal)
	for i := range elements {
		for p := range elements[i].Slots {
			elements[i].Slots[p] = mesh.SentinelNode
		}
	}
	return &Builder{
		reg:       reg,
		me:        me,
		fullStyle: fullStyle,
		withFaces: withFaces,
		logger:    utils.GetGlobalLogger(),
		elements:  elements,
	}
}

// Elements returns the per-element state built so far, keyed by local
// element index.
func (b *Builder) Elements() []ElementState {
	return b.elements
}

func (b *Builder) isFullStyle(e mesh.Element) bool {
	return b.fullStyle
}

// OnVolume handles the per-leaf event (§4.1 "Volume event"). A full-style
// element gets a corner-codim center node; a half-style one (child-id 1 or
// 2) gets a face-codim center node; a plain code-0 element (child-id 0 or
// 3, not promoted) gets no center node at all — configTable's code-0 row
// has no PosCenter entry, so nothing downstream would ever resolve one.
func (b *Builder) OnVolume(localElement int32, e mesh.Element) {
	st := &b.elements[localElement]

	switch {
	case b.isFullStyle(e):
		st.Configuration = st.Configuration.PromoteToFull()
		b.emitCenter(localElement, mesh.CodimCorner)
	case e.ChildID == 1 || e.ChildID == 2:
		st.Configuration |= 1 << 4 // half-style bit; mirrors mesh.Configuration's unexported flag
		b.emitCenter(localElement, mesh.CodimFace)
	}
}

func (b *Builder) emitCenter(localElement int32, codim mesh.Codim) {
	st := &b.elements[localElement]
	id := b.reg.NewCandidate(codim)
	b.reg.AddContributor(id, registry.Contributor{
		Rank:         b.me,
		LocalElement: localElement,
		Position:     mesh.PosCenter,
	})
	st.Slots[mesh.PosCenter] = id
}

// OnFace handles boundary, conforming, and nonconforming face events
// (§4.1 "Face event").
func (b *Builder) OnFace(ev mesh.FaceEvent) {
	switch ev.Kind() {
	case mesh.FaceBoundary:
		b.onBoundaryFace(ev.Sides[0])
	case mesh.FaceConforming:
		b.onConformingFace(ev.Sides[0], ev.Sides[1])
	case mesh.FaceNonconforming:
		b.onNonconformingFace(ev.Sides[0], ev.Sides[1], ev.Sides[2])
	}
}

func (b *Builder) onBoundaryFace(side mesh.FaceSide) {
	if side.Ghost {
		return
	}
	st := &b.elements[side.Element]
	pos := int8(mesh.PosFace0 + side.FaceID)

	id := b.reg.NewCandidate(mesh.CodimFace)
	b.reg.AddContributor(id, registry.Contributor{Rank: side.Rank, LocalElement: side.Element, Position: pos})
	st.Slots[pos] = id
}

func (b *Builder) onConformingFace(a, bSide mesh.FaceSide) {
	id := b.reg.NewCandidate(mesh.CodimFace)

	for _, side := range [2]mesh.FaceSide{a, bSide} {
		pos := int8(mesh.PosFace0 + side.FaceID)
		b.reg.AddContributor(id, registry.Contributor{Rank: side.Rank, LocalElement: side.Element, Position: pos})
		if !side.Ghost {
			b.elements[side.Element].Slots[pos] = id
		}
		// A full-style element's element-face midpoints act as corners
		// (§4.2 code 17); recode the shared candidate accordingly if
		// either side claims it.
		if !side.Ghost && b.elements[side.Element].Configuration.FullStyle() {
			b.reg.Recode(id, mesh.CodimCorner)
		}
	}
}

// onNonconformingFace handles the hanging-face case (§4.1): large is the
// single coarse side, smallA/smallB are the two finer sides.
func (b *Builder) onNonconformingFace(large, smallA, smallB mesh.FaceSide) {
	// (i) The corner-codim node at the midpoint of the large face, which
	// is simultaneously a small-side corner.
	midID := b.reg.NewCandidate(mesh.CodimCorner)
	largePos := int8(mesh.PosFace0 + large.FaceID)
	b.reg.AddContributor(midID, registry.Contributor{Rank: large.Rank, LocalElement: large.Element, Position: largePos})

	for _, small := range [2]mesh.FaceSide{smallA, smallB} {
		cornerPos := int8(cornerTouchingLargeFace(small))
		b.reg.AddContributor(midID, registry.Contributor{Rank: small.Rank, LocalElement: small.Element, Position: cornerPos})
		if !small.Ghost {
			b.elements[small.Element].Slots[cornerPos] = midID
		}
	}
	if !large.Ghost {
		b.elements[large.Element].Slots[largePos] = midID
	}

	// The large element's split bit for this face is set. A half-style
	// element is first promoted to full-style; any other element keeps its
	// existing style bits.
	if !large.Ghost {
		st := &b.elements[large.Element]
		if st.Configuration.HalfStyle() {
			promoted := st.Configuration.PromoteToFull().WithFaceSplit(large.FaceID)
			st.Configuration = promoted
			// Re-tag the previously emitted center candidate in place
			// (§9 half-to-full promotion), located through the
			// element's slot-4 entry, preserving its contributor list.
			if centerID := st.Slots[mesh.PosCenter]; centerID != mesh.SentinelNode {
				b.reg.Recode(centerID, mesh.CodimCorner)
			}
			b.promoteFaceMidpointsToCorners(large.Element)
		} else {
			st.Configuration = st.Configuration.WithFaceSplit(large.FaceID)
		}
	}

	// (ii) if faces are included, the two half-face midpoints on the large
	// side and the corresponding midpoint on each small side.
	if b.withFaces {
		halves := mesh.SplitFaceHalfMidpoints[large.FaceID]
		centerPos := mesh.SplitFaceCenterMidpoint[large.FaceID]
		for i, small := range [2]mesh.FaceSide{smallA, smallB} {
			halfID := b.reg.NewCandidate(mesh.CodimFace)
			b.reg.AddContributor(halfID, registry.Contributor{Rank: large.Rank, LocalElement: large.Element, Position: int8(halves[i])})
			smallFacePos := int8(mesh.PosFace0 + small.FaceID)
			b.reg.AddContributor(halfID, registry.Contributor{Rank: small.Rank, LocalElement: small.Element, Position: smallFacePos})
			if !large.Ghost {
				b.elements[large.Element].Slots[halves[i]] = halfID
			}
			if !small.Ghost {
				b.elements[small.Element].Slots[smallFacePos] = halfID
			}
		}
		_ = centerPos // the split-face center midpoint coincides with midID geometrically; no separate candidate needed
	}

	// The small side's face-code records the hanging axis and child-id.
	axis := large.FaceID % 2
	for _, small := range [2]mesh.FaceSide{smallA, smallB} {
		if small.Ghost {
			continue
		}
		childID := small.ChildIDs[0]
		b.elements[small.Element].FaceCode = mesh.NewFaceCode(axis, childID)
	}
}

// cornerTouchingLargeFace returns the corner-position index of a small side
// that coincides with the large face's midpoint: by construction this is
// the corner closest to the hanging face, encoded in the small side's
// ChildIDs[0] entry by the forest's child-numbering convention.
func cornerTouchingLargeFace(small mesh.FaceSide) int {
	return int(small.ChildIDs[0]) % 4
}

// promoteFaceMidpointsToCorners recodes the already-emitted element-face
// midpoint candidates of a newly full-style element to corner-codim.
func (b *Builder) promoteFaceMidpointsToCorners(localElement int32) {
	st := &b.elements[localElement]
	for _, pos := range [4]int{mesh.PosFace0, mesh.PosFace1, mesh.PosFace2, mesh.PosFace3} {
		if id := st.Slots[pos]; id != mesh.SentinelNode {
			b.reg.Recode(id, mesh.CodimCorner)
		}
	}
}

// OnCorner handles a corner connection: every participating side
// contributes to a single corner-codim node (§4.1 "Corner event").
func (b *Builder) OnCorner(ev mesh.CornerEvent) {
	id := b.reg.NewCandidate(mesh.CodimCorner)
	for _, side := range ev.Sides {
		b.reg.AddContributor(id, registry.Contributor{
			Rank:         side.Rank,
			LocalElement: side.Element,
			Position:     int8(side.CornerID),
		})
		if !side.Ghost {
			b.elements[side.Element].Slots[side.CornerID] = id
		}
	}
}
