package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_CodeRoundTrip(t *testing.T) {
	for code := 0; code < NumConfigurations; code++ {
		c := ConfigurationFromCode(code)
		require.Equal(t, code, c.Code(), "code %d did not round-trip", code)
	}
}

func TestConfiguration_WireCode(t *testing.T) {
	for code := 0; code <= 16; code++ {
		c := ConfigurationFromCode(code)
		assert.Equal(t, code, c.WireCode())
	}
	full := ConfigurationFromCode(17)
	assert.Equal(t, ConfigFullStyleWire, full.WireCode())
}

func TestConfiguration_FaceSplitBitmask(t *testing.T) {
	for code := 1; code <= 15; code++ {
		c := ConfigurationFromCode(code)
		splitCount := 0
		for face := 0; face < 4; face++ {
			if c.FaceSplit(face) {
				splitCount++
			}
		}
		assert.Greater(t, splitCount, 0, "code %d should have at least one split face", code)
	}
}

func TestConfiguration_HalfAndFullStyle(t *testing.T) {
	half := ConfigurationFromCode(16)
	assert.True(t, half.HalfStyle())
	assert.False(t, half.FullStyle())

	full := ConfigurationFromCode(17)
	assert.True(t, full.FullStyle())
	assert.False(t, full.HalfStyle())

	zero := ConfigurationFromCode(0)
	assert.False(t, zero.HalfStyle())
	assert.False(t, zero.FullStyle())
}

func TestConfiguration_PromoteToFull(t *testing.T) {
	half := ConfigurationFromCode(16)
	promoted := half.PromoteToFull().WithFaceSplit(2)

	assert.True(t, promoted.FullStyle())
	assert.False(t, promoted.HalfStyle())
	assert.Equal(t, 17, promoted.Code())
}

func TestConfigTable_AllCodesHaveFourCorners(t *testing.T) {
	// Every configuration includes at least the four element corners
	// (§4.2: "four corners only" is the baseline code 0 and every other
	// code builds on it), except code 17 which adds five more corners.
	for code := 0; code < NumConfigurations; code++ {
		positions := Positions(code)
		cornerSet := map[int]bool{}
		for _, p := range positions {
			if p <= PosCorner3 {
				cornerSet[p] = true
			}
		}
		assert.Len(t, cornerSet, 4, "code %d should reference all four corners", code)
	}
}

func TestConfigTable_Code17HasNineCorners(t *testing.T) {
	assert.Equal(t, 9, CornerCount(17))
	assert.Contains(t, Positions(17), PosCenter)
	for _, f := range []int{PosFace0, PosFace1, PosFace2, PosFace3} {
		assert.Contains(t, Positions(17), f)
	}
}

func TestConfigTable_Code0IsDegenerate(t *testing.T) {
	assert.Equal(t, 4, CornerCount(0))
	assert.Equal(t, 0, FaceCount(0))
	assert.Len(t, Positions(0), 4)
}

func TestConfigTable_Code16HasCenterAsFaceNode(t *testing.T) {
	assert.Equal(t, 4, CornerCount(16))
	assert.Equal(t, 1, FaceCount(16))
	assert.Contains(t, Positions(16), PosCenter)
}

func TestCodim_String(t *testing.T) {
	assert.Equal(t, "face", CodimFace.String())
	assert.Equal(t, "corner", CodimCorner.String())
}

func TestFaceCode_PackUnpack(t *testing.T) {
	fc := NewFaceCode(1, 2)
	assert.Equal(t, 1, fc.HangingAxis())
	assert.Equal(t, uint8(2), fc.ChildID())
}
