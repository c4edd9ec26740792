package mesh

// Configuration is the 6-bit per-element code of §3: bits 0..3 mark which of
// the four element-faces are split by a smaller neighbor, bit 4 is the
// half-style center flag (child-id 1 or 2), bit 5 is the full-style flag
// (center and the four element-face midpoints act as corners).
type Configuration uint8

const (
	configFaceSplitMask = 0x0F
	configHalfStyleBit  = 1 << 4
	configFullStyleBit  = 1 << 5
)

// NumConfigurations is the size of the valid configuration-code space
// (§4.2): code 0, codes 1..15 (face-split bitmasks), code 16 (half-style),
// code 17 (full-style).
const NumConfigurations = 18

// ConfigFullStyleWire is the external wire-format sentinel for the
// full-style variant (§6 "Outputs": "code 32 is the sentinel representation
// of the full-style variant (code 17 in the table)").
const ConfigFullStyleWire = 32

// FaceSplit reports whether element-face faceID (0..3) is split by a
// smaller neighbor.
func (c Configuration) FaceSplit(faceID int) bool {
	return c&(1<<uint(faceID)) != 0
}

// WithFaceSplit returns c with element-face faceID marked split.
func (c Configuration) WithFaceSplit(faceID int) Configuration {
	return c | Configuration(1<<uint(faceID))
}

// HalfStyle reports whether bit 4 (half-style center) is set.
func (c Configuration) HalfStyle() bool {
	return c&configHalfStyleBit != 0
}

// FullStyle reports whether bit 5 (full-style center) is set.
func (c Configuration) FullStyle() bool {
	return c&configFullStyleBit != 0
}

// PromoteToFull clears the half-style bit and sets full-style instead,
// keeping any face-split bits already set — the re-tagging §9's "half-to-full promotion" design
// note requires when a half-style element is encountered from a
// nonconforming face's large side.
//
// Per §4.1, promotion happens alongside setting the triggering face's
// split bit, so callers set that bit on the returned value.
func (c Configuration) PromoteToFull() Configuration {
	return (c &^ configHalfStyleBit) | configFullStyleBit
}

// Code returns the canonical 0..17 configuration-table index for c.
func (c Configuration) Code() int {
	switch {
	case c.FullStyle():
		return 17
	case c.HalfStyle():
		return 16
	default:
		return int(c & configFaceSplitMask)
	}
}

// WireCode returns the external §6 "Outputs" representation: codes 0..16
// pass through unchanged, code 17 (full-style) is remapped to the sentinel
// 32.
func (c Configuration) WireCode() int {
	code := c.Code()
	if code == 17 {
		return ConfigFullStyleWire
	}
	return code
}

// ConfigurationFromCode constructs a Configuration from a canonical 0..17
// table index, the inverse of Code.
func ConfigurationFromCode(code int) Configuration {
	switch {
	case code == 17:
		return Configuration(configFullStyleBit)
	case code == 16:
		return Configuration(configHalfStyleBit)
	default:
		return Configuration(code) & configFaceSplitMask
	}
}

// configEntry is one row of the two lookup tables required by §4.2: how
// many corner-codim and face-codim nodes the element contributes, and the
// padded list of node-position indices (with_faces=true schema; the
// with_faces=false caller simply ignores positions >= VNoFaces) in
// canonical order.
type configEntry struct {
	cornerCount int
	faceCount   int
	positions   []int
}

// configTable is indexed by Configuration.Code() and must be reproduced
// verbatim (§4.2). It is built once in init from the position-index schema
// of §6 rather than hand-enumerated, so that a transcription error in one
// place cannot silently diverge from the schema the rest of the package
// uses.
var configTable [NumConfigurations]configEntry

func init() {
	corners := []int{PosCorner0, PosCorner1, PosCorner2, PosCorner3}
	faceMid := []int{PosFace0, PosFace1, PosFace2, PosFace3}

	// Code 0: four corners only, no split, no center node.
	configTable[0] = configEntry{
		cornerCount: 4,
		faceCount:   0,
		positions:   append([]int{}, corners...),
	}

	// Codes 1..15: bitmask of split faces. The element still contributes
	// its four corners as corner-codim nodes and its non-split-adjacent
	// face midpoints as face-codim nodes; split faces contribute their
	// nonconforming-side nodes via the face event itself (§4.1), not here.
	for code := 1; code <= 15; code++ {
		positions := append([]int{}, corners...)
		faceCount := 0
		for faceID := 0; faceID < 4; faceID++ {
			if Configuration(code).FaceSplit(faceID) {
				continue
			}
			positions = append(positions, faceMid[faceID])
			faceCount++
		}
		configTable[code] = configEntry{
			cornerCount: 4,
			faceCount:   faceCount,
			positions:   positions,
		}
	}

	// Code 16: half-style variant of code 0. Identical corner set plus the
	// center, a face-codim node (emitted by the volume event, §4.1) that
	// this table counts as the element's one face-codim node; half-style
	// elements have no split faces by definition.
	configTable[16] = configEntry{
		cornerCount: 4,
		faceCount:   1, // the center, counted as this element's one face-codim contribution
		positions:   append(append([]int{}, corners...), PosCenter),
	}

	// Code 17: full-style variant of code 0. Center and all four
	// element-face midpoints are corners.
	full := append([]int{}, corners...)
	full = append(full, PosCenter)
	full = append(full, faceMid...)
	configTable[17] = configEntry{
		cornerCount: 9,
		faceCount:   0,
		positions:   full,
	}
}

// CornerCount returns the number of corner-codim nodes configuration code
// (0..17) contributes.
func CornerCount(code int) int { return configTable[code].cornerCount }

// FaceCount returns the number of face-codim nodes configuration code
// (0..17) contributes (excluding nodes added later by a face event itself).
func FaceCount(code int) int { return configTable[code].faceCount }

// Positions returns the padded, canonically ordered list of node-position
// indices configuration code (0..17) populates. The caller truncates to
// positions < VNoFaces when with_faces=false.
func Positions(code int) []int {
	return configTable[code].positions
}
