package flags

// Vertex attributes of the modern packed vertex descriptor.
const (
	VertexPosition uint32 = 1 << iota
	VertexUV
	VertexUV2
	VertexNormal
	VertexTangent
	VertexColors
	VertexSkinned
	VertexLandData
	VertexEyeData
	_
	VertexFullPrecision
)

// VertexSource carries the legacy geometry facts that drive the descriptor.
type VertexSource struct {
	VectorFlags     uint32
	HasVertices     bool
	HasNormals      bool
	HasVertexColors bool
}

// VertexDesc derives the attribute set from legacy geometry data: vector
// flag bit 0 means UVs, bit 12 means tangents.
func VertexDesc(base uint32, s VertexSource) uint32 {
	desc := base
	if s.VectorFlags&1 != 0 {
		desc |= VertexUV
	}
	if s.VectorFlags&4096 != 0 {
		desc |= VertexTangent
	}
	if s.HasVertices {
		desc |= VertexPosition
	}
	if s.HasNormals {
		desc |= VertexNormal
	}
	if s.HasVertexColors {
		desc |= VertexColors
	}
	return desc
}

// VertexSize returns the packed byte size of one vertex with the given
// attributes: half-float position with a bitangent component, then one
// 4-byte group per optional attribute and 12 bytes of skinning.
func VertexSize(desc uint32) int {
	size := 0
	if desc&VertexPosition != 0 {
		size += 8
		if desc&VertexFullPrecision != 0 {
			size += 8
		}
	}
	for _, attr := range []uint32{VertexUV, VertexUV2, VertexNormal, VertexTangent, VertexColors} {
		if desc&attr != 0 {
			size += 4
		}
	}
	if desc&VertexSkinned != 0 {
		size += 12
	}
	return size
}
