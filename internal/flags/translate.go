// Package flags translates legacy shader option bitfields into the modern
// vocabulary and decides which modern shader block a legacy shader becomes.
//
// Translate is a pure function of its inputs: every destination bit is
// derived from the two source words only, never from another destination
// bit, so rows can be evaluated in any order.
package flags

// BitRef names a bit in one of the legacy words.
type BitRef struct {
	Word Word
	Name string
}

func (b BitRef) set(in Input) bool {
	src := in.Flags1
	if b.Word == Word2 {
		src = in.Flags2
	}
	return src&Legacy(b.Word, b.Name) != 0
}

// Row maps one destination bit. Exactly one of Src, Either or Pred is set.
type Row struct {
	Word Word
	Dst  string
	// Src names a legacy bit in the same word.
	Src string
	// Either sets the bit when any of two legacy bits is set.
	Either []BitRef
	// Pred derives the bit from both legacy words.
	Pred func(f1, f2 uint32) bool
}

func same(w Word, name string) Row        { return Row{Word: w, Dst: name, Src: name} }
func renamed(w Word, dst, src string) Row { return Row{Word: w, Dst: dst, Src: src} }
func either(w Word, dst string, a, b BitRef) Row {
	return Row{Word: w, Dst: dst, Either: []BitRef{a, b}}
}

// Table is the complete legacy to modern shader flag mapping.
var Table = []Row{
	same(Word1, "Specular"),
	same(Word1, "Skinned"),
	same(Word1, "Vertex_Alpha"),
	renamed(Word1, "GreyscaleToPalette_Color", "Unknown_1"),
	renamed(Word1, "GreyscaleToPalette_Alpha", "Single_Pass"),
	same(Word1, "Environment_Mapping"),
	renamed(Word1, "Cast_Shadows", "Unknown_2"),
	renamed(Word1, "Face", "FaceGen"),
	renamed(Word1, "Model_Space_Normals", "Unknown_3"),
	same(Word1, "Non_Projective_Shadows"),
	renamed(Word1, "Landscape", "Unknown_4"),
	same(Word1, "Refraction"),
	same(Word1, "Fire_Refraction"),
	same(Word1, "Eye_Environment_Mapping"),
	same(Word1, "Hair"),
	renamed(Word1, "Screendoor_Alpha_Fade", "Dynamic_Alpha"),
	same(Word1, "Localmap_Hide_Secret"),
	same(Word1, "Multiple_Textures"),
	either(Word1, "Decal", BitRef{Word1, "Decal_Single_Pass"}, BitRef{Word2, "Alpha_Decal"}),
	renamed(Word1, "Dynamic_Decal", "Dynamic_Decal_Single_Pass"),
	same(Word1, "External_Emittance"),
	same(Word1, "ZBuffer_Test"),

	same(Word2, "ZBuffer_Write"),
	same(Word2, "LOD_Landscape"),
	renamed(Word2, "LOD_Objects", "LOD_Building"),
	same(Word2, "No_Fade"),
	same(Word2, "Vertex_Colors"),
	renamed(Word2, "Grass_Vertex_Lighting", "Vertex_Lighting"),
	renamed(Word2, "Grass_Uniform_Scale", "Uniform_Scale"),
	renamed(Word2, "Grass_Fit_Slope", "Fit_Slope"),
	renamed(Word2, "Grass_Billboard", "Billboard_and_Envmap_Light_Fade"),
	same(Word2, "No_LOD_Land_Blend"),
	same(Word2, "Wireframe"),
	{Word: Word2, Dst: "Hide_On_Local_Map", Pred: func(_, f2 uint32) bool {
		return f2&Legacy(Word2, "Show_in_Local_Map") == 0
	}},
	same(Word2, "Premult_Alpha"),
}

// Input is the pair of legacy shader words.
type Input struct {
	Flags1 uint32
	Flags2 uint32
}

// Output is the translated pair plus the facts the rest of the conversion
// needs from the legacy words.
type Output struct {
	Flags1 uint32
	Flags2 uint32
	// EnvironmentMap requests the "Environment Map" shader type.
	EnvironmentMap bool
	LODLandscape   bool
	LODBuilding    bool
}

func (r Row) eval(in Input) bool {
	switch {
	case r.Pred != nil:
		return r.Pred(in.Flags1, in.Flags2)
	case len(r.Either) > 0:
		for _, b := range r.Either {
			if b.set(in) {
				return true
			}
		}
		return false
	}
	return BitRef{r.Word, r.Src}.set(in)
}

// Translate maps legacy words onto a destination shader of the given kind.
// Effect shaders always gain Use_Falloff and Double_Sided.
func Translate(in Input, kind ShaderKind) Output {
	var out Output
	for _, row := range Table {
		if !row.eval(in) {
			continue
		}
		if row.Word == Word1 {
			out.Flags1 |= Modern(Word1, row.Dst)
		} else {
			out.Flags2 |= Modern(Word2, row.Dst)
		}
	}
	if kind == Effect {
		out.Flags1 |= Modern(Word1, "Use_Falloff")
		out.Flags2 |= Modern(Word2, "Double_Sided")
	}
	out.EnvironmentMap = in.Flags1&Legacy(Word1, "Environment_Mapping") != 0
	out.LODLandscape = in.Flags2&Legacy(Word2, "LOD_Landscape") != 0
	out.LODBuilding = in.Flags2&Legacy(Word2, "LOD_Building") != 0
	return out
}

// ModelSpaceNormals reports whether a strip shape without tangents needs
// Model_Space_Normals (legacy vector flag bit 12 clear).
func ModelSpaceNormals(vectorFlags uint32) bool {
	return vectorFlags&(1<<12) == 0
}
