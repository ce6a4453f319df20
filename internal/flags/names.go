package flags

// Bit names of the four shader flag words, indexed by bit position.
var (
	legacy1 = [32]string{
		"Specular", "Skinned", "LowDetail", "Vertex_Alpha",
		"Unknown_1", "Single_Pass", "Empty", "Environment_Mapping",
		"Alpha_Texture", "Unknown_2", "FaceGen", "Parallax_Shader_Index_15",
		"Unknown_3", "Non_Projective_Shadows", "Unknown_4", "Refraction",
		"Fire_Refraction", "Eye_Environment_Mapping", "Hair", "Dynamic_Alpha",
		"Localmap_Hide_Secret", "Window_Environment_Mapping", "Tree_Billboard", "Shadow_Frustum",
		"Multiple_Textures", "Remappable_Textures", "Decal_Single_Pass", "Dynamic_Decal_Single_Pass",
		"Parallax_Occulsion", "External_Emittance", "Shadow_Map", "ZBuffer_Test",
	}
	legacy2 = [32]string{
		"ZBuffer_Write", "LOD_Landscape", "LOD_Building", "No_Fade",
		"Refraction_Tint", "Vertex_Colors", "Unknown1", "1st_Light_is_Point_Light",
		"2nd_Light", "3rd_Light", "Vertex_Lighting", "Uniform_Scale",
		"Fit_Slope", "Billboard_and_Envmap_Light_Fade", "No_LOD_Land_Blend", "Envmap_Light_Fade",
		"Wireframe", "VATS_Selection", "Show_in_Local_Map", "Premult_Alpha",
		"Skip_Normal_Maps", "Alpha_Decal", "No_Transparecny_Multisampling", "Unknown2",
		"Unknown3", "Unknown4", "Unknown5", "Unknown6",
		"Unknown7", "Unknown8", "Unknown9", "Unknown10",
	}
	modern1 = [32]string{
		"Specular", "Skinned", "Temp_Refraction", "Vertex_Alpha",
		"GreyscaleToPalette_Color", "GreyscaleToPalette_Alpha", "Use_Falloff", "Environment_Mapping",
		"RGB_Falloff", "Cast_Shadows", "Face", "UI_Mask_Rects",
		"Model_Space_Normals", "Non_Projective_Shadows", "Landscape", "Refraction",
		"Fire_Refraction", "Eye_Environment_Mapping", "Hair", "Screendoor_Alpha_Fade",
		"Localmap_Hide_Secret", "Skin_Tint", "Own_Emit", "Projected_UV",
		"Multiple_Textures", "Tessellate", "Decal", "Dynamic_Decal",
		"Character_Lighting", "External_Emittance", "Soft_Effect", "ZBuffer_Test",
	}
	modern2 = [32]string{
		"ZBuffer_Write", "LOD_Landscape", "LOD_Objects", "No_Fade",
		"Double_Sided", "Vertex_Colors", "Glowmap", "Transform_Changed",
		"Dismemberment_Meatcuff", "Tint", "Grass_Vertex_Lighting", "Grass_Uniform_Scale",
		"Grass_Fit_Slope", "Grass_Billboard", "No_LOD_Land_Blend", "Dismemberment",
		"Wireframe", "Weapon_Blood", "Hide_On_Local_Map", "Premult_Alpha",
		"VATS_Target", "Anisotropic_Lighting", "Skew_Specular_Alpha", "Menu_Screen",
		"Multi_Layer_Parallax", "Alpha_Test", "Gradient_Remap", "VATS_Target_Draw_All",
		"Pipboy_Screen", "Tree_Anim", "Effect_Lighting", "Refraction_Writes_Depth",
	}
)

// Word selects one of the two 32-bit flag fields of a shader.
type Word int

const (
	Word1 Word = 1
	Word2 Word = 2
)

// Field returns the block field name holding the word.
func (w Word) Field(modern bool) string {
	switch {
	case !modern && w == Word1:
		return "Shader Flags"
	case !modern:
		return "Shader Flags 2"
	case w == Word1:
		return "Shader Flags 1"
	default:
		return "Shader Flags 2"
	}
}

func lookup(table *[32]string, name string) uint32 {
	for i, n := range table {
		if n == name {
			return 1 << uint(i)
		}
	}
	panic("flags: unknown bit " + name)
}

// Legacy returns the mask of a named legacy bit. Unknown names panic.
func Legacy(w Word, name string) uint32 {
	if w == Word1 {
		return lookup(&legacy1, name)
	}
	return lookup(&legacy2, name)
}

// Modern returns the mask of a named modern bit. Unknown names panic.
func Modern(w Word, name string) uint32 {
	if w == Word1 {
		return lookup(&modern1, name)
	}
	return lookup(&modern2, name)
}

// Names lists the names of the bits set in a modern word.
func Names(w Word, bits uint32) []string {
	table := &modern1
	if w == Word2 {
		table = &modern2
	}
	var out []string
	for i, n := range table {
		if bits&(1<<uint(i)) != 0 {
			out = append(out, n)
		}
	}
	return out
}
