package flags

// ShaderKind is the modern shader block a legacy shader becomes.
type ShaderKind int

const (
	Effect ShaderKind = iota
	Lighting
	Sky
	Water
)

var shaderBlocks = map[ShaderKind]string{
	Effect:   "BSEffectShaderProperty",
	Lighting: "BSLightingShaderProperty",
	Sky:      "BSSkyShaderProperty",
	Water:    "BSWaterShaderProperty",
}

// Block returns the modern type tag of the shader kind.
func (k ShaderKind) Block() string { return shaderBlocks[k] }

func (k ShaderKind) String() string {
	switch k {
	case Lighting:
		return "lighting"
	case Sky:
		return "sky"
	case Water:
		return "water"
	default:
		return "effect"
	}
}

// Facts are the sibling-block observations the shader choice depends on.
type Facts struct {
	// Shader is the legacy shader type tag, empty when the shape has none.
	Shader string
	// Flags1 is the legacy first shader word.
	Flags1 uint32
	// AlphaBlend is set when a sibling alpha property has blending enabled.
	AlphaBlend bool
}

// Choice is the outcome of Choose.
type Choice struct {
	Kind ShaderKind
	// ZeroSpecular requests a specular strength of 0.
	ZeroSpecular bool
}

// Choose picks the destination shader kind. A blended, non-decal
// per-pixel-lit shader becomes an effect shader since a lighting shader
// cannot blend without a decal flag.
func Choose(f Facts) Choice {
	switch f.Shader {
	case "BSShaderNoLightingProperty":
		return Choice{Kind: Effect}
	case "BSShaderPPLightingProperty":
		decal := f.Flags1&(Legacy(Word1, "Decal_Single_Pass")|Legacy(Word1, "Dynamic_Decal_Single_Pass")) != 0
		if f.AlphaBlend && !decal {
			return Choice{Kind: Effect}
		}
		return Choice{Kind: Lighting, ZeroSpecular: true}
	case "TallGrassShaderProperty":
		return Choice{Kind: Lighting, ZeroSpecular: true}
	case "SkyShaderProperty":
		return Choice{Kind: Sky}
	case "WaterShaderProperty":
		return Choice{Kind: Water}
	}
	return Choice{Kind: Effect}
}

// AlphaFinalize returns the bits added once a shape's alpha property is
// known: lighting shaders that blend become decals, per-pixel shaders
// rendered as effect shaders gain effect lighting.
func AlphaFinalize(kind ShaderKind, legacyShader string, alphaBlend bool) (add1, add2 uint32, whiteEmissive bool) {
	if !alphaBlend {
		return 0, 0, false
	}
	switch {
	case kind == Lighting:
		return Modern(Word1, "Decal") | Modern(Word1, "Dynamic_Decal"), 0, false
	case kind == Effect && legacyShader == "BSShaderPPLightingProperty":
		return 0, Modern(Word2, "Effect_Lighting"), true
	}
	return 0, 0, false
}
