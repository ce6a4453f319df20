package controller

import (
	"strings"

	"github.com/specialistvlad/nifconv/internal/document"
)

// Shader families a property controller can drive.
const (
	Effect   = "Effect"
	Lighting = "Lighting"
)

// ShaderOf returns the shader family of a destination shader property or
// shader controller type, or "" when typ belongs to neither.
func ShaderOf(typ string) string {
	switch {
	case strings.HasPrefix(typ, "BSEffectShaderProperty"):
		return Effect
	case strings.HasPrefix(typ, "BSLightingShaderProperty"):
		return Lighting
	}
	return ""
}

// controlled variable and colour values of the modern shader controllers.
var (
	lightingVariables = map[string]uint64{
		"Refraction Strength":   0,
		"Environment Map Scale": 8,
		"Glossiness":            9,
		"Specular Strength":     10,
		"Emissive Multiple":     11,
		"Alpha":                 12,
		"U Offset":              20,
		"U Scale":               21,
		"V Offset":              22,
		"V Scale":               23,
	}
	effectVariables = map[string]uint64{
		"EmissiveMultiple":      0,
		"Falloff Start Angle":   1,
		"Falloff Stop Angle":    2,
		"Falloff Start Opacity": 3,
		"Falloff Stop Opacity":  4,
		"Alpha Transparency":    5,
		"U Offset":              6,
		"U Scale":               7,
		"V Offset":              8,
		"V Scale":               9,
	}
	lightingColors = map[string]uint64{"Specular Color": 0, "Emissive Color": 1}
	effectColors   = map[string]uint64{"Emissive Color": 0}
)

// VariableValue returns the numeric controlled-variable value of option for
// a shader family.
func VariableValue(shader, option string) (uint64, bool) {
	table := effectVariables
	if shader == Lighting {
		table = lightingVariables
	}
	v, ok := table[option]
	return v, ok
}

// ColorValue returns the numeric controlled-colour value of option for a
// shader family.
func ColorValue(shader, option string) (uint64, bool) {
	table := effectColors
	if shader == Lighting {
		table = lightingColors
	}
	v, ok := table[option]
	return v, ok
}

// texture transform operations of the legacy controller.
var transformOps = map[string]int64{
	"TT_TRANSLATE_U": 0,
	"TT_TRANSLATE_V": 1,
	"TT_ROTATE":      2,
	"TT_SCALE_U":     3,
	"TT_SCALE_V":     4,
}

// transformTargets maps a legacy transform operation to the controlled
// variable option of the shader controller.
var transformTargets = map[int64]string{
	0: "U Offset",
	1: "V Offset",
	3: "U Scale",
	4: "V Scale",
}

// Exact lists the controller types copied field for field.
var Exact = []string{
	"NiMultiTargetTransformController",
	"NiControllerManager",
	"NiTransformController",
	"NiPSysModifierActiveCtlr",
	"NiPSysEmitterCtlr",
	"NiPSysUpdateCtlr",
	"NiPSysEmitterInitialRadiusCtlr",
	"NiVisController",
	"NiPSysGravityStrengthCtlr",
	"NiPSysInitialRotAngleCtlr",
	"NiPSysInitialRotSpeedVarCtlr",
	"NiPSysInitialRotSpeedCtlr",
	"NiPSysEmitterLifeSpanCtlr",
	"NiPSysEmitterPlanarAngleVarCtlr",
	"NiPSysEmitterPlanarAngleCtlr",
	"NiPSysEmitterDeclinationVarCtlr",
	"NiPSysEmitterDeclinationCtlr",
	"NiPSysEmitterSpeedCtlr",
	"NiFloatExtraDataController",
	"NiLightDimmerController",
	"NiLightColorController",
	"bhkBlendController",
	"BSPSysMultiTargetEmitterCtlr",
	"BSFrustumFOVController",
	"NiPSysResetOnLoopCtlr",
}

type action int

const (
	actMap action = iota
	actExact
	actSkip // drop this controller, keep walking its chain
	actDrop // drop this controller and everything below it
)

// plan is the conversion decided for one source controller.
type plan struct {
	action  action
	block   string // destination type for actMap
	field   string // "Type of Controlled Variable" or "... Color"
	value   uint64
	warning string
	shader  string
	allowed bool
}

func enumOrdinal(v document.Value, names map[string]int64) (int64, bool) {
	if v.Kind.IsTextual() {
		n, ok := names[v.S]
		return n, ok
	}
	return v.I, true
}

// decide picks the conversion of controller ctl hanging off a destination
// owner of type ownerType.
func decide(src document.Reader, ctl int, ownerType string) (plan, error) {
	typ := src.TypeName(ctl)
	shader := ShaderOf(ownerType)

	float := func(shader, effect, lighting string) (plan, error) {
		if shader == "" {
			return plan{}, unknownShader(ownerType, typ)
		}
		option := effect
		if shader == Lighting {
			option = lighting
		}
		v, _ := VariableValue(shader, option)
		return plan{
			action: actMap,
			block:  "BS" + shader + "ShaderPropertyFloatController",
			field:  "Type of Controlled Variable",
			value:  v,
			shader: shader,
		}, nil
	}
	color := func(option string) (plan, error) {
		if shader == "" {
			return plan{}, unknownShader(ownerType, typ)
		}
		v, ok := ColorValue(shader, option)
		if !ok {
			return plan{}, unknownShader(ownerType, typ)
		}
		return plan{
			action: actMap,
			block:  "BS" + shader + "ShaderPropertyColorController",
			field:  "Type of Controlled Color",
			value:  v,
			shader: shader,
		}, nil
	}

	switch typ {
	case "NiMaterialColorController":
		target, _ := src.Value(ctl, "Target Color")
		if n, _ := enumOrdinal(target, map[string]int64{"TC_AMBIENT": 0, "TC_DIFFUSE": 1, "TC_SPECULAR": 2, "TC_SELF_ILLUM": 3}); n == 2 {
			if shader == Effect {
				return plan{action: actSkip}, nil
			}
			return color("Specular Color")
		}
		return color("Emissive Color")
	case "BSMaterialEmittanceMultController":
		return float(shader, "EmissiveMultiple", "Emissive Multiple")
	case "NiAlphaController":
		return float(shader, "Alpha Transparency", "Alpha")
	case "BSRefractionFirePeriodController":
		return float(Lighting, "", "U Offset")
	case "BSRefractionStrengthController":
		return float(Lighting, "", "Refraction Strength")
	case "NiTextureTransformController":
		op, _ := src.Value(ctl, "Operation")
		n, ok := enumOrdinal(op, transformOps)
		if shader == "" {
			return plan{}, unknownShader(ownerType, typ)
		}
		p := plan{
			action: actMap,
			block:  "BS" + shader + "ShaderPropertyFloatController",
			field:  "Type of Controlled Variable",
			value:  uint64(n),
			shader: shader,
		}
		if option, mapped := transformTargets[n]; ok && mapped {
			p.value, _ = VariableValue(shader, option)
		} else {
			p.warning = "texture transform operation has no shader counterpart"
		}
		return p, nil
	case "NiGeomMorpherController", "NiBSBoneLODController":
		return plan{action: actDrop}, nil
	}

	p := plan{action: actExact}
	for _, t := range Exact {
		if t == typ {
			p.allowed = true
			break
		}
	}
	return p, nil
}
