package document

// Schema holds the type-inheritance table of one format version.
type Schema struct {
	Name    string
	parents map[string]string
}

// NewSchema builds a schema from child -> parent pairs.
func NewSchema(name string, parents map[string]string) *Schema {
	return &Schema{Name: name, parents: parents}
}

// Inherits reports whether typ is ancestor or derives from it. A nil
// schema only matches identical tags.
func (s *Schema) Inherits(typ, ancestor string) bool {
	seen := 0
	for t := typ; t != ""; {
		if t == ancestor {
			return true
		}
		if s == nil || seen > len(s.parents) {
			return false
		}
		t = s.parents[t]
		seen++
	}
	return false
}

// Known reports whether the schema declares typ.
func (s *Schema) Known(typ string) bool {
	if s == nil {
		return false
	}
	_, ok := s.parents[typ]
	return ok
}

const (
	VersionLegacy = "legacy"
	VersionModern = "modern"
)

// common object hierarchy shared by both versions.
var commonParents = map[string]string{
	"NiObject":    "",
	"NiObjectNET": "NiObject",
	"NiAVObject":  "NiObjectNET",
	"NiNode":      "NiAVObject",
	"BSFadeNode":  "NiNode",

	"BSOrderedNode":          "NiNode",
	"NiBillboardNode":        "NiNode",
	"BSValueNode":            "NiNode",
	"BSDamageStage":          "NiNode",
	"BSBlastNode":            "NiNode",
	"BSDebrisNode":           "NiNode",
	"BSMasterParticleSystem": "NiNode",
	"BSMultiBoundNode":       "NiNode",

	"BSMultiBound":     "NiObject",
	"BSMultiBoundData": "NiObject",
	"BSMultiBoundAABB": "BSMultiBoundData",
	"BSMultiBoundOBB":  "BSMultiBoundData",

	"NiProperty":      "NiObjectNET",
	"NiAlphaProperty": "NiProperty",

	"NiExtraData":                     "NiObject",
	"BSXFlags":                        "NiIntegerExtraData",
	"NiIntegerExtraData":              "NiExtraData",
	"NiStringExtraData":               "NiExtraData",
	"NiTextKeyExtraData":              "NiExtraData",
	"NiFloatExtraData":                "NiExtraData",
	"NiBinaryExtraData":               "NiExtraData",
	"BSBound":                         "NiExtraData",
	"BSWArray":                        "NiExtraData",
	"BSFurnitureMarker":               "NiExtraData",
	"BSDecalPlacementVectorExtraData": "NiFloatExtraData",

	"NiDynamicEffect": "NiAVObject",
	"NiLight":         "NiDynamicEffect",
	"NiAmbientLight":  "NiLight",
	"NiPointLight":    "NiLight",
	"NiCamera":        "NiAVObject",

	"NiTimeController":                 "NiObject",
	"NiInterpController":               "NiTimeController",
	"NiSingleInterpController":         "NiInterpController",
	"NiFloatInterpController":          "NiSingleInterpController",
	"NiPoint3InterpController":         "NiSingleInterpController",
	"NiBoolInterpController":           "NiSingleInterpController",
	"NiTransformController":            "NiSingleInterpController",
	"NiMultiTargetTransformController": "NiInterpController",
	"NiControllerManager":              "NiTimeController",
	"NiVisController":                  "NiBoolInterpController",
	"NiAlphaController":                "NiFloatInterpController",
	"NiFloatExtraDataController":       "NiFloatInterpController",
	"NiLightDimmerController":          "NiFloatInterpController",
	"NiLightColorController":           "NiPoint3InterpController",
	"NiGeomMorpherController":          "NiInterpController",
	"NiPSysModifierCtlr":               "NiSingleInterpController",
	"NiPSysEmitterCtlr":                "NiPSysModifierCtlr",
	"NiPSysUpdateCtlr":                 "NiTimeController",
	"NiPSysModifierActiveCtlr":         "NiPSysModifierCtlr",
	"NiPSysResetOnLoopCtlr":            "NiTimeController",
	"NiPSysGravityStrengthCtlr":        "NiPSysModifierCtlr",
	"NiPSysInitialRotAngleCtlr":        "NiPSysModifierCtlr",
	"NiPSysInitialRotSpeedCtlr":        "NiPSysModifierCtlr",
	"NiPSysInitialRotSpeedVarCtlr":     "NiPSysModifierCtlr",
	"NiPSysEmitterInitialRadiusCtlr":   "NiPSysModifierCtlr",
	"NiPSysEmitterLifeSpanCtlr":        "NiPSysModifierCtlr",
	"NiPSysEmitterPlanarAngleCtlr":     "NiPSysModifierCtlr",
	"NiPSysEmitterPlanarAngleVarCtlr":  "NiPSysModifierCtlr",
	"NiPSysEmitterDeclinationCtlr":     "NiPSysModifierCtlr",
	"NiPSysEmitterDeclinationVarCtlr":  "NiPSysModifierCtlr",
	"NiPSysEmitterSpeedCtlr":           "NiPSysModifierCtlr",
	"BSPSysMultiTargetEmitterCtlr":     "NiPSysModifierCtlr",
	"BSFrustumFOVController":           "NiFloatInterpController",
	"bhkBlendController":               "NiTimeController",

	"NiSequence":               "NiObject",
	"NiControllerSequence":     "NiSequence",
	"NiDefaultAVObjectPalette": "NiObject",

	"NiInterpolator":             "NiObject",
	"NiKeyBasedInterpolator":     "NiInterpolator",
	"NiFloatInterpolator":        "NiKeyBasedInterpolator",
	"NiPoint3Interpolator":       "NiKeyBasedInterpolator",
	"NiBoolInterpolator":         "NiKeyBasedInterpolator",
	"NiBoolTimelineInterpolator": "NiBoolInterpolator",
	"NiTransformInterpolator":    "NiKeyBasedInterpolator",
	"NiPathInterpolator":         "NiKeyBasedInterpolator",
	"NiLookAtInterpolator":       "NiInterpolator",
	"NiBlendInterpolator":        "NiInterpolator",

	"NiFloatData":     "NiObject",
	"NiPosData":       "NiObject",
	"NiBoolData":      "NiObject",
	"NiTransformData": "NiObject",
	"NiColorData":     "NiObject",

	"NiParticleSystem":      "NiAVObject",
	"BSStripParticleSystem": "NiParticleSystem",
	"NiPSysData":            "NiObject",
	"BSStripPSysData":       "NiPSysData",
	"NiPSysModifier":        "NiObject",
	"NiPSysColliderManager": "NiPSysModifier",
	"NiPSysColorModifier":   "NiPSysModifier",
	"NiPSysEmitter":         "NiPSysModifier",
	"NiPSysVolumeEmitter":   "NiPSysEmitter",
	"NiPSysBoxEmitter":      "NiPSysVolumeEmitter",
	"NiPSysCylinderEmitter": "NiPSysVolumeEmitter",
	"NiPSysSphereEmitter":   "NiPSysVolumeEmitter",
	"NiPSysMeshEmitter":     "NiPSysEmitter",

	"NiPSysAgeDeathModifier":        "NiPSysModifier",
	"NiPSysBoundUpdateModifier":     "NiPSysModifier",
	"NiPSysDragModifier":            "NiPSysModifier",
	"NiPSysGravityModifier":         "NiPSysModifier",
	"NiPSysGrowFadeModifier":        "NiPSysModifier",
	"NiPSysPositionModifier":        "NiPSysModifier",
	"NiPSysRotationModifier":        "NiPSysModifier",
	"NiPSysSpawnModifier":           "NiPSysModifier",
	"NiPSysBombModifier":            "NiPSysModifier",
	"BSPSysSimpleColorModifier":     "NiPSysModifier",
	"BSPSysLODModifier":             "NiPSysModifier",
	"BSPSysScaleModifier":           "NiPSysModifier",
	"BSPSysInheritVelocityModifier": "NiPSysModifier",
	"BSPSysRecycleBoundModifier":    "NiPSysModifier",
	"BSPSysSubTexModifier":          "NiPSysModifier",
	"BSPSysStripUpdateModifier":     "NiPSysModifier",
	"BSWindModifier":                "NiPSysModifier",

	"NiPSysCollider":          "NiObject",
	"NiPSysSphericalCollider": "NiPSysCollider",
	"NiPSysPlanarCollider":    "NiPSysCollider",

	"NiCollisionObject":       "NiObject",
	"bhkNiCollisionObject":    "NiCollisionObject",
	"bhkCollisionObject":      "bhkNiCollisionObject",
	"bhkBlendCollisionObject": "bhkCollisionObject",
	"bhkSPCollisionObject":    "bhkNiCollisionObject",
	"bhkWorldObject":          "NiObject",
	"bhkEntity":               "bhkWorldObject",
	"bhkRigidBody":            "bhkEntity",
	"bhkRigidBodyT":           "bhkRigidBody",
	"bhkShape":                "NiObject",
	"bhkSphereRepShape":       "bhkShape",
	"bhkConvexShape":          "bhkSphereRepShape",
	"bhkSphereShape":          "bhkConvexShape",
	"bhkBoxShape":             "bhkConvexShape",
	"bhkCapsuleShape":         "bhkConvexShape",
	"bhkConvexVerticesShape":  "bhkConvexShape",
	"bhkTransformShape":       "bhkShape",
	"bhkConvexTransformShape": "bhkTransformShape",
	"bhkListShape":            "bhkShape",
	"bhkMoppBvTreeShape":      "bhkShape",

	"bhkPhantom":            "bhkWorldObject",
	"bhkShapePhantom":       "bhkPhantom",
	"bhkSimpleShapePhantom": "bhkShapePhantom",

	"bhkSerializable":           "NiObject",
	"bhkConstraint":             "bhkSerializable",
	"bhkLimitedHingeConstraint": "bhkConstraint",
	"bhkRagdollConstraint":      "bhkConstraint",
	"bhkHingeConstraint":        "bhkConstraint",
	"bhkMalleableConstraint":    "bhkConstraint",
	"bhkPrismaticConstraint":    "bhkConstraint",
	"bhkBreakableConstraint":    "bhkConstraint",
	"bhkStiffSpringConstraint":  "bhkConstraint",
	"bhkAction":                 "bhkSerializable",
	"bhkOrientHingedBodyAction": "bhkAction",
	"bhkLiquidAction":           "bhkAction",
}

var legacyParents = map[string]string{
	"NiGeometry":          "NiAVObject",
	"NiTriBasedGeom":      "NiGeometry",
	"NiTriShape":          "NiTriBasedGeom",
	"NiTriStrips":         "NiTriBasedGeom",
	"BSSegmentedTriShape": "NiTriShape",

	"NiGeometryData":     "NiObject",
	"NiTriBasedGeomData": "NiGeometryData",
	"NiTriShapeData":     "NiTriBasedGeomData",
	"NiTriStripsData":    "NiTriBasedGeomData",

	"NiSkinInstance":          "NiObject",
	"BSDismemberSkinInstance": "NiSkinInstance",
	"NiSkinData":              "NiObject",
	"NiSkinPartition":         "NiObject",

	"BSShaderProperty":           "NiProperty",
	"BSShaderLightingProperty":   "BSShaderProperty",
	"BSShaderPPLightingProperty": "BSShaderLightingProperty",
	"BSShaderNoLightingProperty": "BSShaderLightingProperty",
	"TileShaderProperty":         "BSShaderLightingProperty",
	"TallGrassShaderProperty":    "BSShaderProperty",
	"SkyShaderProperty":          "BSShaderLightingProperty",
	"WaterShaderProperty":        "BSShaderProperty",
	"BSShaderTextureSet":         "NiObject",
	"NiMaterialProperty":         "NiProperty",
	"NiTexturingProperty":        "NiProperty",
	"NiStencilProperty":          "NiProperty",
	"NiSourceTexture":            "NiObject",

	"bhkNiTriStripsShape":       "bhkShape",
	"bhkPackedNiTriStripsShape": "bhkShape",

	"NiMaterialColorController":         "NiPoint3InterpController",
	"BSMaterialEmittanceMultController": "NiFloatInterpController",
	"BSRefractionFirePeriodController":  "NiTimeController",
	"BSRefractionStrengthController":    "NiFloatInterpController",
	"NiTextureTransformController":      "NiFloatInterpController",
	"NiBSBoneLODController":             "NiTimeController",
}

var modernParents = map[string]string{
	"BSTriShape":         "NiAVObject",
	"BSSubIndexTriShape": "BSTriShape",
	"BSMeshLODTriShape":  "BSTriShape",
	"NiTriShape":         "NiAVObject",
	"NiTriShapeData":     "NiObject",

	"BSSkin::Instance": "NiObject",
	"BSSkin::BoneData": "NiObject",

	"BSShaderProperty":         "NiProperty",
	"BSLightingShaderProperty": "BSShaderProperty",
	"BSEffectShaderProperty":   "BSShaderProperty",
	"BSSkyShaderProperty":      "BSShaderProperty",
	"BSWaterShaderProperty":    "BSShaderProperty",
	"BSShaderTextureSet":       "NiObject",

	"BSEffectShaderPropertyFloatController":   "NiFloatInterpController",
	"BSEffectShaderPropertyColorController":   "NiPoint3InterpController",
	"BSLightingShaderPropertyFloatController": "NiFloatInterpController",
	"BSLightingShaderPropertyColorController": "NiPoint3InterpController",

	"BSFurnitureMarkerNode": "BSFurnitureMarker",
}

func merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// LegacySchema returns the inheritance table of the source format.
func LegacySchema() *Schema {
	return NewSchema(VersionLegacy, merge(commonParents, legacyParents))
}

// ModernSchema returns the inheritance table of the destination format.
func ModernSchema() *Schema {
	return NewSchema(VersionModern, merge(commonParents, modernParents))
}

// SchemaFor maps a version tag to its schema, nil when unknown.
func SchemaFor(version string) *Schema {
	switch version {
	case VersionLegacy:
		return LegacySchema()
	case VersionModern:
		return ModernSchema()
	}
	return nil
}
