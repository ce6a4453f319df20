package enummap

const (
	matPrefix    = "FO_HAV_MAT_"
	modernPrefix = "FO4_HAV_MAT_"
)

// Material bases in legacy order; each also exists as _PLATFORM, _STAIRS
// and _STAIRS_PLATFORM variants.
var materialBases = []Pair{
	{"STONE", "STONE"},
	{"CLOTH", "CLOTH"},
	{"DIRT", "DIRT"},
	{"GLASS", "GLASS"},
	{"GRASS", "GRASS"},
	{"METAL", "METAL"},
	{"ORGANIC", "ORGANIC"},
	{"SKIN", "SKIN"},
	{"WATER", "WATER"},
	{"WOOD", "WOOD"},
	{"HEAVY_STONE", "STONE_HEAVY"},
	{"HEAVY_METAL", "METAL_HEAVY"},
	{"HEAVY_WOOD", "WOOD_HEAVY"},
	{"CHAIN", "CHAIN"},
	{"BOTTLECAP", "COIN"},
	{"ELEVATOR", "GENERIC"},
	{"HOLLOW_METAL", "METAL_HOLLOW"},
	{"SHEET_METAL", "METAL_LIGHT"},
	{"SAND", "SAND"},
	{"BROKEN_CONCRETE", "CONCRETE"},
	{"VEHICLE_BODY", "METAL"},
	{"VEHICLE_PART_SOLID", "METAL_SOLID"},
	{"VEHICLE_PART_HOLLOW", "METAL_HOLLOW"},
	{"BARREL", "METAL_BARREL"},
	{"BOTTLE", "BOTTLE"},
	{"SODA_CAN", "GENERIC"},
	{"PISTOL", "WEAPON_PISTOL"},
	{"RIFLE", "WEAPON_RIFLE"},
	{"SHOPPING_CART", "GENERIC"},
	{"LUNCHBOX", "GENERIC"},
	{"BABY_RATTLE", "GENERIC"},
	{"RUBBER_BALL", "GENERIC"},
}

// Stair variants with a dedicated modern material.
var stairs = map[string]string{
	"STONE": "STONE_STAIRS",
	"DIRT":  "DIRT_STAIRS",
	"GLASS": "GLASS_STAIRS",
	"GRASS": "GRASS_STAIRS",
	"WOOD":  "WOOD_STAIRS",
}

var stairsPlatform = map[string]string{
	"HEAVY_WOOD": "WOOD_STAIRS",
	"BOTTLECAP":  "GENERIC",
}

// HavokMaterial maps legacy Havok materials onto modern ones. Legacy
// materials without a modern counterpart become GENERIC.
func HavokMaterial() *Map {
	var pairs []Pair
	add := func(from, to string) {
		pairs = append(pairs, Pair{matPrefix + from, modernPrefix + to})
	}
	for _, b := range materialBases {
		add(b.From, b.To)
	}
	for _, b := range materialBases {
		add(b.From+"_PLATFORM", b.To)
	}
	for _, b := range materialBases {
		to := b.To
		if s, ok := stairs[b.From]; ok {
			to = s
		}
		add(b.From+"_STAIRS", to)
	}
	for _, b := range materialBases {
		to := b.To
		if s, ok := stairs[b.From]; ok {
			to = s
		}
		if s, ok := stairsPlatform[b.From]; ok {
			to = s
		}
		add(b.From+"_STAIRS_PLATFORM", to)
	}
	return New("havok_material", pairs...)
}

var layers = []Pair{
	{"FOL_UNIDENTIFIED", "FO4L_UNIDENTIFIED"},
	{"FOL_STATIC", "FO4L_STATIC"},
	{"FOL_ANIM_STATIC", "FO4L_ANIMSTATIC"},
	{"FOL_TRANSPARENT", "FO4L_TRANSPARENT"},
	{"FOL_CLUTTER", "FO4L_CLUTTER"},
	{"FOL_WEAPON", "FO4L_WEAPON"},
	{"FOL_PROJECTILE", "FO4L_PROJECTILE"},
	{"FOL_SPELL", "FO4L_SPELL"},
	{"FOL_BIPED", "FO4L_BIPED"},
	{"FOL_TREES", "FO4L_TREE"},
	{"FOL_PROPS", "FO4L_PROP"},
	{"FOL_WATER", "FO4L_WATER"},
	{"FOL_TRIGGER", "FO4L_TRIGGER"},
	{"FOL_TERRAIN", "FO4L_TERRAIN"},
	{"FOL_TRAP", "FO4L_TRAP"},
	{"FOL_NONCOLLIDABLE", "FO4L_NONCOLLIDABLE"},
	{"FOL_CLOUD_TRAP", "FO4L_CLOUD_TRAP"},
	{"FOL_GROUND", "FO4L_GROUND"},
	{"FOL_PORTAL", "FO4L_PORTAL"},
	{"FOL_DEBRIS_SMALL", "FO4L_DEBRIS_SMALL"},
	{"FOL_DEBRIS_LARGE", "FO4L_DEBRIS_LARGE"},
	{"FOL_ACOUSTIC_SPACE", "FO4L_ACOUSTIC_SPACE"},
	{"FOL_ACTORZONE", "FO4L_ACTORZONE"},
	{"FOL_PROJECTILEZONE", "FO4L_PROJECTILEZONE"},
	{"FOL_GASTRAP", "FO4L_GASTRAP"},
	{"FOL_SHELLCASING", "FO4L_SHELLCASING"},
	{"FOL_TRANSPARENT_SMALL", "FO4L_TRANSPARENT_SMALL"},
	{"FOL_INVISIBLE_WALL", "FO4L_INVISIBLE_WALL"},
	{"FOL_TRANSPARENT_SMALL_ANIM", "FO4L_TRANSPARENT_SMALL_ANIM"},
	{"FOL_DEADBIP", "FO4L_UNIDENTIFIED"},
	{"FOL_CHARCONTROLLER", "FO4L_CHARACTER_CONTROLLER"},
	{"FOL_AVOIDBOX", "FO4L_UNIDENTIFIED"},
	{"FOL_COLLISIONBOX", "FO4L_UNIDENTIFIED"},
	{"FOL_CAMERASPHERE", "FO4L_UNIDENTIFIED"},
	{"FOL_DOORDETECTION", "FO4L_UNIDENTIFIED"},
	{"FOL_CAMERAPICK", "FO4L_UNIDENTIFIED"},
	{"FOL_ITEMPICK", "FO4L_UNIDENTIFIED"},
	{"FOL_LINEOFSIGHT", "FO4L_UNIDENTIFIED"},
	{"FOL_PATHPICK", "FO4L_UNIDENTIFIED"},
	{"FOL_CUSTOMPICK1", "FO4L_UNIDENTIFIED"},
	{"FOL_CUSTOMPICK2", "FO4L_UNIDENTIFIED"},
	{"FOL_SPELLEXPLOSION", "FO4L_UNIDENTIFIED"},
	{"FOL_DROPPINGPICK", "FO4L_UNIDENTIFIED"},
	{"FOL_NULL", "FO4L_UNIDENTIFIED"},
}

// HavokLayer maps legacy collision layers onto modern ones.
func HavokLayer() *Map {
	return New("havok_layer", layers...)
}
