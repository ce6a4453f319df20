package lod

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// CellSize is the world-space edge length of one exterior cell.
const CellSize = 4096

// FileType is the in-engine role of a document, derived from its path.
type FileType int

const (
	Invalid FileType = iota
	Standard
	LODLandscape
	LODObject
	LODObjectHigh
)

func (t FileType) String() string {
	switch t {
	case Standard:
		return "standard"
	case LODLandscape:
		return "lod-landscape"
	case LODObject:
		return "lod-object"
	case LODObjectHigh:
		return "lod-object-high"
	default:
		return "invalid"
	}
}

var (
	ErrInvalidStructure = errors.New("invalid LOD structure")
	ErrUnrecognizedFile = errors.New("file not recognized")
	ErrFileTypeMismatch = errors.New("file name type does not match file data")
)

// codecSuffixes are stripped before the logical name is inspected.
var codecSuffixes = []string{".zst", ".yaml", ".yml"}

// Props describes a document's role. Level and coordinates are only set
// for LOD files. Output is the path relative to the output root for LOD
// files, empty for standard ones.
type Props struct {
	Type       FileType
	Worldspace string
	Level      int
	X, Y       int
	Output     string
}

// HighLevel is a high-level object LOD collected for reporting.
type HighLevel struct {
	Path       string `yaml:"path"`
	Worldspace string `yaml:"worldspace"`
	X          int    `yaml:"x"`
	Y          int    `yaml:"y"`
}

// LogicalName strips codec suffixes from a file name and returns them.
func LogicalName(name string) (base, suffix string) {
	base = name
	for {
		stripped := false
		for _, s := range codecSuffixes {
			if strings.HasSuffix(strings.ToLower(base), s) {
				base = base[:len(base)-len(s)]
				stripped = true
			}
		}
		if !stripped {
			return base, name[len(base):]
		}
	}
}

// Detect derives file properties from a source path. Landscape LODs live
// in landscape/lod/<worldspace>/ and are named
// <ws>.level<N>.x<X>.y<Y>.nif; object LODs sit one level deeper in a
// blocks/ directory and may carry a "high" segment before the coordinates.
func Detect(p string) (Props, error) {
	p = filepath.ToSlash(p)
	base, suffix := LogicalName(path.Base(p))
	parts := strings.Split(base, ".")
	if !strings.EqualFold(parts[len(parts)-1], "nif") {
		return Props{Type: Invalid}, fmt.Errorf("%w: %s", ErrUnrecognizedFile, p)
	}

	dir := path.Dir(p)
	isObject := false
	if strings.EqualFold(path.Base(dir), "blocks") {
		isObject = true
		dir = path.Dir(dir)
	}
	dir = path.Dir(dir)
	isLOD := false
	if strings.EqualFold(path.Base(dir), "lod") && strings.EqualFold(path.Base(path.Dir(dir)), "landscape") {
		isLOD = true
	}
	if !isLOD {
		return Props{Type: Standard}, nil
	}

	coord := 2
	high := false
	if len(parts) != 5 {
		if isObject && len(parts) == 6 && parts[2] == "high" {
			coord = 3
			high = true
		} else {
			return Props{Type: Invalid}, fmt.Errorf("%w: unknown LOD name format %s", ErrUnrecognizedFile, p)
		}
	}

	props := Props{Worldspace: parts[0]}
	var err error
	if props.Level, err = field(parts[1], "level"); err != nil {
		return Props{Type: Invalid}, err
	}
	if props.X, err = field(parts[coord], "x"); err != nil {
		return Props{Type: Invalid}, err
	}
	if props.Y, err = field(parts[coord+1], "y"); err != nil {
		return Props{Type: Invalid}, err
	}

	switch {
	case high:
		props.Type = LODObjectHigh
		props.Level = 0
	case isObject:
		props.Type = LODObject
		props.Output = props.terrainPath("objects", "bto") + suffix
	default:
		props.Type = LODLandscape
		props.Output = props.terrainPath("", "btr") + suffix
	}
	return props, nil
}

func field(s, prefix string) (int, error) {
	if !strings.HasPrefix(strings.ToLower(s), prefix) {
		return 0, fmt.Errorf("%w: %q lacks %q prefix", ErrUnrecognizedFile, s, prefix)
	}
	n, err := strconv.Atoi(s[len(prefix):])
	if err != nil {
		return 0, fmt.Errorf("%w: could not parse LOD %s from %q", ErrUnrecognizedFile, prefix, s)
	}
	return n, nil
}

func (p Props) terrainPath(sub, ext string) string {
	name := fmt.Sprintf("%s.%d.%d.%d.%s", p.Worldspace, p.Level, p.X, p.Y, ext)
	return path.Join("terrain", p.Worldspace, sub, name)
}

// HighLevel returns the reporting record of a high-level object LOD.
func (p Props) HighLevel(src string) HighLevel {
	return HighLevel{Path: src, Worldspace: p.Worldspace, X: p.X, Y: p.Y}
}

// Check compares the LOD facts discovered while converting with the file
// type derived from the path.
func (p Props) Check(landscape, building bool) error {
	if building != (p.Type == LODObject) || landscape != (p.Type == LODLandscape) {
		return fmt.Errorf("%w: type %s, landscape data %t, building data %t",
			ErrFileTypeMismatch, p.Type, landscape, building)
	}
	return nil
}
