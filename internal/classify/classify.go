package classify

import (
	"path/filepath"
	"strings"
)

// ContentKind is what a texture's texels represent. It selects the format
// preset used to encode it.
type ContentKind int

const (
	ContentUnknown ContentKind = iota
	ContentAlbedo
	ContentNormal
	ContentSDF
	ContentMetalRoughness
	ContentMask
)

// ContentKinds lists every ContentKind in declaration order.
var ContentKinds = []ContentKind{
	ContentUnknown, ContentAlbedo, ContentNormal, ContentSDF, ContentMetalRoughness, ContentMask,
}

func (c ContentKind) String() string {
	switch c {
	case ContentAlbedo:
		return "albedo"
	case ContentNormal:
		return "normal"
	case ContentSDF:
		return "sdf"
	case ContentMetalRoughness:
		return "metal-roughness"
	case ContentMask:
		return "mask"
	default:
		return "unknown"
	}
}

// ParseContentKind is the inverse of [ContentKind.String].
func ParseContentKind(s string) (ContentKind, bool) {
	for _, c := range ContentKinds {
		if strings.EqualFold(s, c.String()) {
			return c, true
		}
	}
	return ContentUnknown, false
}

// DimensionKind is the texture's shape.
type DimensionKind int

const (
	Dim2D DimensionKind = iota
	Dim3D
	DimCube
	Dim1DArray
	Dim2DArray
	DimCubeArray
)

func (d DimensionKind) String() string {
	switch d {
	case Dim3D:
		return "3d"
	case DimCube:
		return "cube"
	case Dim1DArray:
		return "1darray"
	case Dim2DArray:
		return "2darray"
	case DimCubeArray:
		return "cubearray"
	default:
		return "2d"
	}
}

// Flags returns the encoder arguments selecting this dimension. 3D textures
// never get mips.
func (d DimensionKind) Flags() []string {
	switch d {
	case Dim2D:
		return []string{"-type", "2d"}
	case Dim3D:
		return []string{"-type", "3d", "-mipnone"}
	case DimCube:
		return []string{"-type", "cube"}
	case Dim1DArray:
		return []string{"-type", "1darray"}
	case Dim2DArray:
		return []string{"-type", "2darray"}
	case DimCubeArray:
		return []string{"-type", "cubearray"}
	}
	panic("classify: unhandled DimensionKind " + d.String())
}

type contentRule struct {
	suffixes []string
	kind     ContentKind
}

// Checked in order; the first rule with a matching suffix wins.
var contentRules = []contentRule{
	{[]string{"-metal"}, ContentMetalRoughness},
	{[]string{"-mask"}, ContentMask},
	{[]string{"-sdf"}, ContentSDF},
	{[]string{"-a", "-albedo"}, ContentAlbedo},
	{[]string{"-n", "-normal"}, ContentNormal},
}

type dimensionRule struct {
	marker string
	kind   DimensionKind
}

// Checked in order against the whole name. "-cube" precedes "-cubearray",
// so cubearray names classify as cube; existing asset trees depend on it.
var dimensionRules = []dimensionRule{
	{"-3d", Dim3D},
	{"-cube", DimCube},
	{"-1darray", Dim1DArray},
	{"-2darray", Dim2DArray},
	{"-cubearray", DimCubeArray},
}

// Classify returns the content and dimension kinds for a file name. A
// trailing extension is ignored, so "foo-n.png" and "foo-n" agree.
func Classify(name string) (ContentKind, DimensionKind) {
	return Content(name), Dimension(name)
}

// Content matches content suffixes against the stem of name, ignoring case.
func Content(name string) ContentKind {
	stem := normalize(name)
	for _, r := range contentRules {
		for _, s := range r.suffixes {
			if strings.HasSuffix(stem, s) {
				return r.kind
			}
		}
	}
	return ContentUnknown
}

// Dimension looks for dimension markers anywhere in the stem of name,
// ignoring case. Names without a marker are 2D.
func Dimension(name string) DimensionKind {
	stem := normalize(name)
	for _, r := range dimensionRules {
		if strings.Contains(stem, r.marker) {
			return r.kind
		}
	}
	return Dim2D
}

// normalize lowercases the base name and drops its extension. An "extension"
// containing a dash is part of the stem ("lod.v2-n" is a normal map).
// Directory names never take part: a file under env-cube/ is not a cube map.
func normalize(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); !strings.Contains(ext, "-") {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ToLower(base)
}
