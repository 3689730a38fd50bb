package encoder

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/texbuild/internal/classify"
	"github.com/backmassage/texbuild/internal/preset"
)

func normalTable() preset.Table {
	return preset.NewTable(map[classify.ContentKind]string{
		classify.ContentNormal:  "-f bc5 -signed -normal",
		classify.ContentAlbedo:  "-f bc7 -srgb -premul",
		classify.ContentUnknown: "-f bc7 -srgb",
	})
}

func TestSynthesize_NormalMap(t *testing.T) {
	src := filepath.Join("/src", "foo-n.png")
	c, d := classify.Classify(src)

	cmd, ok := Synthesize(src, "/dst", c, d, normalTable())
	require.True(t, ok)
	assert.Equal(t, "encode -f bc5 -signed -normal -type 2d -i /src/foo-n.png -o /dst/foo-n.ktx", cmd.String())
	assert.Equal(t, "/dst/foo-n.ktx", cmd.Dest)
	assert.Equal(t, src, cmd.Src)
}

func TestSynthesize_3DForcesMipNone(t *testing.T) {
	src := "/src/bar-3d.ktx"
	c, d := classify.Classify(src)

	cmd, ok := Synthesize(src, "/dst", c, d, normalTable())
	require.True(t, ok)
	assert.Contains(t, cmd.String(), " -type 3d -mipnone -i /src/bar-3d.ktx -o /dst/bar-3d.ktx")
}

func TestSynthesize_EmptyPresetMeansNoWork(t *testing.T) {
	tbl := preset.NewTable(map[classify.ContentKind]string{classify.ContentNormal: "-f bc5"})
	for _, kind := range classify.ContentKinds {
		_, ok := Synthesize("/src/x.png", "/dst", kind, classify.Dim2D, tbl)
		assert.Equal(t, kind == classify.ContentNormal, ok, kind.String())
	}
}

func TestSynthesize_ExactlyOneTypeFlag(t *testing.T) {
	dims := []classify.DimensionKind{
		classify.Dim2D, classify.Dim3D, classify.DimCube,
		classify.Dim1DArray, classify.Dim2DArray, classify.DimCubeArray,
	}
	for _, d := range dims {
		cmd, ok := Synthesize("/src/x-a.png", "/dst", classify.ContentAlbedo, d, normalTable())
		require.True(t, ok)
		count := 0
		for _, a := range cmd.Args {
			if a == "-type" {
				count++
			}
		}
		assert.Equal(t, 1, count, d.String())
		assert.Contains(t, cmd.String(), strings.Join(d.Flags(), " "))
	}
}

func TestDestPath(t *testing.T) {
	assert.Equal(t, "/out/mac/rock-a.ktx", DestPath("/src/deep/dir/rock-a.png", "/out/mac"))
	assert.Equal(t, "/out/noext.ktx", DestPath("/src/noext", "/out"))
	// Documented collision: extensions collapse to one output name.
	assert.Equal(t, DestPath("/src/x.png", "/out"), DestPath("/src/other/x.ktx", "/out"))
}
