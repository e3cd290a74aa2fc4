package image

import (
	stdimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patch.png")
	src := stdimage.NewRGBA(stdimage.Rect(0, 0, 16, 9))
	src.SetRGBA(3, 4, color.RGBA{R: 200, A: 255})

	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, src))
	require.NoError(t, file.Close())

	layer, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, layer.Path)
	assert.Equal(t, 16, layer.Width())
	assert.Equal(t, 9, layer.Height())
	assert.True(t, layer.Visible)

	r, _, _, _ := layer.PixelAt(3, 4).RGBA()
	assert.Equal(t, uint32(200*0x101), r)

	// Out-of-bounds reads return black instead of panicking.
	assert.Equal(t, color.Black, layer.PixelAt(-1, 0))
	assert.Equal(t, color.Black, layer.PixelAt(16, 0))
}

func TestLoad_Failures(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)

	garbled := filepath.Join(t.TempDir(), "garbled.png")
	require.NoError(t, os.WriteFile(garbled, []byte("not an image"), 0o644))
	_, err = Load(garbled)
	require.Error(t, err)
}

func TestGuessRole(t *testing.T) {
	assert.Equal(t, RoleReference, GuessRole("/data/patch_2018_17.tif", "_2018_", "_2020_"))
	assert.Equal(t, RoleTarget, GuessRole("/data/patch_2020_17.tif", "_2018_", "_2020_"))
	assert.Equal(t, RoleUnknown, GuessRole("/data/patch_17.tif", "_2018_", "_2020_"))
	assert.Equal(t, RoleUnknown, GuessRole("/data/patch_2018_17.tif", "", ""))
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("patch.TIF"))
	assert.True(t, IsSupportedFormat("patch.png"))
	assert.True(t, IsSupportedFormat("patch.jpeg"))
	assert.False(t, IsSupportedFormat("patch.bmp"))
	assert.False(t, IsSupportedFormat("patch"))
}
