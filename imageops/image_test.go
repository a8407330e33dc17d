package imageops

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPatternImage returns an image with a distinct color in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	return img
}

func TestImageFrameCrop(t *testing.T) {

	f := NewImageFrame(createPatternImage(100, 80))
	assert.Equal(t, image.Rect(0, 0, 100, 80), f.Bounds())

	crop, err := f.Crop(image.Rect(50, 0, 100, 40))
	require.NoError(t, err)
	defer crop.Close()

	assert.Equal(t, image.Rect(0, 0, 50, 40), crop.Bounds())

	img := crop.(*ImageFrame).Image()
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0, 0xffff, 0}, []uint32{r, g, b})
}

func TestImageFrameCropOffsetOrigin(t *testing.T) {

	// sub images keep their parent coordinates, frames must not
	parent := createPatternImage(100, 100)
	sub := parent.SubImage(image.Rect(50, 50, 100, 100))

	f := NewImageFrame(sub)
	assert.Equal(t, image.Rect(0, 0, 50, 50), f.Bounds())

	crop, err := f.Crop(image.Rect(0, 0, 10, 10))
	require.NoError(t, err)

	r, g, b, _ := crop.(*ImageFrame).Image().At(5, 5).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestImageFrameCropInvalid(t *testing.T) {

	f := NewImageFrame(createPatternImage(100, 100))

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"zero area", image.Rect(50, 50, 50, 50)},
		{"zero width", image.Rect(10, 0, 10, 40)},
		{"outside", image.Rect(90, 90, 110, 110)},
		{"negative", image.Rect(-1, 0, 10, 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.Crop(tc.r)
			assert.Error(t, err)
		})
	}
}

func TestOpen(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "pattern.png")

	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(out, createPatternImage(32, 16)))
	require.NoError(t, out.Close())

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), f.Bounds())

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))

	_, err = Open(bad)
	assert.True(t, errors.Is(err, ErrDecode))

	_, err = Open(filepath.Join(dir, "missing.png"))
	assert.True(t, errors.Is(err, ErrDecode))
}
