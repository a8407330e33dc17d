package imageops

import (
	"fmt"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
)

// ImageFrame is a decoded image held as a Go image.Image
type ImageFrame struct {
	img image.Image
}

// NewImageFrame wraps the given image
func NewImageFrame(img image.Image) *ImageFrame {
	return &ImageFrame{img: img}
}

// Open decodes the PNG or JPEG file at path into an ImageFrame
func Open(path string) (*ImageFrame, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	defer f.Close()

	img, _, err := image.Decode(f)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	return NewImageFrame(img), nil
}

// Image returns the wrapped image
func (f *ImageFrame) Image() image.Image {
	return f.img
}

// Bounds returns the frame dimensions with the origin at (0,0)
func (f *ImageFrame) Bounds() image.Rectangle {
	b := f.img.Bounds()
	return image.Rect(0, 0, b.Dx(), b.Dy())
}

// Crop copies the region r of the frame into a new image whose origin is
// at (0,0)
func (f *ImageFrame) Crop(r image.Rectangle) (Frame, error) {

	if err := checkRegion(r, f.Bounds()); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	src := r.Add(f.img.Bounds().Min)

	draw.Copy(dst, image.Point{}, f.img, src, draw.Src, nil)

	return NewImageFrame(dst), nil
}

// ToMat converts the frame to a BGR Mat for passing to inference.  The
// caller must close the returned Mat.
func (f *ImageFrame) ToMat() (gocv.Mat, error) {
	return gocv.ImageToMatRGB(f.img)
}

// Close is a no-op, the image is garbage collected
func (f *ImageFrame) Close() error {
	return nil
}
