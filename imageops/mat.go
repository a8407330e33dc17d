package imageops

import (
	"errors"
	"fmt"
	"gocv.io/x/gocv"
	"image"
)

// ErrDecode is returned when an image file can not be read or decoded
var ErrDecode = errors.New("failed to decode image")

// Frame is a decoded image that detection can be run on and cropped.
// Bounds always has its origin at (0,0).
type Frame interface {
	Bounds() image.Rectangle
	Crop(r image.Rectangle) (Frame, error)
	Close() error
}

// MatConverter is implemented by frames that can be converted into a gocv
// Mat for inference
type MatConverter interface {
	ToMat() (gocv.Mat, error)
}

// MatFrame is a decoded image held in a gocv Mat
type MatFrame struct {
	mat gocv.Mat
}

// NewMatFrame wraps the given Mat.  Ownership of the Mat passes to the frame
// and it is released by Close.
func NewMatFrame(mat gocv.Mat) *MatFrame {
	return &MatFrame{mat: mat}
}

// Decode reads the image file at path in BGR color order
func Decode(path string) (*MatFrame, error) {

	img := gocv.IMRead(path, gocv.IMReadColor)

	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("%w: %s", ErrDecode, path)
	}

	return NewMatFrame(img), nil
}

// Write encodes the Mat to path, the format is chosen from the file extension
func Write(path string, mat gocv.Mat) error {

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to write image to %s", path)
	}

	return nil
}

// Bounds returns the frame dimensions
func (f *MatFrame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.mat.Cols(), f.mat.Rows())
}

// Mat returns a pointer to the underlying Mat, used for drawing on the frame
func (f *MatFrame) Mat() *gocv.Mat {
	return &f.mat
}

// Crop returns the region r of the frame.  The region must be non empty and
// lie within Bounds.  The returned frame shares pixel data with f and must
// be closed before f is.
func (f *MatFrame) Crop(r image.Rectangle) (Frame, error) {

	if err := checkRegion(r, f.Bounds()); err != nil {
		return nil, err
	}

	return NewMatFrame(f.mat.Region(r)), nil
}

// ToMat returns a continuous copy of the frame for passing to inference.
// The caller must close the returned Mat.
func (f *MatFrame) ToMat() (gocv.Mat, error) {
	return f.mat.Clone(), nil
}

// Close releases the Mat
func (f *MatFrame) Close() error {
	return f.mat.Close()
}

// checkRegion validates a crop region against the frame bounds
func checkRegion(r, bounds image.Rectangle) error {

	if r.Empty() {
		return fmt.Errorf("invalid crop region %v: zero area", r)
	}

	if !r.In(bounds) {
		return fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}

	return nil
}
