package render

import (
	"gocv.io/x/gocv"
	"image/color"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face  gocv.HersheyFont
	Scale float64
	// Color of the text.  When Background is false the text is drawn in
	// the box color and Color is ignored
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Background draws a filled box in the box color behind the text
	Background bool
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns font settings matching the plain text labels placed
// 5 pixels above each box
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 2,
		LineType:  gocv.Line8,
		BottomPad: 5,
		Alignment: Left,
	}
}

// BoxedFont returns font settings drawing white text on a filled label box
func BoxedFont() Font {
	return Font{
		Face:       gocv.FontHersheySimplex,
		Scale:      0.5,
		Color:      White,
		Thickness:  1,
		LineType:   gocv.LineAA,
		Background: true,
		LeftPad:    4,
		RightPad:   4,
		TopPad:     4,
		BottomPad:  6,
		Alignment:  Left,
	}
}
