package render

import (
	"fmt"
	"github.com/swdee/go-ppecascade/postprocess/result"
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

// boxLabel holds the precalculated rendering details of a box label
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// LabelText returns the text drawn above a detection, the label followed by
// the score to two decimal places
func LabelText(det result.Detection) string {
	return fmt.Sprintf("%s: %.2f", det.Label, det.Score)
}

// LabelOrigin returns the bottom left position of label text of textSize
// for box.  The text sits above the box and is moved down and right as
// needed so it never starts at a negative coordinate.
func LabelOrigin(box image.Rectangle, textSize image.Point, font Font,
	lineThickness int) image.Point {

	var centerX int

	// padded labels are pulled out to the outer edge of the box line,
	// unpadded text starts exactly on the box corner
	edge := 0

	if font.LeftPad > 0 || font.RightPad > 0 {
		edge = lineThickness / 2
	}

	switch font.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + edge

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - edge
	}

	x := centerX - textSize.X/2
	y := box.Min.Y - font.BottomPad

	if x < font.LeftPad {
		x = font.LeftPad
	}

	if minY := textSize.Y + font.TopPad; y < minY {
		y = minY
	}

	return image.Pt(x, y)
}

// DetectionBoxes renders the bounding box and label of each detection in
// the color clr
func DetectionBoxes(img *gocv.Mat, dets []result.Detection, clr color.RGBA,
	font Font, lineThickness int) {

	drawBoxes(img, dets, func(result.Detection) color.RGBA { return clr },
		font, lineThickness)
}

// DetectionBoxesByClass renders the bounding box and label of each detection
// colored by its class
func DetectionBoxesByClass(img *gocv.Mat, dets []result.Detection,
	font Font, lineThickness int) {

	drawBoxes(img, dets, func(d result.Detection) color.RGBA { return ClassColor(d.Class) },
		font, lineThickness)
}

// drawBoxes renders detection boxes with colors chosen by pick
func drawBoxes(img *gocv.Mat, dets []result.Detection,
	pick func(result.Detection) color.RGBA, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0, len(dets))

	for _, det := range dets {

		useClr := pick(det)

		// draw rectangle around detected object
		rect := det.Box.Rectangle()
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := LabelText(det)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)
		labelPosition := LabelOrigin(rect, textSize, font, lineThickness)

		// box text gets written on
		bRect := image.Rect(labelPosition.X-font.LeftPad,
			labelPosition.Y-textSize.Y-font.TopPad,
			labelPosition.X+textSize.X+font.RightPad,
			labelPosition.Y+font.BottomPad)

		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		})
	}

	// draw all precalculated box labels so they are the top most layer on the
	// image and don't get overlapped by neighbouring boxes
	for _, box := range boxLabels {
		textClr := box.clr

		if font.Background {
			gocv.Rectangle(img, box.rect, box.clr, -1)
			textClr = font.Color
		}

		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, textClr, font.Thickness,
			font.LineType, false)
	}
}
