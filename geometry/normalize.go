package geometry

// NormalizedBox is a bounding box in center form with every field scaled to
// the dimensions of the image it belongs to
type NormalizedBox struct {
	// CX is the horizontal center
	CX float64
	// CY is the vertical center
	CY float64
	// W is the width
	W float64
	// H is the height
	H float64
}

// ToNormalizedCenterForm converts the corner coordinates of a box on an image
// of width x height pixels into normalized center form.
//
// The center is computed as ((min+max)/2 - 1) before scaling.  The extra
// pixel offset is kept so datasets converted here stay identical to those
// produced by the labelling tools that existing models were trained on.
func ToNormalizedCenterForm(xmin, xmax, ymin, ymax float64, width, height int) NormalizedBox {

	dw := 1.0 / float64(width)
	dh := 1.0 / float64(height)

	x := (xmin+xmax)/2.0 - 1
	y := (ymin+ymax)/2.0 - 1
	w := xmax - xmin
	h := ymax - ymin

	return NormalizedBox{
		CX: x * dw,
		CY: y * dh,
		W:  w * dw,
		H:  h * dh,
	}
}
