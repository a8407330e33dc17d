package result

import (
	"fmt"

	"github.com/swdee/go-ppecascade/geometry"
)

// DefaultConfidenceThreshold is the minimum score a detection needs to be
// retained when no threshold has been configured
const DefaultConfidenceThreshold float32 = 0.5

// Detection defines the attributes of a single object detected
type Detection struct {
	// Box is the bounding box of the object in the coordinate frame of the
	// image the detector was run on
	Box geometry.Rect
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Label is the class name resolved from the detector's label table
	Label string
	// Score is the confidence score of the object detected
	Score float32
	// ID is a unique ID assigned to the detection result once it is placed
	// in the full image frame.  Zero means unassigned
	ID int64
}

// String returns a readable description of the detection
func (d Detection) String() string {
	return fmt.Sprintf("%s @ (%.0f %.0f %.0f %.0f) %f", d.Label,
		d.Box.X1, d.Box.Y1, d.Box.X2, d.Box.Y2, d.Score)
}
