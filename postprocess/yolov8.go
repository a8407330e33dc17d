package postprocess

import (
	"fmt"
	"github.com/swdee/go-ppecascade/geometry"
	"github.com/swdee/go-ppecascade/postprocess/result"
	"github.com/swdee/go-ppecascade/preprocess"
	"gocv.io/x/gocv"
	"image"
)

// classOffset separates boxes of different classes during NMS so that
// suppression only happens between boxes of the same class
const classOffset = 4096

// YOLOv8 defines the struct for YOLOv8 ONNX model inference post processing
type YOLOv8 struct {
	// Params are the Model configuration parameters
	Params YOLOv8Params
}

// YOLOv8Params defines the struct containing the YOLOv8 parameters to use
// for post processing operations
type YOLOv8Params struct {
	// BoxThreshold is the minimum probability score required for a bounding box
	// region to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for defining
	// the maximum allowed Intersection Over Union (IoU) between two
	// bounding boxes for both to be kept
	NMSThreshold float32
	// ObjectClassNum is the number of different object classes the Model has
	// been trained with.  Zero means take it from the output tensor shape
	ObjectClassNum int
	// MaxObjectNumber is the maximum number of objects detected that can be
	// returned
	MaxObjectNumber int
}

// YOLOv8DefaultParams returns an instance of YOLOv8Params configured with
// default values for a detection Model:
// - Box Threshold: 0.25
// - NMS Threshold: 0.7
// - Maximum Object Number: 300
//
// The box threshold is kept below the cascade confidence threshold so that
// filtering is decided by the cascade.
func YOLOv8DefaultParams() YOLOv8Params {
	return YOLOv8Params{
		BoxThreshold:    0.25,
		NMSThreshold:    0.7,
		MaxObjectNumber: 300,
	}
}

// NewYOLOv8 returns an instance of the YOLOv8 post processor
func NewYOLOv8(p YOLOv8Params) *YOLOv8 {
	return &YOLOv8{
		Params: p,
	}
}

// candidate is a box that passed the box threshold before NMS
type candidate struct {
	box   geometry.Rect
	class int
	score float32
}

// DetectObjects decodes the output tensor of a YOLOv8 detection Model with
// shape [1, 4+classes, anchors] into detections on the source image described
// by resizer.  Class names are looked up in labels.
func (y *YOLOv8) DetectObjects(output gocv.Mat, resizer *preprocess.Resizer,
	labels []string) ([]result.Detection, error) {

	dims := output.Size()

	if len(dims) != 3 || dims[0] != 1 || dims[1] <= 4 {
		return nil, fmt.Errorf("unexpected YOLOv8 output shape %v", dims)
	}

	attrs := dims[1]
	anchors := dims[2]
	classNum := attrs - 4

	if y.Params.ObjectClassNum > 0 && y.Params.ObjectClassNum != classNum {
		return nil, fmt.Errorf("model outputs %d classes, expected %d",
			classNum, y.Params.ObjectClassNum)
	}

	data, err := output.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error getting output data: %w", err)
	}

	cands := decodeCandidates(data, anchors, classNum, y.Params.BoxThreshold)

	if len(cands) == 0 {
		return make([]result.Detection, 0), nil
	}

	// NMS on integer rects with each class shifted into its own region
	rects := make([]image.Rectangle, len(cands))
	scores := make([]float32, len(cands))

	for i, c := range cands {
		off := c.class * classOffset
		rects[i] = c.box.Rectangle().Add(image.Pt(off, off))
		scores[i] = c.score
	}

	indices := gocv.NMSBoxes(rects, scores, y.Params.BoxThreshold, y.Params.NMSThreshold)

	group := make([]result.Detection, 0, len(indices))

	for _, idx := range indices {
		if y.Params.MaxObjectNumber > 0 && len(group) >= y.Params.MaxObjectNumber {
			break
		}

		c := cands[idx]

		group = append(group, result.Detection{
			Box:   resizer.SourceBox(c.box),
			Class: c.class,
			Label: className(labels, c.class),
			Score: c.score,
		})
	}

	return group, nil
}

// decodeCandidates walks the anchors of a channel-first output tensor and
// returns those whose best class score is at least threshold, with boxes
// converted from center form to corners in tensor coordinates
func decodeCandidates(data []float32, anchors, classNum int,
	threshold float32) []candidate {

	cands := make([]candidate, 0)

	for i := 0; i < anchors; i++ {

		maxScore := float32(0)
		maxClassID := -1

		for c := 0; c < classNum; c++ {
			score := data[(4+c)*anchors+i]

			if score > maxScore {
				maxScore = score
				maxClassID = c
			}
		}

		if maxClassID < 0 || maxScore < threshold {
			continue
		}

		cx := float64(data[0*anchors+i])
		cy := float64(data[1*anchors+i])
		w := float64(data[2*anchors+i])
		h := float64(data[3*anchors+i])

		cands = append(cands, candidate{
			box:   geometry.NewRect(cx-w/2, cy-h/2, cx+w/2, cy+h/2),
			class: maxClassID,
			score: maxScore,
		})
	}

	return cands
}

// className returns the label for class id, or a numbered placeholder when
// the label table is shorter than the Model's class count
func className(labels []string, id int) string {

	if id >= 0 && id < len(labels) {
		return labels[id]
	}

	return fmt.Sprintf("class%d", id)
}
