package ppecascade

import (
	"fmt"
	"github.com/swdee/go-ppecascade/imageops"
	"github.com/swdee/go-ppecascade/postprocess"
	"github.com/swdee/go-ppecascade/postprocess/result"
	"github.com/swdee/go-ppecascade/preprocess"
	"gocv.io/x/gocv"
	"image/color"
)

// letterbox padding color
var black = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// YOLODetector runs a YOLOv8 detection Model from a Pool of runtimes.  It is
// safe for concurrent use, calls block while every runtime in the pool is
// busy.
type YOLODetector struct {
	pool   *Pool
	post   *postprocess.YOLOv8
	labels []string
	width  int
	height int
}

// NewYOLODetector returns a detector using the runtimes in pool, which were
// created from cfg.  labels are the class names the Model was trained with.
func NewYOLODetector(pool *Pool, cfg RuntimeConfig, params postprocess.YOLOv8Params,
	labels []string) *YOLODetector {

	return &YOLODetector{
		pool:   pool,
		post:   postprocess.NewYOLOv8(params),
		labels: labels,
		width:  cfg.InputWidth,
		height: cfg.InputHeight,
	}
}

// Labels returns the Model's class names
func (d *YOLODetector) Labels() []string {
	return d.labels
}

// Infer runs object detection on frame and returns detections in the frame's
// coordinates.  The frame must be able to convert itself into a gocv Mat.
func (d *YOLODetector) Infer(frame imageops.Frame) ([]result.Detection, error) {

	conv, ok := frame.(imageops.MatConverter)

	if !ok {
		return nil, fmt.Errorf("frame type %T can not be converted to a Mat", frame)
	}

	img, err := conv.ToMat()

	if err != nil {
		return nil, fmt.Errorf("error converting frame: %w", err)
	}

	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	resizer := preprocess.NewResizer(img.Cols(), img.Rows(), d.width, d.height)
	defer resizer.Close()

	input := gocv.NewMat()
	defer input.Close()

	resizer.LetterBoxResize(img, &input, black)

	// pool.Get() blocks if no runtimes are available in the pool
	rt := d.pool.Get()
	output, err := rt.Inference(input)
	d.pool.Return(rt)

	if err != nil {
		return nil, fmt.Errorf("runtime inferencing failed: %w", err)
	}

	defer output.Close()

	return d.post.DetectObjects(output, resizer, d.labels)
}
