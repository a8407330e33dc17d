package cascade

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-ppecascade/geometry"
	"github.com/swdee/go-ppecascade/imageops"
	"github.com/swdee/go-ppecascade/postprocess/result"
)

func newFrame(width, height int) imageops.Frame {
	return imageops.NewImageFrame(image.NewRGBA(image.Rect(0, 0, width, height)))
}

func person(x1, y1, x2, y2 float64, score float32) result.Detection {
	return result.Detection{
		Box:   geometry.NewRect(x1, y1, x2, y2),
		Label: "person",
		Score: score,
	}
}

// staticDetector returns the same detections for every frame and records the
// bounds of each frame it was called with
type staticDetector struct {
	mu     sync.Mutex
	dets   []result.Detection
	err    error
	frames []image.Rectangle
}

func (s *staticDetector) Infer(frame imageops.Frame) ([]result.Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames = append(s.frames, frame.Bounds())

	if s.err != nil {
		return nil, s.err
	}

	return append([]result.Detection(nil), s.dets...), nil
}

func TestDetectEndToEnd(t *testing.T) {

	persons := &staticDetector{dets: []result.Detection{person(100, 100, 300, 400, 0.9)}}
	ppe := &staticDetector{dets: []result.Detection{{
		Box:   geometry.NewRect(10, 10, 50, 50),
		Class: 0,
		Label: "helmet",
		Score: 0.8,
	}}}

	c := New(persons, ppe, WithThreshold(0.5))

	res, err := c.Detect(newFrame(640, 480))
	require.NoError(t, err)

	require.Len(t, ppe.frames, 1)
	assert.Equal(t, image.Rect(0, 0, 200, 300), ppe.frames[0])

	require.Len(t, res.PPE, 1)
	got := res.PPE[0]
	assert.Equal(t, geometry.NewRect(110, 110, 150, 150), got.Box)
	assert.Equal(t, "helmet", got.Label)
	assert.Equal(t, float32(0.8), got.Score)
	assert.NotZero(t, got.ID)

	assert.Len(t, res.Persons, 1)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Failures)

	// the detector's own output is left in crop coordinates
	assert.Equal(t, geometry.NewRect(10, 10, 50, 50), ppe.dets[0].Box)
}

func TestDetectNoPersons(t *testing.T) {

	ppe := &staticDetector{dets: []result.Detection{{Label: "helmet", Score: 1}}}
	c := New(&staticDetector{}, ppe)

	res, err := c.Detect(newFrame(64, 64))
	require.NoError(t, err)

	assert.NotNil(t, res.PPE)
	assert.Empty(t, res.PPE)
	assert.Empty(t, ppe.frames, "ppe detector must not run without persons")
}

func TestDetectThresholdBothStages(t *testing.T) {

	persons := &staticDetector{dets: []result.Detection{
		person(0, 0, 50, 50, 0.4),
		person(50, 50, 100, 100, 0.6),
	}}

	ppe := &staticDetector{dets: []result.Detection{
		{Box: geometry.NewRect(1, 1, 5, 5), Label: "vest", Score: 0.59},
		{Box: geometry.NewRect(2, 2, 6, 6), Label: "gloves", Score: 0.6},
	}}

	res, err := New(persons, ppe, WithThreshold(0.6)).Detect(newFrame(100, 100))
	require.NoError(t, err)

	require.Len(t, ppe.frames, 1)
	require.Len(t, res.PPE, 1)
	assert.Equal(t, "gloves", res.PPE[0].Label)
	assert.Equal(t, geometry.NewRect(52, 52, 56, 56), res.PPE[0].Box)
}

func TestDetectSkipsEmptyCrop(t *testing.T) {

	persons := &staticDetector{dets: []result.Detection{
		person(700, 10, 800, 50, 0.9),  // entirely right of the image
		person(20, 30, 20, 90, 0.9),    // zero width
		person(10.2, 5, 10.8, 40, 0.9), // collapses to zero pixels
		person(-50, -50, 40, 60, 0.9),  // partly outside, valid once clamped
	}}

	ppe := &staticDetector{dets: []result.Detection{
		{Box: geometry.NewRect(0, 0, 10, 10), Label: "helmet", Score: 0.9},
	}}

	res, err := New(persons, ppe).Detect(newFrame(640, 480))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Skipped)
	assert.Empty(t, res.Failures)

	require.Len(t, ppe.frames, 1)
	assert.Equal(t, image.Rect(0, 0, 40, 60), ppe.frames[0])

	require.Len(t, res.PPE, 1)
	assert.Equal(t, geometry.NewRect(0, 0, 10, 10), res.PPE[0].Box)
}

func TestDetectPersonFailureIsolated(t *testing.T) {

	persons := &staticDetector{dets: []result.Detection{
		person(0, 0, 100, 100, 0.9),
		person(200, 200, 300, 300, 0.9),
	}}

	calls := 0
	ppe := DetectorFunc(func(frame imageops.Frame) ([]result.Detection, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("inference exploded")
		}
		return []result.Detection{{Box: geometry.NewRect(5, 5, 15, 15), Label: "vest", Score: 0.7}}, nil
	})

	res, err := New(persons, ppe).Detect(newFrame(640, 480))
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, 0, res.Failures[0].Index)
	assert.ErrorContains(t, res.Failures[0], "inference exploded")

	require.Len(t, res.PPE, 1)
	assert.Equal(t, geometry.NewRect(205, 205, 215, 215), res.PPE[0].Box)
}

func TestDetectPersonStageError(t *testing.T) {

	boom := errors.New("no model")
	c := New(&staticDetector{err: boom}, &staticDetector{})

	_, err := c.Detect(newFrame(10, 10))
	assert.ErrorIs(t, err, boom)
}

func TestDetectWorkersMatchSequential(t *testing.T) {

	var persons []result.Detection
	for i := 0; i < 12; i++ {
		x := float64(i * 40)
		persons = append(persons, person(x, 10, x+30, 200, 0.9))
	}
	persons = append(persons, person(900, 900, 950, 950, 0.9))

	// PPE box depends on the crop so misordering would be visible
	ppe := DetectorFunc(func(frame imageops.Frame) ([]result.Detection, error) {
		b := frame.Bounds()
		return []result.Detection{
			{Box: geometry.NewRect(1, 2, float64(b.Dx()-1), float64(b.Dy()-2)), Label: "helmet", Score: 0.9},
			{Box: geometry.NewRect(0, 0, 3, 3), Label: "gloves", Score: 0.95},
		}, nil
	})

	seq, err := New(&staticDetector{dets: persons}, ppe).Detect(newFrame(640, 480))
	require.NoError(t, err)

	par, err := New(&staticDetector{dets: persons}, ppe, WithWorkers(4)).Detect(newFrame(640, 480))
	require.NoError(t, err)

	require.Len(t, par.PPE, len(seq.PPE))
	for i := range seq.PPE {
		assert.Equal(t, seq.PPE[i].Box, par.PPE[i].Box)
		assert.Equal(t, seq.PPE[i].Label, par.PPE[i].Label)
	}

	assert.Equal(t, 1, seq.Skipped)
	assert.Equal(t, 1, par.Skipped)
}

func TestSharedIDGenerator(t *testing.T) {

	gen := result.NewIDGenerator()
	persons := &staticDetector{dets: []result.Detection{person(0, 0, 10, 10, 1)}}
	ppe := &staticDetector{dets: []result.Detection{{Box: geometry.NewRect(0, 0, 1, 1), Score: 1}}}

	a, err := New(persons, ppe, WithIDGenerator(gen)).Detect(newFrame(20, 20))
	require.NoError(t, err)
	b, err := New(persons, ppe, WithIDGenerator(gen)).Detect(newFrame(20, 20))
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.PPE[0].ID)
	assert.Equal(t, int64(2), b.PPE[0].ID)
}

func TestOptions(t *testing.T) {
	c := New(nil, nil)
	assert.Equal(t, result.DefaultConfidenceThreshold, c.Threshold())
	assert.Equal(t, 1, c.workers)

	c = New(nil, nil, WithWorkers(-3), WithThreshold(0.25))
	assert.Equal(t, 1, c.workers)
	assert.Equal(t, float32(0.25), c.Threshold())
}
