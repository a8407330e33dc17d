package cascade

import (
	"errors"
	"fmt"
	"github.com/swdee/go-ppecascade/geometry"
	"github.com/swdee/go-ppecascade/imageops"
	"github.com/swdee/go-ppecascade/postprocess/result"
	"sync"
)

// ErrEmptyCrop is recorded when a person box has no area once clamped to
// the image bounds.  Such persons are skipped, it is never returned from
// Detect.
var ErrEmptyCrop = errors.New("person crop has zero area")

// Detector runs object detection on a frame.  Returned boxes are in the
// coordinate frame of the frame passed in.  Implementations used with more
// than one worker must be safe for concurrent use.
type Detector interface {
	Infer(frame imageops.Frame) ([]result.Detection, error)
}

// DetectorFunc adapts a function to the Detector interface
type DetectorFunc func(frame imageops.Frame) ([]result.Detection, error)

// Infer calls f(frame)
func (f DetectorFunc) Infer(frame imageops.Frame) ([]result.Detection, error) {
	return f(frame)
}

// Cascade chains a person detector and a PPE detector
type Cascade struct {
	person    Detector
	ppe       Detector
	threshold float32
	workers   int
	idGen     *result.IDGenerator
}

// Option configures a Cascade
type Option func(*Cascade)

// WithThreshold sets the confidence threshold applied to both stages
func WithThreshold(threshold float32) Option {
	return func(c *Cascade) {
		c.threshold = threshold
	}
}

// WithWorkers sets how many person crops may be run through the PPE detector
// at the same time.  Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(c *Cascade) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithIDGenerator shares an ID generator between cascades so detection IDs
// are unique across them
func WithIDGenerator(gen *result.IDGenerator) Option {
	return func(c *Cascade) {
		c.idGen = gen
	}
}

// New returns a Cascade running person detection followed by PPE detection
// on each person crop
func New(person, ppe Detector, opts ...Option) *Cascade {
	c := &Cascade{
		person:    person,
		ppe:       ppe,
		threshold: result.DefaultConfidenceThreshold,
		workers:   1,
		idGen:     result.NewIDGenerator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Threshold returns the configured confidence threshold
func (c *Cascade) Threshold() float32 {
	return c.threshold
}

// PersonError records a failed PPE pass for a single person
type PersonError struct {
	// Index is the position of the person in the filtered person detections
	Index int
	// Person is the person detection whose crop failed
	Person result.Detection
	Err    error
}

func (e *PersonError) Error() string {
	return fmt.Sprintf("person %d at (%.0f %.0f %.0f %.0f): %v", e.Index,
		e.Person.Box.X1, e.Person.Box.Y1, e.Person.Box.X2, e.Person.Box.Y2, e.Err)
}

func (e *PersonError) Unwrap() error {
	return e.Err
}

// Result is the output of running the cascade on one image
type Result struct {
	// PPE are the PPE detections in full image coordinates
	PPE []result.Detection
	// Persons are the person detections that met the threshold
	Persons []result.Detection
	// Skipped is the number of persons whose clamped box had no area
	Skipped int
	// Failures are the persons whose crop or PPE inference failed
	Failures []*PersonError
}

// personOutput is the outcome of the PPE pass for one person
type personOutput struct {
	dets []result.Detection
	err  error
}

// Detect runs the cascade on frame.  An error is returned only if person
// detection fails, a failure on an individual person crop is recorded in
// Result.Failures and the remaining persons are still processed.
func (c *Cascade) Detect(frame imageops.Frame) (*Result, error) {

	persons, err := c.person.Infer(frame)

	if err != nil {
		return nil, fmt.Errorf("person detection failed: %w", err)
	}

	persons = result.FilterByConfidence(persons, c.threshold)

	outputs := make([]personOutput, len(persons))

	if c.workers <= 1 || len(persons) <= 1 {
		for i, p := range persons {
			outputs[i].dets, outputs[i].err = c.detectPerson(frame, p)
		}

	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, c.workers)

		for i, p := range persons {
			wg.Add(1)
			sem <- struct{}{}

			go func(i int, p result.Detection) {
				defer wg.Done()
				outputs[i].dets, outputs[i].err = c.detectPerson(frame, p)
				<-sem
			}(i, p)
		}

		wg.Wait()
	}

	res := &Result{
		PPE:     make([]result.Detection, 0),
		Persons: persons,
	}

	// merge in person order so output does not depend on scheduling
	for i, out := range outputs {
		if errors.Is(out.err, ErrEmptyCrop) {
			res.Skipped++
			continue
		}

		if out.err != nil {
			res.Failures = append(res.Failures, &PersonError{
				Index:  i,
				Person: persons[i],
				Err:    out.err,
			})
			continue
		}

		for _, det := range out.dets {
			det.ID = c.idGen.GetNext()
			res.PPE = append(res.PPE, det)
		}
	}

	return res, nil
}

// detectPerson crops the person region out of frame, runs PPE detection on
// it and returns the PPE detections in the coordinates of frame
func (c *Cascade) detectPerson(frame imageops.Frame,
	person result.Detection) ([]result.Detection, error) {

	bounds := frame.Bounds()
	clamped := geometry.Clamp(person.Box, bounds.Dx(), bounds.Dy())
	region := clamped.Rectangle()

	if region.Empty() {
		return nil, ErrEmptyCrop
	}

	crop, err := frame.Crop(region)

	if err != nil {
		return nil, fmt.Errorf("crop failed: %w", err)
	}

	defer crop.Close()

	dets, err := c.ppe.Infer(crop)

	if err != nil {
		return nil, fmt.Errorf("ppe detection failed: %w", err)
	}

	dets = result.FilterByConfidence(dets, c.threshold)

	dx := float64(region.Min.X)
	dy := float64(region.Min.Y)

	for i := range dets {
		dets[i].Box = geometry.Translate(dets[i].Box, dx, dy)
	}

	return dets, nil
}
