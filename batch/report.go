package batch

import (
	"fmt"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
	"time"
)

// ImageResult is the outcome of processing a single image
type ImageResult struct {
	// Index is the position of the image in the run
	Index int
	// Name is the base file name of the image
	Name string
	// Path to the input image
	Path string
	// Output is the path the annotated image was written to, empty if the
	// image failed
	Output string
	// Detections is the number of PPE detections drawn
	Detections int
	// Persons is the number of persons meeting the confidence threshold
	Persons int
	// SkippedPersons is the number of persons whose box had no area on
	// the image
	SkippedPersons int
	// FailedPersons is the number of persons whose PPE detection failed
	FailedPersons int
	Duration      time.Duration
	Err           error
}

// Report holds the results of a batch run
type Report struct {
	RunID    uuid.UUID
	Results  []ImageResult
	Started  time.Time
	Finished time.Time
}

// Succeeded returns the number of images annotated and written
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results of the images that could not be processed
func (r *Report) Failed() []ImageResult {
	failed := make([]ImageResult, 0)
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Summary holds statistics over the successfully processed images
type Summary struct {
	Images           int
	Failed           int
	Detections       int
	MeanDuration     time.Duration
	StdDevDuration   time.Duration
	MeanDetections   float64
	StdDevDetections float64
	Elapsed          time.Duration
}

// Summary calculates the per image latency and detection statistics
func (r *Report) Summary() Summary {

	sum := Summary{
		Images:  len(r.Results),
		Elapsed: r.Finished.Sub(r.Started),
	}

	durations := make([]float64, 0, len(r.Results))
	counts := make([]float64, 0, len(r.Results))

	for _, res := range r.Results {
		if res.Err != nil {
			sum.Failed++
			continue
		}

		sum.Detections += res.Detections
		durations = append(durations, float64(res.Duration))
		counts = append(counts, float64(res.Detections))
	}

	switch len(durations) {
	case 0:
		return sum

	case 1:
		// stat.MeanStdDev returns NaN deviation for a single sample
		sum.MeanDuration = time.Duration(durations[0])
		sum.MeanDetections = counts[0]
		return sum
	}

	mean, std := stat.MeanStdDev(durations, nil)
	sum.MeanDuration = time.Duration(mean)
	sum.StdDevDuration = time.Duration(std)

	sum.MeanDetections, sum.StdDevDetections = stat.MeanStdDev(counts, nil)

	return sum
}

func (s Summary) String() string {
	return fmt.Sprintf("images=%d failed=%d detections=%d mean=%s stddev=%s "+
		"detections/image=%.2f±%.2f elapsed=%s", s.Images, s.Failed,
		s.Detections, s.MeanDuration, s.StdDevDuration, s.MeanDetections,
		s.StdDevDetections, s.Elapsed)
}
