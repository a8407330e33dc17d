package batch

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-ppecascade/cascade"
	"github.com/swdee/go-ppecascade/imageops"
	"github.com/swdee/go-ppecascade/render"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// imageExts are the file extensions processed by the Runner
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Config holds the settings for a batch run
type Config struct {
	InputDir  string
	OutputDir string
	// Color of the PPE boxes and labels
	Color color.RGBA
	// ColorByClass draws each PPE class in its own palette color instead
	// of Color
	ColorByClass  bool
	Font          render.Font
	LineThickness int
	// Logger receives progress and failure messages, when nil log output
	// is discarded
	Logger *logrus.Logger
}

// DefaultConfig returns a Config with the default annotation style
func DefaultConfig(inputDir, outputDir string) Config {
	return Config{
		InputDir:      inputDir,
		OutputDir:     outputDir,
		Color:         render.Green,
		Font:          render.DefaultFont(),
		LineThickness: 2,
	}
}

// Runner processes a directory of images through a Cascade
type Runner struct {
	cfg     Config
	cascade *cascade.Cascade
	log     *logrus.Logger
}

// NewRunner returns a Runner for the given configuration and cascade
func NewRunner(cfg Config, c *cascade.Cascade) *Runner {

	log := cfg.Logger

	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	if cfg.LineThickness < 1 {
		cfg.LineThickness = 1
	}

	return &Runner{
		cfg:     cfg,
		cascade: c,
		log:     log,
	}
}

// ListImages returns the paths of the png and jpeg files in dir in lexical
// order.  Extensions are matched case insensitively and sub directories are
// not descended into.
func ListImages(dir string) ([]string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("error reading input directory: %w", err)
	}

	files := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		files = append(files, filepath.Join(dir, e.Name()))
	}

	// os.ReadDir already sorts by filename
	sort.Strings(files)

	return files, nil
}

// Run processes every image in the input directory.  A failure on one image
// is recorded in the Report and the run continues, an error is only returned
// when the directories can not be read or created.
func (r *Runner) Run() (*Report, error) {

	files, err := ListImages(r.cfg.InputDir)

	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	rep := &Report{
		RunID:   uuid.New(),
		Results: make([]ImageResult, 0, len(files)),
		Started: time.Now(),
	}

	r.log.WithFields(logrus.Fields{
		"run":    rep.RunID,
		"images": len(files),
		"input":  r.cfg.InputDir,
	}).Info("Starting batch")

	for i, file := range files {
		res := r.processImage(i, file)

		entry := r.log.WithFields(logrus.Fields{
			"index": i + 1,
			"total": len(files),
			"file":  res.Name,
		})

		if res.Err != nil {
			entry.WithError(res.Err).Error("Failed to process image")
		} else {
			entry.WithFields(logrus.Fields{
				"persons":    res.Persons,
				"detections": res.Detections,
				"duration":   res.Duration,
			}).Info("Processed image")
		}

		rep.Results = append(rep.Results, res)
	}

	rep.Finished = time.Now()

	return rep, nil
}

// processImage runs the cascade on a single image and writes the annotated
// result
func (r *Runner) processImage(index int, path string) ImageResult {

	start := time.Now()
	name := filepath.Base(path)

	res := ImageResult{
		Index: index,
		Name:  name,
		Path:  path,
	}

	frame, err := imageops.Decode(path)

	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	defer frame.Close()

	out, err := r.cascade.Detect(frame)

	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	for _, f := range out.Failures {
		r.log.WithField("file", name).WithError(f).Warn("PPE detection failed for person")
	}

	res.Persons = len(out.Persons)
	res.SkippedPersons = out.Skipped
	res.FailedPersons = len(out.Failures)
	res.Detections = len(out.PPE)

	if r.cfg.ColorByClass {
		render.DetectionBoxesByClass(frame.Mat(), out.PPE, r.cfg.Font,
			r.cfg.LineThickness)
	} else {
		render.DetectionBoxes(frame.Mat(), out.PPE, r.cfg.Color, r.cfg.Font,
			r.cfg.LineThickness)
	}

	outPath := filepath.Join(r.cfg.OutputDir, name)

	if err := imageops.Write(outPath, *frame.Mat()); err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	res.Output = outPath
	res.Duration = time.Since(start)

	return res
}
