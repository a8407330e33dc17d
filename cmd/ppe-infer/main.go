// Command ppe-infer runs person detection followed by PPE detection on each
// person crop for every image in a directory, writing annotated copies of the
// images to an output directory.
package main

import (
	"flag"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-ppecascade"
	"github.com/swdee/go-ppecascade/batch"
	"github.com/swdee/go-ppecascade/cascade"
	"github.com/swdee/go-ppecascade/postprocess"
	"github.com/swdee/go-ppecascade/postprocess/result"
	"github.com/swdee/go-ppecascade/render"
	"os"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: %s [flags] input_dir output_dir person_model ppe_model\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {

	// read in cli flags
	threshold := flag.Float64("confidence_threshold", float64(result.DefaultConfidenceThreshold),
		"Minimum confidence for person and PPE detections")
	personLabels := flag.String("person_labels", "", "Text file containing person Model labels, one per line")
	ppeLabels := flag.String("ppe_labels", "", "Text file containing PPE Model labels, one per line")
	device := flag.String("device", "cpu", "Device to run Models on [cpu|cuda|opencl]")
	workers := flag.Int("workers", 1, "Number of person crops to run PPE detection on concurrently")
	size := flag.Int("size", 640, "Model input size the ONNX Models were exported with")
	logLevel := flag.String("log_level", "info", "Log level [debug|info|warn|error]")
	colorByClass := flag.Bool("color_by_class", false, "Draw each PPE class in its own color instead of green")
	labelBackground := flag.Bool("label_background", false, "Draw labels as white text on a filled box")
	cpus := flag.String("cpus", "", "CPU cores to pin inference to, eg: 4-7 for the fast cores of an RK3588")

	flag.Usage = usage
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(*logLevel)

	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	log.SetLevel(lvl)

	if flag.NArg() != 4 {
		usage()
		os.Exit(2)
	}

	inputDir := flag.Arg(0)
	outputDir := flag.Arg(1)

	dev, err := ppecascade.ParseDevice(*device)

	if err != nil {
		log.Fatal(err)
	}

	if *cpus != "" {
		cores, err := ppecascade.ParseCPUList(*cpus)

		if err != nil {
			log.Fatalf("Invalid -cpus: %v", err)
		}

		if err := ppecascade.SetCPUAffinity(cores); err != nil {
			log.Warnf("Failed to set CPU Affinity: %v", err)
		}
	}

	if *workers < 1 {
		*workers = 1
	}

	// person Models are trained on a single class
	personNames := []string{"person"}

	if *personLabels != "" {
		if personNames, err = ppecascade.LoadLabels(*personLabels); err != nil {
			log.Fatalf("Error loading person Model labels: %v", err)
		}
	}

	ppeNames, err := loadPPELabels(*ppeLabels, log)

	if err != nil {
		log.Fatalf("Error loading PPE Model labels: %v", err)
	}

	personDetector, personPool, err := newDetector(flag.Arg(2), *size, dev, 1, personNames)

	if err != nil {
		log.Fatalf("Error loading person Model: %v", err)
	}

	defer personPool.Close()

	ppeDetector, ppePool, err := newDetector(flag.Arg(3), *size, dev, *workers, ppeNames)

	if err != nil {
		log.Fatalf("Error loading PPE Model: %v", err)
	}

	defer ppePool.Close()

	log.WithFields(logrus.Fields{
		"device":    dev,
		"threshold": *threshold,
		"workers":   *workers,
	}).Info("Models loaded")

	c := cascade.New(personDetector, ppeDetector,
		cascade.WithThreshold(float32(*threshold)),
		cascade.WithWorkers(*workers),
	)

	cfg := batch.DefaultConfig(inputDir, outputDir)
	cfg.Logger = log
	cfg.ColorByClass = *colorByClass

	if *labelBackground {
		cfg.Font = render.BoxedFont()
	}

	rep, err := batch.NewRunner(cfg, c).Run()

	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}

	log.WithField("run", rep.RunID).Infof("Finished %s", rep.Summary())

	if failed := rep.Failed(); len(failed) > 0 {
		for _, res := range failed {
			log.WithField("file", res.Name).WithError(res.Err).Warn("Image not processed")
		}
	}
}

// newDetector creates a pool of runtimes for modelFile and a detector using it
func newDetector(modelFile string, size int, dev ppecascade.Device, poolSize int,
	labels []string) (*ppecascade.YOLODetector, *ppecascade.Pool, error) {

	cfg := ppecascade.DefaultRuntimeConfig(modelFile)
	cfg.InputWidth = size
	cfg.InputHeight = size
	cfg.Device = dev

	pool, err := ppecascade.NewPool(poolSize, cfg)

	if err != nil {
		return nil, nil, err
	}

	return ppecascade.NewYOLODetector(pool, cfg, postprocess.YOLOv8DefaultParams(),
		labels), pool, nil
}

// loadPPELabels reads the PPE Model class names from file.  ONNX exports do
// not carry class names, so without a file detections are labelled by class
// number and a warning is logged.
func loadPPELabels(file string, log logrus.FieldLogger) ([]string, error) {

	if file == "" {
		log.Warn("No -ppe_labels file given, PPE detections will be labelled by class number (class0, class1, ...)")
		return nil, nil
	}

	return ppecascade.LoadLabels(file)
}
