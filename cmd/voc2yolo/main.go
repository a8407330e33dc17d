// Command voc2yolo converts a directory of PascalVOC XML annotations into
// YOLO text label files.  The input directory must contain a classes.txt
// file listing the class names in id order.
package main

import (
	"flag"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-ppecascade/dataset"
)

func main() {

	inputDir := flag.String("input_dir", "", "Directory containing the PascalVOC XML files and classes.txt")
	outputDir := flag.String("output_dir", "", "Directory to save the YOLO TXT files")

	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *inputDir == "" || *outputDir == "" {
		flag.Usage()
		log.Fatal("Both -input_dir and -output_dir are required")
	}

	n, err := dataset.ConvertDir(*inputDir, *outputDir, log)

	if err != nil {
		log.Fatalf("Conversion failed after %d files: %v", n, err)
	}

	log.Infof("Converted %d annotations", n)
}
