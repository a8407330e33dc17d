// Command split-labels separates combined YOLO label files into person labels
// and PPE labels so each Model of the cascade can be trained on its own
// classes.  Class 0 is person, the remaining class ids are shifted down by
// one in the PPE labels.
package main

import (
	"flag"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-ppecascade/dataset"
)

func main() {

	inputDir := flag.String("input_dir", "", "Directory containing the combined YOLO label files")
	personDir := flag.String("person_dir", "", "Directory to save the person label files")
	ppeDir := flag.String("ppe_dir", "", "Directory to save the PPE label files")

	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *inputDir == "" || *personDir == "" || *ppeDir == "" {
		flag.Usage()
		log.Fatal("-input_dir, -person_dir and -ppe_dir are required")
	}

	n, err := dataset.SplitDir(*inputDir, *personDir, *ppeDir, log)

	if err != nil {
		log.Fatalf("Splitting failed after %d files: %v", n, err)
	}

	log.Infof("Split %d label files", n)
}
