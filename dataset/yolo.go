package dataset

import (
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-ppecascade/geometry"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Line is one YOLO label, a class id and its normalized box
type Line struct {
	Class int
	Box   geometry.NormalizedBox
}

// String formats the line as "class cx cy w h" with each value written in
// its shortest round trip form, always carrying a decimal point or exponent
func (l Line) String() string {
	return fmt.Sprintf("%d %s %s %s %s", l.Class, FormatFloat(l.Box.CX),
		FormatFloat(l.Box.CY), FormatFloat(l.Box.W), FormatFloat(l.Box.H))
}

// FormatFloat writes f using the shortest representation that reads back to
// the same value.  Values with a decimal exponent in [-4, 16) are written in
// positional form with at least one fractional digit, others in exponent form
// such as 1e-05.  This matches the label files produced by earlier tooling.
func FormatFloat(f float64) string {

	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])

	if f != 0 && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)

	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}

// ConvertAnnotation returns a YOLO line for each object whose class is in
// vocab, objects of other classes are dropped
func ConvertAnnotation(ann *Annotation, vocab Vocabulary) []Line {

	lines := make([]Line, 0, len(ann.Objects))

	for _, obj := range ann.Objects {

		class, err := vocab.Index(obj.Name)

		if errors.Is(err, ErrMissingClass) {
			continue
		}

		lines = append(lines, Line{
			Class: class,
			Box: geometry.ToNormalizedCenterForm(obj.XMin, obj.XMax,
				obj.YMin, obj.YMax, ann.Width, ann.Height),
		})
	}

	return lines
}

// WriteLines writes one label per line to w
func WriteLines(w io.Writer, lines []Line) error {
	for _, l := range lines {
		if _, err := io.WriteString(w, l.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// ConvertFile converts the PascalVOC file xmlPath and writes its labels to
// txtPath.  The label file is created even when no object matched.
func ConvertFile(xmlPath, txtPath string, vocab Vocabulary) (int, error) {

	ann, err := ReadAnnotation(xmlPath)

	if err != nil {
		return 0, err
	}

	lines := ConvertAnnotation(ann, vocab)

	out, err := os.Create(txtPath)

	if err != nil {
		return 0, fmt.Errorf("error creating label file: %w", err)
	}

	if err := WriteLines(out, lines); err != nil {
		out.Close()
		return 0, fmt.Errorf("error writing label file: %w", err)
	}

	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("error closing label file: %w", err)
	}

	return len(lines), nil
}

// ConvertDir converts every .xml file in inputDir into a .txt file of the
// same base name in outputDir, using the vocabulary in inputDir/classes.txt.
// It returns the number of files converted and stops at the first failure.
func ConvertDir(inputDir, outputDir string, log logrus.FieldLogger) (int, error) {

	log = orDiscard(log)

	vocab, err := LoadVocabulary(filepath.Join(inputDir, "classes.txt"))

	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("error creating output directory: %w", err)
	}

	files, err := listFiles(inputDir, ".xml")

	if err != nil {
		return 0, err
	}

	for i, name := range files {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		txtPath := filepath.Join(outputDir, base+".txt")

		n, err := ConvertFile(filepath.Join(inputDir, name), txtPath, vocab)

		if err != nil {
			return i, err
		}

		log.WithFields(logrus.Fields{
			"file":   name,
			"output": txtPath,
			"labels": n,
		}).Info("Converted annotation")
	}

	return len(files), nil
}

// listFiles returns the names of regular files in dir ending in suffix, in
// lexical order
func listFiles(dir, suffix string) ([]string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		names = append(names, e.Name())
	}

	return names, nil
}

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}

	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}
