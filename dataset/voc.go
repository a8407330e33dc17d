package dataset

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidAnnotation is returned when a PascalVOC document is missing a
// required element or holds a malformed value
var ErrInvalidAnnotation = errors.New("invalid annotation")

// Object is a single labelled box in a PascalVOC annotation
type Object struct {
	Name string
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// Annotation is a parsed PascalVOC document
type Annotation struct {
	Width   int
	Height  int
	Objects []Object
}

// vocDoc mirrors the subset of the PascalVOC schema we read.  Values are
// kept as strings so a missing element can be told apart from a zero.
type vocDoc struct {
	XMLName xml.Name    `xml:"annotation"`
	Size    *vocSize    `xml:"size"`
	Objects []vocObject `xml:"object"`
}

type vocSize struct {
	Width  *string `xml:"width"`
	Height *string `xml:"height"`
}

type vocObject struct {
	Name   *string    `xml:"name"`
	BndBox *vocBndBox `xml:"bndbox"`
}

type vocBndBox struct {
	XMin *string `xml:"xmin"`
	XMax *string `xml:"xmax"`
	YMin *string `xml:"ymin"`
	YMax *string `xml:"ymax"`
}

// ParseAnnotation decodes a PascalVOC XML document
func ParseAnnotation(r io.Reader) (*Annotation, error) {

	var doc vocDoc

	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnnotation, err)
	}

	if doc.Size == nil {
		return nil, fmt.Errorf("%w: missing size element", ErrInvalidAnnotation)
	}

	width, err := parseInt("size/width", doc.Size.Width)

	if err != nil {
		return nil, err
	}

	height, err := parseInt("size/height", doc.Size.Height)

	if err != nil {
		return nil, err
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d must be positive",
			ErrInvalidAnnotation, width, height)
	}

	ann := &Annotation{
		Width:   width,
		Height:  height,
		Objects: make([]Object, 0, len(doc.Objects)),
	}

	for i, o := range doc.Objects {

		if o.Name == nil {
			return nil, fmt.Errorf("%w: object %d missing name", ErrInvalidAnnotation, i)
		}

		if o.BndBox == nil {
			return nil, fmt.Errorf("%w: object %d missing bndbox", ErrInvalidAnnotation, i)
		}

		// names are matched against the vocabulary exactly as written
		obj := Object{Name: *o.Name}

		fields := []struct {
			name string
			val  *string
			dst  *float64
		}{
			{"xmin", o.BndBox.XMin, &obj.XMin},
			{"xmax", o.BndBox.XMax, &obj.XMax},
			{"ymin", o.BndBox.YMin, &obj.YMin},
			{"ymax", o.BndBox.YMax, &obj.YMax},
		}

		for _, f := range fields {
			v, err := parseFloat(fmt.Sprintf("object %d bndbox/%s", i, f.name), f.val)

			if err != nil {
				return nil, err
			}

			*f.dst = v
		}

		ann.Objects = append(ann.Objects, obj)
	}

	return ann, nil
}

// ReadAnnotation parses the PascalVOC XML file at path
func ReadAnnotation(path string) (*Annotation, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening annotation: %w", err)
	}

	defer f.Close()

	ann, err := ParseAnnotation(f)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return ann, nil
}

func parseInt(field string, s *string) (int, error) {

	if s == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidAnnotation, field)
	}

	v, err := strconv.Atoi(strings.TrimSpace(*s))

	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidAnnotation, field, err)
	}

	return v, nil
}

func parseFloat(field string, s *string) (float64, error) {

	if s == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidAnnotation, field)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)

	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidAnnotation, field, err)
	}

	return v, nil
}
