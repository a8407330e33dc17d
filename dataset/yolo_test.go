package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-ppecascade/geometry"
)

func vocXML(width, height string, objects ...string) string {
	var sb strings.Builder
	sb.WriteString("<annotation><filename>img.jpg</filename>")
	sb.WriteString("<size><width>" + width + "</width><height>" + height +
		"</height><depth>3</depth></size>")
	for _, o := range objects {
		sb.WriteString(o)
	}
	sb.WriteString("</annotation>")
	return sb.String()
}

func vocObjectXML(name, xmin, xmax, ymin, ymax string) string {
	return "<object><name>" + name + "</name><difficult>0</difficult><bndbox>" +
		"<xmin>" + xmin + "</xmin><ymin>" + ymin + "</ymin>" +
		"<xmax>" + xmax + "</xmax><ymax>" + ymax + "</ymax></bndbox></object>"
}

func TestFormatFloat(t *testing.T) {

	tests := []struct {
		in   float64
		want string
	}{
		{0.04, "0.04"},
		{0.44895833333333335, "0.44895833333333335"},
		{1, "1.0"},
		{0, "0.0"},
		{2.5, "2.5"},
		{0.0001, "0.0001"},
		{1e-05, "1e-05"},
		{1.5e-05, "1.5e-05"},
		{-9.999e-07, "-9.999e-07"},
		{123456789012345, "123456789012345.0"},
		{1e16, "1e+16"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatFloat(tc.in), "FormatFloat(%v)", tc.in)
	}
}

func TestLineString(t *testing.T) {

	l := Line{Class: 2, Box: geometry.ToNormalizedCenterForm(48.5, 210.25, 33, 400, 640, 480)}

	assert.Equal(t, "2 0.2005859375 0.44895833333333335 0.252734375 0.7645833333333333",
		l.String())
}

func TestParseAnnotation(t *testing.T) {

	doc := vocXML("100", "100",
		vocObjectXML("helmet", "0", "10", "0", "20"),
		vocObjectXML("vest", "5.5", "50", "10", "90"),
	)

	ann, err := ParseAnnotation(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 100, ann.Width)
	assert.Equal(t, 100, ann.Height)
	require.Len(t, ann.Objects, 2)
	assert.Equal(t, Object{Name: "helmet", XMin: 0, XMax: 10, YMin: 0, YMax: 20}, ann.Objects[0])
	assert.Equal(t, 5.5, ann.Objects[1].XMin)
}

func TestParseAnnotationInvalid(t *testing.T) {

	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "hello"},
		{"missing size", "<annotation>" + vocObjectXML("a", "0", "1", "0", "1") + "</annotation>"},
		{"missing width", "<annotation><size><height>10</height></size></annotation>"},
		{"float width", vocXML("10.5", "10")},
		{"zero width", vocXML("0", "100", vocObjectXML("cls", "0", "10", "0", "20"))},
		{"zero size", vocXML("0", "0")},
		{"negative height", vocXML("100", "-5")},
		{"missing bndbox", vocXML("10", "10", "<object><name>a</name></object>")},
		{"missing name", vocXML("10", "10",
			"<object><bndbox><xmin>0</xmin><xmax>1</xmax><ymin>0</ymin><ymax>1</ymax></bndbox></object>")},
		{"missing xmax", vocXML("10", "10",
			"<object><name>a</name><bndbox><xmin>0</xmin><ymin>0</ymin><ymax>1</ymax></bndbox></object>")},
		{"bad coordinate", vocXML("10", "10", vocObjectXML("a", "zero", "1", "0", "1"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAnnotation(strings.NewReader(tc.doc))
			assert.ErrorIs(t, err, ErrInvalidAnnotation)
		})
	}
}

func TestParseAnnotationNameVerbatim(t *testing.T) {

	doc := vocXML("100", "100",
		vocObjectXML(" cls ", "0", "10", "0", "20"),
		vocObjectXML("cls", "0", "10", "0", "20"),
	)

	ann, err := ParseAnnotation(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, ann.Objects, 2)
	assert.Equal(t, " cls ", ann.Objects[0].Name)

	// padded names are not in the vocabulary and are dropped
	lines := ConvertAnnotation(ann, Vocabulary{"cls"})
	require.Len(t, lines, 1)
	assert.Equal(t, "0 0.04 0.09 0.1 0.2", lines[0].String())
}

func TestConvertDirZeroSizeImage(t *testing.T) {

	in := t.TempDir()
	out := t.TempDir()

	write(t, filepath.Join(in, "classes.txt"), "cls")
	write(t, filepath.Join(in, "empty.xml"), vocXML("0", "0", vocObjectXML("cls", "0", "10", "0", "20")))

	_, err := ConvertDir(in, out, nil)
	assert.ErrorIs(t, err, ErrInvalidAnnotation)

	// nothing is written for a rejected annotation
	_, err = os.Stat(filepath.Join(out, "empty.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertAnnotation(t *testing.T) {

	ann := &Annotation{
		Width:  100,
		Height: 100,
		Objects: []Object{
			{Name: "cls", XMin: 0, XMax: 10, YMin: 0, YMax: 20},
			{Name: "dog", XMin: 1, XMax: 2, YMin: 1, YMax: 2},
		},
	}

	lines := ConvertAnnotation(ann, Vocabulary{"cls"})

	require.Len(t, lines, 1)
	assert.Equal(t, "0 0.04 0.09 0.1 0.2", lines[0].String())

	assert.Empty(t, ConvertAnnotation(ann, Vocabulary{"cat"}))
}

func TestConvertDir(t *testing.T) {

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "labels")

	write(t, filepath.Join(in, "classes.txt"), "person\nhelmet vest\n")
	write(t, filepath.Join(in, "a.xml"), vocXML("100", "100",
		vocObjectXML("helmet", "0", "10", "0", "20"),
		vocObjectXML("boots", "0", "10", "0", "20"),
		vocObjectXML("person", "40", "60", "40", "60"),
	))
	write(t, filepath.Join(in, "b.xml"), vocXML("100", "100", vocObjectXML("boots", "0", "1", "0", "1")))
	write(t, filepath.Join(in, "notes.md"), "ignored")

	n, err := ConvertDir(in, out, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "1 0.04 0.09 0.1 0.2\n0 0.49 0.49 0.2 0.2\n", read(t, filepath.Join(out, "a.txt")))

	// every annotation gets a label file even with no matching objects
	assert.Equal(t, "", read(t, filepath.Join(out, "b.txt")))

	_, err = os.Stat(filepath.Join(out, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertDirFailures(t *testing.T) {

	in := t.TempDir()

	_, err := ConvertDir(in, t.TempDir(), nil)
	assert.Error(t, err, "classes.txt is required")

	write(t, filepath.Join(in, "classes.txt"), "helmet")
	write(t, filepath.Join(in, "bad.xml"), "<annotation></annotation>")

	_, err = ConvertDir(in, t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrInvalidAnnotation)
}

func TestLoadVocabulary(t *testing.T) {

	path := filepath.Join(t.TempDir(), "classes.txt")
	write(t, path, "person helmet\n\n  vest\tgloves\n")

	vocab, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, Vocabulary{"person", "helmet", "vest", "gloves"}, vocab)

	idx, err := vocab.Index("vest")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = vocab.Index("boots")
	assert.ErrorIs(t, err, ErrMissingClass)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func write(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
