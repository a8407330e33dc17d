package dataset

import (
	"bufio"
	"fmt"
	"github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PersonClass is the class id of person in a combined label set
const PersonClass = 0

// SplitLines separates combined YOLO label lines into person lines and PPE
// lines.  Person lines are returned unchanged, PPE lines have their class id
// decremented by one and remaining fields joined by a single space.  Blank
// lines are skipped.
func SplitLines(lines []string) (person, ppe []string, err error) {

	person = make([]string, 0)
	ppe = make([]string, 0)

	for i, line := range lines {

		fields := strings.Fields(line)

		if len(fields) == 0 {
			continue
		}

		class, err := strconv.Atoi(fields[0])

		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid class id %q", i+1, fields[0])
		}

		if class == PersonClass {
			person = append(person, strings.TrimRight(line, "\r\n"))
			continue
		}

		ppe = append(ppe, strings.Join(append([]string{strconv.Itoa(class - 1)},
			fields[1:]...), " "))
	}

	return person, ppe, nil
}

// SplitFile splits the label file at path into files of the same name in
// personDir and ppeDir.  A file is only written for a side that has at least
// one line.
func SplitFile(path, personDir, ppeDir string) (person, ppe int, err error) {

	lines, err := readLines(path)

	if err != nil {
		return 0, 0, err
	}

	personLines, ppeLines, err := SplitLines(lines)

	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", path, err)
	}

	name := filepath.Base(path)

	if err := writeLines(filepath.Join(personDir, name), personLines); err != nil {
		return 0, 0, err
	}

	if err := writeLines(filepath.Join(ppeDir, name), ppeLines); err != nil {
		return 0, 0, err
	}

	return len(personLines), len(ppeLines), nil
}

// SplitDir splits every .txt label file in inputDir, creating personDir and
// ppeDir if needed.  It returns the number of files processed and stops at
// the first failure.
func SplitDir(inputDir, personDir, ppeDir string, log logrus.FieldLogger) (int, error) {

	log = orDiscard(log)

	for _, dir := range []string{personDir, ppeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("error creating output directory: %w", err)
		}
	}

	files, err := listFiles(inputDir, ".txt")

	if err != nil {
		return 0, err
	}

	for i, name := range files {

		person, ppe, err := SplitFile(filepath.Join(inputDir, name), personDir, ppeDir)

		if err != nil {
			return i, err
		}

		log.WithFields(logrus.Fields{
			"file":   name,
			"person": person,
			"ppe":    ppe,
		}).Info("Split labels")
	}

	return len(files), nil
}

func readLines(path string) ([]string, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening label file: %w", err)
	}

	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading label file: %w", err)
	}

	return lines, nil
}

// writeLines writes lines to path, nothing is written when lines is empty
func writeLines(path string, lines []string) error {

	if len(lines) == 0 {
		return nil
	}

	data := strings.Join(lines, "\n") + "\n"

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("error writing label file: %w", err)
	}

	return nil
}
