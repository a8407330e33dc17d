package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingClass is returned when a class name is not in the Vocabulary
var ErrMissingClass = errors.New("class not in vocabulary")

// Vocabulary is an ordered list of class names, a class id is its index
type Vocabulary []string

// LoadVocabulary reads whitespace separated class names from a classes.txt
// file
func LoadVocabulary(path string) (Vocabulary, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading vocabulary: %w", err)
	}

	return Vocabulary(strings.Fields(string(data))), nil
}

// Index returns the class id of name.  If a name occurs more than once the
// first position is used.
func (v Vocabulary) Index(name string) (int, error) {
	for i, n := range v {
		if n == name {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %q", ErrMissingClass, name)
}
