package ppecascade

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseCPUList parses a list of CPU core numbers such as "4-7" or "0,2,4-5"
// into a sorted list of unique cores
func ParseCPUList(s string) ([]int, error) {

	seen := make(map[int]bool)

	for _, part := range strings.Split(s, ",") {

		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(strings.TrimSpace(lo))

		if err != nil || first < 0 {
			return nil, fmt.Errorf("invalid cpu core %q", part)
		}

		last := first

		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(hi))

			if err != nil || last < first {
				return nil, fmt.Errorf("invalid cpu core range %q", part)
			}
		}

		for core := first; core <= last; core++ {
			seen[core] = true
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no cpu cores given")
	}

	cores := make([]int, 0, len(seen))

	for core := range seen {
		cores = append(cores, core)
	}

	sort.Ints(cores)

	return cores, nil
}
