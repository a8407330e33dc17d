//go:build linux

package ppecascade

import (
	"fmt"
	"golang.org/x/sys/unix"
)

// SetCPUAffinity pins the program to run on the given CPU cores, eg: on a
// big.LITTLE board pass the fast cores to keep inference off the slow ones
func SetCPUAffinity(cores []int) error {

	var set unix.CPUSet

	for _, core := range cores {
		set.Set(core)
	}

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// GetCPUAffinity gets the CPU cores the program is allowed to run on
func GetCPUAffinity() ([]int, error) {

	var set unix.CPUSet

	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	cores := make([]int, 0, set.Count())

	for core := 0; len(cores) < set.Count(); core++ {
		if set.IsSet(core) {
			cores = append(cores, core)
		}
	}

	return cores, nil
}
