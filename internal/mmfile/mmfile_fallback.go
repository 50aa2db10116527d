//go:build !unix

package mmfile

import "os"

// Map reads the entire file into memory when mmap is not available for the
// current platform.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
