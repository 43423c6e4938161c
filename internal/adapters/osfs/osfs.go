// Package osfs provides the attribute adapter backed by the real filesystem.
// The hidden attribute is platform-specific and lives in the build-tagged
// files; the writable bit is plain permission handling.
package osfs

import (
	"os"

	"github.com/mkessler/zipsum/internal/ports"
)

// OSAttributes implements ports.Attributes using os and, on Windows,
// golang.org/x/sys/windows.
type OSAttributes struct{}

// New creates a new OSAttributes adapter.
func New() *OSAttributes {
	return &OSAttributes{}
}

// IsWritable reports whether the owner write bit is set.
func (a *OSAttributes) IsWritable(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().Perm()&0200 != 0, nil
}

// SetWritable grants the owner write bit or revokes all write bits, leaving
// the rest of the mode untouched.
func (a *OSAttributes) SetWritable(path string, writable bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if writable {
		mode |= 0200
	} else {
		mode &^= 0222
	}
	return os.Chmod(path, mode)
}

// Compile-time check that OSAttributes implements ports.Attributes.
var _ ports.Attributes = (*OSAttributes)(nil)
