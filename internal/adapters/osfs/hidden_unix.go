//go:build !windows

package osfs

import (
	"path/filepath"
	"strings"
)

// IsHidden reports whether the base name is dot-prefixed. On unix hiddenness
// is a naming convention, not an attribute bit.
func (a *OSAttributes) IsHidden(path string) (bool, error) {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, "."), nil
}

// SetHidden is a no-op on unix: hiddenness lives in the file name, and
// renaming a file to toggle it would change its identity.
func (a *OSAttributes) SetHidden(path string, hidden bool) error {
	return nil
}
