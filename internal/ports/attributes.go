package ports

// Attributes abstracts the platform attribute bits that get relaxed and
// restored around overwrites of pre-existing files.
// Production code uses the osfs adapter; tests use mocks.Attributes.
type Attributes interface {
	// IsHidden reports whether the file at path carries the hidden attribute.
	IsHidden(path string) (bool, error)

	// SetHidden sets or clears the hidden attribute.
	SetHidden(path string, hidden bool) error

	// IsWritable reports whether the file at path may be opened for writing.
	IsWritable(path string) (bool, error)

	// SetWritable grants or revokes write permission.
	SetWritable(path string, writable bool) error
}
