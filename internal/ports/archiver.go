// Package ports defines interfaces (contracts) for the pieces the CLI and TUI
// depend on. These enable dependency injection and testability via mock
// implementations.
package ports

import "time"

// Archiver abstracts zip pack/unpack operations for testability.
// Production code uses the zippack service; tests use mocks.Archiver.
type Archiver interface {
	// Compress packages the file or directory at inputPath into a zip archive
	// at archivePath. Returns the CRC32 checksum of all file bytes written.
	Compress(inputPath, archivePath string) (uint32, error)

	// Extract recreates the archive's file tree under destRoot. Returns the
	// CRC32 checksum of all file bytes read, which equals the checksum the
	// matching Compress reported.
	Extract(archivePath, destRoot string) (uint32, error)

	// Checksum computes the CRC32 an extraction of the archive would report,
	// without writing anything to disk.
	Checksum(archivePath string) (uint32, error)

	// List returns metadata for every entry in the archive, in stream order.
	List(archivePath string) ([]EntryInfo, error)
}

// EntryInfo contains metadata about one archive entry.
type EntryInfo struct {
	Name     string
	Dir      bool
	Size     int64
	Modified time.Time
}
