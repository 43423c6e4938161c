// Package zippack packs a file tree into a zip archive and unpacks it back,
// computing a CRC32 checksum over every file byte moved in either direction.
// Compressing a tree and extracting the resulting archive report the same
// checksum, since both fold the identical sequence of content chunks.
package zippack

import (
	"archive/zip"
	"compress/flate"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkessler/zipsum/internal/adapters/osfs"
	"github.com/mkessler/zipsum/internal/ports"
)

// Precondition failures, distinguishable with errors.Is. Underlying
// read/write/attribute failures propagate wrapped but unclassified.
var (
	// ErrNotFound means the declared input path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTarget means a path exists with the wrong type: a directory
	// where an archive file is expected, or a regular file where a directory
	// is expected.
	ErrInvalidTarget = errors.New("invalid target")
)

// Service implements ports.Archiver against the real filesystem. Hidden and
// read-only attribute handling goes through the injected port so the
// relax/restore sequencing stays testable.
type Service struct {
	attrs ports.Attributes
}

// NewService creates an archiver service with the given attribute adapter.
func NewService(attrs ports.Attributes) *Service {
	return &Service{attrs: attrs}
}

// NewDefaultService creates an archiver service with the real platform
// attribute adapter.
func NewDefaultService() *Service {
	return NewService(osfs.New())
}

// Compress packages the file or directory at inputPath into a zip archive at
// archivePath and returns the CRC32 checksum of all file bytes written.
// Missing parent directories of archivePath are created. Entries are written
// in depth-first pre-order, one per file or directory, with directory entries
// marked by a trailing slash. On failure no cleanup is attempted; a truncated
// archive may remain at archivePath.
func (s *Service) Compress(inputPath, archivePath string) (uint32, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: source %s", ErrNotFound, inputPath)
		}
		return 0, fmt.Errorf("stat source: %w", err)
	}

	if out, err := os.Stat(archivePath); err == nil {
		if out.IsDir() {
			return 0, fmt.Errorf("%w: %s is a directory", ErrInvalidTarget, archivePath)
		}
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("stat target: %w", err)
	}

	if dir := filepath.Dir(archivePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("creating target directory: %w", err)
		}
	}

	zipFile, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}

	w := zip.NewWriter(zipFile)
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	sum := crc32.NewIEEE()
	walkErr := writeTree(w, "", inputPath, info, sum)

	// Close the zip writer first to flush the central directory, then the
	// file, on the error path too.
	if closeErr := w.Close(); closeErr != nil && walkErr == nil {
		walkErr = fmt.Errorf("closing zip writer: %w", closeErr)
	}
	if closeErr := zipFile.Close(); closeErr != nil && walkErr == nil {
		walkErr = fmt.Errorf("closing archive: %w", closeErr)
	}
	if walkErr != nil {
		return 0, walkErr
	}

	return sum.Sum32(), nil
}

// writeTree emits one entry for the node at path and recurses into children.
// prefix is the archive path of the parent node, empty at the root, so the
// root node itself becomes an entry.
func writeTree(w *zip.Writer, prefix, path string, info os.FileInfo, sum hash.Hash32) error {
	name := info.Name()
	if prefix != "" {
		name = prefix + "/" + name
	}

	if info.IsDir() {
		hdr := &zip.FileHeader{
			Name:     name + "/",
			Modified: info.ModTime(),
		}
		if _, err := w.CreateHeader(hdr); err != nil {
			return fmt.Errorf("adding directory entry %s: %w", name, err)
		}

		children, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("reading directory %s: %w", path, err)
		}
		for _, child := range children {
			childInfo, err := child.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", filepath.Join(path, child.Name()), err)
			}
			if err := writeTree(w, name, filepath.Join(path, child.Name()), childInfo, sum); err != nil {
				return err
			}
		}
		return nil
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("building header for %s: %w", name, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	dst, err := w.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding file entry %s: %w", name, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	copyErr := copyChunks(dst, src, sum)
	src.Close()
	if copyErr != nil {
		return fmt.Errorf("writing %s: %w", name, copyErr)
	}
	return nil
}

// Extract recreates the archive's file tree under destRoot and returns the
// CRC32 checksum of all file bytes read. destRoot and missing ancestors are
// created on demand. A destination file that already exists keeps its hidden
// and read-only attributes across the overwrite. On failure no cleanup is
// attempted; partially extracted files may remain under destRoot.
func (s *Service) Extract(archivePath, destRoot string) (uint32, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: archive %s", ErrNotFound, archivePath)
		}
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", ErrInvalidTarget, archivePath)
	}

	if out, err := os.Stat(destRoot); err == nil {
		if !out.IsDir() {
			return 0, fmt.Errorf("%w: %s is not a directory", ErrInvalidTarget, destRoot)
		}
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("stat target: %w", err)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	absRoot, err := filepath.Abs(destRoot)
	if err != nil {
		return 0, fmt.Errorf("resolving target path: %w", err)
	}
	absRoot = filepath.Clean(absRoot)

	sum := crc32.NewIEEE()
	for _, f := range r.File {
		if err := s.extractEntry(f, destRoot, absRoot, sum); err != nil {
			return 0, err
		}
	}

	return sum.Sum32(), nil
}

// extractEntry recreates a single archive entry under destRoot and applies
// the entry's modification time, whether the file was created or reused.
func (s *Service) extractEntry(f *zip.File, destRoot, absRoot string, sum hash.Hash32) error {
	target := filepath.Join(destRoot, normalizeName(f.Name))
	if !isWithinDir(absRoot, target) {
		return fmt.Errorf("entry escapes target directory: %s", f.Name)
	}

	if isDirEntry(f) {
		if err := os.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return applyModTime(target, f.Modified)
	}

	exists := true
	if _, err := os.Stat(target); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", target, err)
		}
		exists = false
	}
	if !exists {
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating parent directory for %s: %w", target, err)
		}
	}

	if err := s.overwrite(f, target, exists, sum); err != nil {
		return err
	}
	return applyModTime(target, f.Modified)
}

// overwrite streams the entry content into target. For a pre-existing file
// the attribute sequence is exactly: clear-hidden, clear-readonly, write,
// restore-readonly, restore-hidden. Hidden stays outermost so the file is
// never writable while it should already be hidden again. Restoration runs
// on every exit path, including a failed write.
func (s *Service) overwrite(f *zip.File, target string, exists bool, sum hash.Hash32) (err error) {
	if exists {
		wasHidden, aerr := s.attrs.IsHidden(target)
		if aerr != nil {
			return fmt.Errorf("reading hidden attribute of %s: %w", target, aerr)
		}
		if wasHidden {
			if aerr := s.attrs.SetHidden(target, false); aerr != nil {
				return fmt.Errorf("clearing hidden attribute of %s: %w", target, aerr)
			}
			defer func() {
				if aerr := s.attrs.SetHidden(target, true); aerr != nil && err == nil {
					err = fmt.Errorf("restoring hidden attribute of %s: %w", target, aerr)
				}
			}()
		}

		writable, aerr := s.attrs.IsWritable(target)
		if aerr != nil {
			return fmt.Errorf("reading write permission of %s: %w", target, aerr)
		}
		if !writable {
			if aerr := s.attrs.SetWritable(target, true); aerr != nil {
				return fmt.Errorf("granting write permission on %s: %w", target, aerr)
			}
			defer func() {
				if aerr := s.attrs.SetWritable(target, false); aerr != nil && err == nil {
					err = fmt.Errorf("revoking write permission on %s: %w", target, aerr)
				}
			}()
		}
	}

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	src, err := f.Open()
	if err != nil {
		dst.Close()
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}

	copyErr := copyChunks(dst, src, sum)
	src.Close()
	if closeErr := dst.Close(); copyErr == nil && closeErr != nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("writing %s: %w", target, copyErr)
	}
	return nil
}

// Checksum re-reads every file entry of the archive and returns the CRC32 an
// extraction would report, without touching the destination filesystem.
func (s *Service) Checksum(archivePath string) (uint32, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: archive %s", ErrNotFound, archivePath)
		}
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", ErrInvalidTarget, archivePath)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	sum := crc32.NewIEEE()
	for _, f := range r.File {
		if isDirEntry(f) {
			continue
		}
		src, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("opening entry %s: %w", f.Name, err)
		}
		copyErr := copyChunks(io.Discard, src, sum)
		src.Close()
		if copyErr != nil {
			return 0, fmt.Errorf("reading entry %s: %w", f.Name, copyErr)
		}
	}

	return sum.Sum32(), nil
}

// List returns metadata for every entry in the archive, in stream order.
func (s *Service) List(archivePath string) ([]ports.EntryInfo, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	entries := make([]ports.EntryInfo, 0, len(r.File))
	for _, f := range r.File {
		// Sizes beyond the int64 range report as 0
		size := int64(0)
		if f.UncompressedSize64 <= math.MaxInt64 {
			size = int64(f.UncompressedSize64)
		}
		entries = append(entries, ports.EntryInfo{
			Name:     f.Name,
			Dir:      isDirEntry(f),
			Size:     size,
			Modified: f.Modified,
		})
	}
	return entries, nil
}

// normalizeName maps the stored entry path, delimited with either slash
// flavor, onto the host separator.
func normalizeName(name string) string {
	sep := string(filepath.Separator)
	name = strings.ReplaceAll(name, "/", sep)
	name = strings.ReplaceAll(name, `\`, sep)
	return name
}

// isDirEntry reports whether the entry denotes a directory, marked by a
// trailing path delimiter.
func isDirEntry(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || strings.HasSuffix(f.Name, `\`)
}

// applyModTime sets the stored modification time, skipping entries that
// carry none.
func applyModTime(path string, modified time.Time) error {
	if modified.IsZero() {
		return nil
	}
	if err := os.Chtimes(path, modified, modified); err != nil {
		return fmt.Errorf("setting modification time of %s: %w", path, err)
	}
	return nil
}

// isWithinDir checks if the target path is within the base directory.
func isWithinDir(absBaseDir, targetPath string) bool {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	absTarget = filepath.Clean(absTarget)

	return strings.HasPrefix(absTarget, absBaseDir+string(filepath.Separator)) ||
		absTarget == absBaseDir
}

// Compile-time check that Service implements ports.Archiver.
var _ ports.Archiver = (*Service)(nil)

// ============================================================================
// Package-level functions using the default service
// ============================================================================

var defaultService = NewDefaultService()

// Compress packages inputPath into a zip archive at archivePath using the
// default platform attribute adapter.
func Compress(inputPath, archivePath string) (uint32, error) {
	return defaultService.Compress(inputPath, archivePath)
}

// Extract recreates the archive under destRoot using the default platform
// attribute adapter.
func Extract(archivePath, destRoot string) (uint32, error) {
	return defaultService.Extract(archivePath, destRoot)
}

// Checksum computes the extraction checksum of the archive without writing.
func Checksum(archivePath string) (uint32, error) {
	return defaultService.Checksum(archivePath)
}

// List returns metadata for every entry in the archive.
func List(archivePath string) ([]ports.EntryInfo, error) {
	return defaultService.List(archivePath)
}
