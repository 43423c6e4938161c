// Package vault archives sources into timestamped zips under a per-source
// directory, with a manifest recording the checksum of every archive.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkessler/zipsum/internal/config"
	"github.com/mkessler/zipsum/internal/manifest"
	"github.com/mkessler/zipsum/internal/ports"
)

type PackResult struct {
	Source    string
	ZipPath   string
	Size      int64
	FileCount int
	Checksum  uint32
	Skipped   bool
	Reason    string
	Error     error
}

// ListSources returns the source names that have archives in the vault.
func ListSources(vaultDir string) ([]string, error) {
	entries, err := os.ReadDir(vaultDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			sources = append(sources, entry.Name())
		}
	}
	return sources, nil
}

// HasChanges checks if the tree at sourcePath changed since the last archive
func HasChanges(sourcePath string, last *manifest.Entry) (bool, string) {
	// If no previous archive, definitely has changes
	if last == nil {
		return true, "no previous archive"
	}

	// Check mtime of any file newer than the last archive
	hasNewer := false
	filepath.Walk(sourcePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.ModTime().After(last.CreatedAt) {
			hasNewer = true
			return filepath.SkipAll
		}
		return nil
	})

	if hasNewer {
		return true, "files modified since last archive"
	}
	return false, "no changes detected"
}

// Pack archives sourcePath into the vault as a timestamped zip, records a
// manifest entry and prunes old archives per retention. Unchanged sources
// are skipped.
func Pack(cfg *config.Config, archiver ports.Archiver, sourcePath string) PackResult {
	sourcePath = config.ExpandPath(sourcePath)
	vaultDir := config.ExpandPath(cfg.ArchiveDir)
	name := filepath.Base(sourcePath)

	result := PackResult{Source: sourcePath}

	// Check if the source exists
	if _, err := os.Stat(sourcePath); os.IsNotExist(err) {
		result.Error = fmt.Errorf("source not found: %s", sourcePath)
		return result
	}

	// Load manifest
	m, err := manifest.Load(vaultDir, name)
	if err != nil {
		result.Error = fmt.Errorf("loading manifest: %w", err)
		return result
	}
	m.Source = sourcePath

	// Check for changes
	hasChanges, reason := HasChanges(sourcePath, m.Latest())
	if !hasChanges {
		result.Skipped = true
		result.Reason = reason
		return result
	}

	// Generate zip filename
	timestamp := time.Now().Format("20060102-150405")
	zipName := fmt.Sprintf("%s.zip", timestamp)
	zipPath := filepath.Join(vaultDir, name, zipName)

	// Create the archive; the archiver creates missing parent directories
	checksum, err := archiver.Compress(sourcePath, zipPath)
	if err != nil {
		result.Error = fmt.Errorf("creating archive: %w", err)
		return result
	}

	// Get zip file info
	zipInfo, err := os.Stat(zipPath)
	if err != nil {
		result.Error = fmt.Errorf("stat archive: %w", err)
		return result
	}

	// Count file entries
	entries, err := archiver.List(zipPath)
	if err != nil {
		result.Error = fmt.Errorf("listing archive: %w", err)
		return result
	}
	fileCount := 0
	for _, e := range entries {
		if !e.Dir {
			fileCount++
		}
	}

	m.Add(manifest.Entry{
		File:      zipName,
		CRC32:     checksum,
		SizeBytes: zipInfo.Size(),
		CreatedAt: time.Now(),
		FileCount: fileCount,
	})

	// Prune old archives if retention is configured
	if cfg.Retention.KeepLast > 0 {
		_, _ = m.Prune(vaultDir, cfg.Retention.KeepLast)
	}

	// Save manifest
	if err := m.Save(vaultDir); err != nil {
		result.Error = fmt.Errorf("saving manifest: %w", err)
		return result
	}

	result.ZipPath = zipPath
	result.Size = zipInfo.Size()
	result.FileCount = fileCount
	result.Checksum = checksum
	result.Reason = reason

	return result
}

// FormatSize formats bytes as human-readable
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
