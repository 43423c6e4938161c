// Package mocks provides mock implementations of the ports interfaces for
// testing.
package mocks

import (
	"github.com/mkessler/zipsum/internal/ports"
)

// Archiver implements ports.Archiver for testing.
type Archiver struct {
	// CompressCalls records calls to Compress
	CompressCalls []CompressCall
	// ExtractCalls records calls to Extract
	ExtractCalls []ExtractCall
	// ChecksumCalls records the archive paths passed to Checksum
	ChecksumCalls []string
	// ListResults maps archive paths to entry listings
	ListResults map[string][]ports.EntryInfo
	// Errors maps method names to errors
	Errors map[string]error
	// ChecksumResult is the checksum returned by all three checksum-bearing
	// methods
	ChecksumResult uint32
}

// CompressCall records parameters of a Compress call.
type CompressCall struct {
	InputPath   string
	ArchivePath string
}

// ExtractCall records parameters of an Extract call.
type ExtractCall struct {
	ArchivePath string
	DestRoot    string
}

// NewArchiver creates a new mock archiver.
func NewArchiver() *Archiver {
	return &Archiver{
		ListResults: make(map[string][]ports.EntryInfo),
		Errors:      make(map[string]error),
	}
}

// Compress records the call and returns the configured checksum.
func (m *Archiver) Compress(inputPath, archivePath string) (uint32, error) {
	m.CompressCalls = append(m.CompressCalls, CompressCall{
		InputPath:   inputPath,
		ArchivePath: archivePath,
	})
	if err, ok := m.Errors["Compress"]; ok {
		return 0, err
	}
	return m.ChecksumResult, nil
}

// Extract records the call and returns the configured checksum.
func (m *Archiver) Extract(archivePath, destRoot string) (uint32, error) {
	m.ExtractCalls = append(m.ExtractCalls, ExtractCall{
		ArchivePath: archivePath,
		DestRoot:    destRoot,
	})
	if err, ok := m.Errors["Extract"]; ok {
		return 0, err
	}
	return m.ChecksumResult, nil
}

// Checksum records the call and returns the configured checksum.
func (m *Archiver) Checksum(archivePath string) (uint32, error) {
	m.ChecksumCalls = append(m.ChecksumCalls, archivePath)
	if err, ok := m.Errors["Checksum"]; ok {
		return 0, err
	}
	return m.ChecksumResult, nil
}

// List returns the configured listing for the archive.
func (m *Archiver) List(archivePath string) ([]ports.EntryInfo, error) {
	if err, ok := m.Errors["List"]; ok {
		return nil, err
	}
	if result, ok := m.ListResults[archivePath]; ok {
		return result, nil
	}
	return []ports.EntryInfo{}, nil
}

// Compile-time check that Archiver implements ports.Archiver.
var _ ports.Archiver = (*Archiver)(nil)
