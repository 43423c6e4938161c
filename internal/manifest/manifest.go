package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry describes one archive recorded in a vault manifest.
type Entry struct {
	File      string    `json:"file"`
	CRC32     uint32    `json:"crc32"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	FileCount int       `json:"file_count"`
}

// Manifest records the archives created for one source, oldest first.
type Manifest struct {
	Name    string  `json:"name"`
	Source  string  `json:"source"`
	Entries []Entry `json:"entries"`
}

func Path(vaultDir, name string) string {
	return filepath.Join(vaultDir, name, "manifest.json")
}

func Load(vaultDir, name string) (*Manifest, error) {
	path := Path(vaultDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{
				Name:    name,
				Entries: []Entry{},
			}, nil
		}
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *Manifest) Save(vaultDir string) error {
	path := Path(vaultDir, m.Name)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (m *Manifest) Add(entry Entry) {
	m.Entries = append(m.Entries, entry)
}

func (m *Manifest) Latest() *Entry {
	if len(m.Entries) == 0 {
		return nil
	}
	return &m.Entries[len(m.Entries)-1]
}

// Find returns the entry for the given archive file name, or nil.
func (m *Manifest) Find(file string) *Entry {
	for i := range m.Entries {
		if m.Entries[i].File == file {
			return &m.Entries[i]
		}
	}
	return nil
}

// Prune removes old archives exceeding the keepLast limit.
// Returns the list of deleted files and any error.
func (m *Manifest) Prune(vaultDir string, keepLast int) ([]string, error) {
	if keepLast <= 0 || len(m.Entries) <= keepLast {
		return nil, nil
	}

	// Entries are ordered oldest to newest
	toRemove := len(m.Entries) - keepLast
	var deleted []string

	for i := 0; i < toRemove; i++ {
		entry := m.Entries[i]
		zipPath := filepath.Join(vaultDir, m.Name, entry.File)

		if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
			// Continue on error but leave the file listed
			continue
		}
		deleted = append(deleted, entry.File)
	}

	// Keep only the recent entries
	m.Entries = m.Entries[toRemove:]

	return deleted, nil
}

// LookupArchive finds the manifest entry for an archive laid out as
// <vaultDir>/<name>/<file>.zip with a manifest.json beside it. Returns nil
// when no manifest or no matching entry exists.
func LookupArchive(archivePath string) *Entry {
	sourceDir := filepath.Dir(archivePath)
	vaultDir := filepath.Dir(sourceDir)
	name := filepath.Base(sourceDir)

	m, err := Load(vaultDir, name)
	if err != nil {
		return nil
	}
	return m.Find(filepath.Base(archivePath))
}
