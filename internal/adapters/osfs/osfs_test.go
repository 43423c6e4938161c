package osfs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSetWritableToggles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission-bit semantics differ on windows")
	}

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a := New()

	writable, err := a.IsWritable(path)
	if err != nil {
		t.Fatalf("IsWritable failed: %v", err)
	}
	if !writable {
		t.Error("fresh 0644 file reported as not writable")
	}

	if err := a.SetWritable(path, false); err != nil {
		t.Fatalf("SetWritable(false) failed: %v", err)
	}
	writable, err = a.IsWritable(path)
	if err != nil {
		t.Fatalf("IsWritable failed: %v", err)
	}
	if writable {
		t.Error("file still writable after revoking")
	}

	if err := a.SetWritable(path, true); err != nil {
		t.Fatalf("SetWritable(true) failed: %v", err)
	}
	writable, err = a.IsWritable(path)
	if err != nil {
		t.Fatalf("IsWritable failed: %v", err)
	}
	if !writable {
		t.Error("file not writable after granting")
	}
}

func TestSetWritablePreservesOtherBits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission-bit semantics differ on windows")
	}

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "file.txt")
	if err := os.WriteFile(path, []byte("content"), 0755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a := New()
	if err := a.SetWritable(path, false); err != nil {
		t.Fatalf("SetWritable failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if got := info.Mode().Perm(); got != 0555 {
		t.Errorf("mode = %o, expected 0555", got)
	}
}

func TestIsHiddenDotName(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hidden is an attribute bit on windows, not a naming convention")
	}

	tempDir := t.TempDir()
	a := New()

	tests := []struct {
		name     string
		expected bool
	}{
		{".secret", true},
		{"visible.txt", false},
		{"dir/.config", true},
		{"dir/plain", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.name)
			hidden, err := a.IsHidden(path)
			if err != nil {
				t.Fatalf("IsHidden failed: %v", err)
			}
			if hidden != tt.expected {
				t.Errorf("IsHidden(%q) = %t, expected %t", tt.name, hidden, tt.expected)
			}
		})
	}
}

func TestSetHiddenIsNoOpOnUnix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("SetHidden mutates the attribute bit on windows")
	}

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "visible.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a := New()
	if err := a.SetHidden(path, true); err != nil {
		t.Fatalf("SetHidden failed: %v", err)
	}

	// The file keeps its name, so it stays visible
	hidden, err := a.IsHidden(path)
	if err != nil {
		t.Fatalf("IsHidden failed: %v", err)
	}
	if hidden {
		t.Error("SetHidden changed hiddenness on unix")
	}
}
