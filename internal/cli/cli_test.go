package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkessler/zipsum/internal/config"
	"github.com/mkessler/zipsum/internal/mocks"
	"github.com/mkessler/zipsum/internal/ports"
	"github.com/mkessler/zipsum/internal/vault"
)

// stubConfigService returns a fixed config without touching the filesystem.
type stubConfigService struct {
	cfg     *config.Config
	loadErr error
	saved   *config.Config
}

func (s *stubConfigService) Load() (*config.Config, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.cfg, nil
}
func (s *stubConfigService) Save(cfg *config.Config) error { s.saved = cfg; return nil }
func (s *stubConfigService) ConfigPath() string            { return "/tmp/.zipsum/config.yaml" }
func (s *stubConfigService) DefaultConfig() *config.Config { return config.DefaultConfig() }

// stubPackService returns a canned result.
type stubPackService struct {
	result vault.PackResult
	calls  []string
}

func (s *stubPackService) Pack(cfg *config.Config, archiver ports.Archiver, sourcePath string) vault.PackResult {
	s.calls = append(s.calls, sourcePath)
	return s.result
}

func newTestCLI(args ...string) (*CLI, *bytes.Buffer, *bytes.Buffer, *mocks.Archiver) {
	var out, errOut bytes.Buffer
	c := NewForTesting(&out, &errOut, append([]string{"zipsum"}, args...))
	archiver := mocks.NewArchiver()
	c.Archiver = archiver
	c.ConfigSvc = &stubConfigService{cfg: config.DefaultConfig()}
	return c, &out, &errOut, archiver
}

func TestRunNoCommand(t *testing.T) {
	c, out, _, _ := newTestCLI()
	c.Run()
	if !strings.Contains(out.String(), "No command specified") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	c, _, errOut, _ := newTestCLI("frobnicate")
	exitCode := -1
	c.Exit = func(code int) { exitCode = code }
	c.Run()

	if !strings.Contains(errOut.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if exitCode != 1 {
		t.Errorf("exit code = %d, expected 1", exitCode)
	}
}

func TestVersion(t *testing.T) {
	c, out, _, _ := newTestCLI("version")
	c.Run()
	if !strings.Contains(out.String(), "zipsum vtest") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHelpListsCommands(t *testing.T) {
	c, out, _, _ := newTestCLI("help")
	c.Run()
	for _, cmd := range []string{"pack", "unpack", "list", "verify", "status", "init"} {
		if !strings.Contains(out.String(), cmd) {
			t.Errorf("usage missing command %q", cmd)
		}
	}
}

func TestPackDirectMode(t *testing.T) {
	c, out, _, archiver := newTestCLI("pack", "/src/tree", "/tmp/out.zip")
	archiver.ChecksumResult = 0xABCD1234
	c.Run()

	if len(archiver.CompressCalls) != 1 {
		t.Fatalf("Compress calls = %d, expected 1", len(archiver.CompressCalls))
	}
	call := archiver.CompressCalls[0]
	if call.InputPath != "/src/tree" || call.ArchivePath != "/tmp/out.zip" {
		t.Errorf("Compress called with %+v", call)
	}
	if !strings.Contains(out.String(), "abcd1234") {
		t.Errorf("output missing checksum: %q", out.String())
	}
}

func TestPackDirectModeError(t *testing.T) {
	c, _, errOut, archiver := newTestCLI("pack", "/src/tree", "/tmp/out.zip")
	archiver.Errors["Compress"] = errors.New("boom")
	exitCode := -1
	c.Exit = func(code int) { exitCode = code }
	c.Run()

	if !strings.Contains(errOut.String(), "boom") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if exitCode != 1 {
		t.Errorf("exit code = %d, expected 1", exitCode)
	}
}

func TestPackVaultMode(t *testing.T) {
	c, out, _, _ := newTestCLI("pack", "/src/tree")
	packSvc := &stubPackService{result: vault.PackResult{
		Source:    "/src/tree",
		ZipPath:   "/vault/tree/20260101-120000.zip",
		Size:      2048,
		FileCount: 3,
		Checksum:  0xCAFEF00D,
	}}
	c.PackSvc = packSvc
	c.Run()

	if len(packSvc.calls) != 1 || packSvc.calls[0] != "/src/tree" {
		t.Errorf("Pack calls = %v", packSvc.calls)
	}
	if !strings.Contains(out.String(), "cafef00d") {
		t.Errorf("output missing checksum: %q", out.String())
	}
	if !strings.Contains(out.String(), "3 files") {
		t.Errorf("output missing file count: %q", out.String())
	}
}

func TestPackVaultModeSkipped(t *testing.T) {
	c, out, _, _ := newTestCLI("pack", "/src/tree")
	c.PackSvc = &stubPackService{result: vault.PackResult{
		Source:  "/src/tree",
		Skipped: true,
		Reason:  "no changes detected",
	}}
	c.Run()

	if !strings.Contains(out.String(), "no changes detected") {
		t.Errorf("output = %q", out.String())
	}
}

func TestPackMissingArgs(t *testing.T) {
	c, out, _, _ := newTestCLI("pack")
	exitCode := -1
	c.Exit = func(code int) { exitCode = code }
	c.Run()

	if !strings.Contains(out.String(), "Usage: zipsum pack") {
		t.Errorf("output = %q", out.String())
	}
	if exitCode != 1 {
		t.Errorf("exit code = %d, expected 1", exitCode)
	}
}

func TestUnpackDefaultsToCurrentDir(t *testing.T) {
	c, out, _, archiver := newTestCLI("unpack", "/tmp/out.zip")
	archiver.ChecksumResult = 0x12345678
	c.Run()

	if len(archiver.ExtractCalls) != 1 {
		t.Fatalf("Extract calls = %d, expected 1", len(archiver.ExtractCalls))
	}
	call := archiver.ExtractCalls[0]
	if call.ArchivePath != "/tmp/out.zip" || call.DestRoot != "." {
		t.Errorf("Extract called with %+v", call)
	}
	if !strings.Contains(out.String(), "12345678") {
		t.Errorf("output missing checksum: %q", out.String())
	}
}

func TestUnpackExplicitDest(t *testing.T) {
	c, _, _, archiver := newTestCLI("unpack", "/tmp/out.zip", "/restore/here")
	c.Run()

	if len(archiver.ExtractCalls) != 1 || archiver.ExtractCalls[0].DestRoot != "/restore/here" {
		t.Errorf("Extract calls = %+v", archiver.ExtractCalls)
	}
}

func TestUnpackError(t *testing.T) {
	c, _, errOut, archiver := newTestCLI("unpack", "/tmp/out.zip")
	archiver.Errors["Extract"] = errors.New("corrupt archive")
	exitCode := -1
	c.Exit = func(code int) { exitCode = code }
	c.Run()

	if !strings.Contains(errOut.String(), "corrupt archive") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if exitCode != 1 {
		t.Errorf("exit code = %d, expected 1", exitCode)
	}
}

func TestListEntries(t *testing.T) {
	c, out, _, archiver := newTestCLI("list", "/tmp/out.zip")
	archiver.ListResults["/tmp/out.zip"] = []ports.EntryInfo{
		{Name: "src/", Dir: true, Modified: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)},
		{Name: "src/main.go", Size: 512, Modified: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)},
	}
	c.Run()

	if !strings.Contains(out.String(), "src/main.go") {
		t.Errorf("output missing file entry: %q", out.String())
	}
	if !strings.Contains(out.String(), "512 B") {
		t.Errorf("output missing size: %q", out.String())
	}
}

func TestListEmptyArchive(t *testing.T) {
	c, out, _, _ := newTestCLI("list", "/tmp/out.zip")
	c.Run()
	if !strings.Contains(out.String(), "No entries") {
		t.Errorf("output = %q", out.String())
	}
}

func TestVerifyWithoutManifest(t *testing.T) {
	c, out, _, archiver := newTestCLI("verify", "/tmp/standalone.zip")
	archiver.ChecksumResult = 0xFEEDBEEF
	c.Run()

	if len(archiver.ChecksumCalls) != 1 {
		t.Fatalf("Checksum calls = %d, expected 1", len(archiver.ChecksumCalls))
	}
	if !strings.Contains(out.String(), "feedbeef") {
		t.Errorf("output missing checksum: %q", out.String())
	}
	if !strings.Contains(out.String(), "no manifest entry") {
		t.Errorf("output = %q", out.String())
	}
}

func TestVerifyError(t *testing.T) {
	c, _, errOut, archiver := newTestCLI("verify", "/tmp/out.zip")
	archiver.Errors["Checksum"] = errors.New("unreadable")
	exitCode := -1
	c.Exit = func(code int) { exitCode = code }
	c.Run()

	if !strings.Contains(errOut.String(), "Verification failed") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if exitCode != 1 {
		t.Errorf("exit code = %d, expected 1", exitCode)
	}
}

func TestInitSavesDefaultConfig(t *testing.T) {
	c, out, _, _ := newTestCLI("init")
	svc := &stubConfigService{cfg: config.DefaultConfig()}
	c.ConfigSvc = svc
	c.Run()

	if svc.saved == nil {
		t.Fatal("config not saved")
	}
	if !strings.Contains(out.String(), "Created config at") {
		t.Errorf("output = %q", out.String())
	}
}

func TestStatusShowsConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ArchiveDir = "/the/vault"
	c, out, _, _ := newTestCLI("status")
	c.ConfigSvc = &stubConfigService{cfg: cfg}
	c.Run()

	if !strings.Contains(out.String(), "/the/vault") {
		t.Errorf("output missing vault dir: %q", out.String())
	}
	if !strings.Contains(out.String(), "on unpack") {
		t.Errorf("output missing verify mode: %q", out.String())
	}
}

func TestStatusConfigLoadError(t *testing.T) {
	c, _, errOut, _ := newTestCLI("status")
	c.ConfigSvc = &stubConfigService{loadErr: errors.New("bad yaml")}
	exitCode := -1
	c.Exit = func(code int) { exitCode = code }
	c.Run()

	if !strings.Contains(errOut.String(), "bad yaml") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if exitCode != 1 {
		t.Errorf("exit code = %d, expected 1", exitCode)
	}
}
