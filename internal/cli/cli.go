// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mkessler/zipsum/internal/config"
	"github.com/mkessler/zipsum/internal/manifest"
	"github.com/mkessler/zipsum/internal/ports"
	"github.com/mkessler/zipsum/internal/vault"
	"github.com/mkessler/zipsum/internal/zippack"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
	ConfigPath() string
	DefaultConfig() *config.Config
}

// PackService provides vault pack operations for the CLI.
type PackService interface {
	Pack(cfg *config.Config, archiver ports.Archiver, sourcePath string) vault.PackResult
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Injectable dependencies (nil means use defaults)
	ConfigSvc ConfigService
	Archiver  ports.Archiver
	PackSvc   PackService

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(code int) {},
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load() (*config.Config, error)      { return config.Load() }
func (d *defaultConfigService) Save(cfg *config.Config) error      { return cfg.Save() }
func (d *defaultConfigService) ConfigPath() string                 { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() *config.Config      { return config.DefaultConfig() }

// defaultPackService wraps the vault package functions.
type defaultPackService struct{}

func (d *defaultPackService) Pack(cfg *config.Config, archiver ports.Archiver, sourcePath string) vault.PackResult {
	return vault.Pack(cfg, archiver, sourcePath)
}

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) archiver() ports.Archiver {
	if c.Archiver != nil {
		return c.Archiver
	}
	return zippack.NewDefaultService()
}

func (c *CLI) packSvc() PackService {
	if c.PackSvc != nil {
		return c.PackSvc
	}
	return &defaultPackService{}
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	if len(c.Args) < 2 {
		fmt.Fprintln(c.Out, "No command specified. Use 'zipsum help' for usage.")
		return
	}

	switch c.Args[1] {
	case "pack":
		c.RunPack()
	case "unpack":
		c.RunUnpack()
	case "list":
		c.ListEntries()
	case "verify":
		c.RunVerify()
	case "init":
		c.InitConfig()
	case "status":
		c.ShowStatus()
	case "version", "-v", "--version":
		fmt.Fprintf(c.Out, "zipsum v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", c.Args[1])
		c.PrintUsage()
		c.Exit(1)
	}
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `zipsum - Checksummed Zip Archiver

Usage:
  zipsum                                   Launch interactive browser
  zipsum ui                                Launch interactive browser
  zipsum pack <src> [archive.zip]          Compress a file or directory
                                           (no archive: timestamped zip in the vault)
  zipsum unpack <archive.zip> [dest]       Extract an archive (default: current dir)
  zipsum list <archive.zip>                List archive entries
  zipsum verify <archive.zip>              Recompute the archive's content checksum
  zipsum status                            Show configuration
  zipsum init                              Create default config file
  zipsum version, -v                       Show version
  zipsum help, -h                          Show this help

Config: ~/.zipsum/config.yaml`)
}

// InitConfig creates the default config file.
func (c *CLI) InitConfig() {
	svc := c.configSvc()
	cfg := svc.DefaultConfig()
	if err := svc.Save(cfg); err != nil {
		fmt.Fprintf(c.Err, "Error saving config: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", svc.ConfigPath())
}

// RunPack runs the pack command. With an explicit archive path it compresses
// directly; without one it archives into the vault with a manifest entry.
func (c *CLI) RunPack() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: zipsum pack <src> [archive.zip]")
		c.Exit(1)
		return
	}

	src := c.Args[2]

	if len(c.Args) > 3 {
		archivePath := c.Args[3]
		checksum, err := c.archiver().Compress(src, archivePath)
		if err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
			c.Exit(1)
			return
		}
		size := int64(0)
		if info, err := os.Stat(archivePath); err == nil {
			size = info.Size()
		}
		fmt.Fprintf(c.Out, "%s %s %s checksum %s\n",
			c.green("*"),
			archivePath,
			c.yellow(vault.FormatSize(size)),
			c.cyan(fmt.Sprintf("%08x", checksum)))
		return
	}

	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return
	}

	result := c.packSvc().Pack(cfg, c.archiver(), src)
	switch {
	case result.Error != nil:
		fmt.Fprintf(c.Out, "  %s %s: %v\n", c.red("x"), result.Source, result.Error)
		c.Exit(1)
	case result.Skipped:
		fmt.Fprintf(c.Out, "  %s %s %s\n", c.gray("-"), c.gray(result.Source), c.gray("("+result.Reason+")"))
	default:
		fmt.Fprintf(c.Out, "  %s %s %s %d files checksum %s\n",
			c.green("*"),
			result.ZipPath,
			c.yellow(vault.FormatSize(result.Size)),
			result.FileCount,
			c.cyan(fmt.Sprintf("%08x", result.Checksum)))
	}
}

// RunUnpack runs the unpack command, verifying the extraction checksum
// against the manifest when one covers the archive.
func (c *CLI) RunUnpack() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: zipsum unpack <archive.zip> [dest]")
		c.Exit(1)
		return
	}

	archivePath := c.Args[2]
	dest := "."
	if len(c.Args) > 3 {
		dest = c.Args[3]
	}

	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return
	}

	checksum, err := c.archiver().Extract(archivePath, dest)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintf(c.Out, "%s Extracted to %s checksum %s\n",
		c.green("*"), dest, c.cyan(fmt.Sprintf("%08x", checksum)))

	if cfg.VerifyOnUnpack {
		if entry := manifest.LookupArchive(archivePath); entry != nil {
			if entry.CRC32 != checksum {
				fmt.Fprintf(c.Err, "Checksum mismatch: manifest has %08x, extraction computed %08x\n",
					entry.CRC32, checksum)
				c.Exit(1)
				return
			}
			fmt.Fprintf(c.Out, "%s Checksum matches manifest\n", c.green("*"))
		}
	}
}

// ListEntries lists all entries of an archive.
func (c *CLI) ListEntries() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: zipsum list <archive.zip>")
		c.Exit(1)
		return
	}

	archivePath := c.Args[2]
	entries, err := c.archiver().List(archivePath)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	if len(entries) == 0 {
		fmt.Fprintf(c.Out, "No entries in %s\n", archivePath)
		return
	}

	fmt.Fprintf(c.Out, "Entries in %s:\n\n", c.cyan(archivePath))
	fmt.Fprintf(c.Out, "  %10s %-16s %s\n", "SIZE", "MODIFIED", "NAME")
	fmt.Fprintf(c.Out, "  %10s %-16s %s\n", "----", "--------", "----")

	for _, e := range entries {
		size := vault.FormatSize(e.Size)
		if e.Dir {
			size = c.gray("-")
		}
		fmt.Fprintf(c.Out, "  %10s %-16s %s\n",
			size,
			e.Modified.Format("2006-01-02 15:04"),
			e.Name)
	}
}

// RunVerify recomputes an archive's content checksum and compares it against
// the manifest entry when one exists.
func (c *CLI) RunVerify() {
	if len(c.Args) < 3 {
		fmt.Fprintln(c.Out, "Usage: zipsum verify <archive.zip>")
		c.Exit(1)
		return
	}

	archivePath := c.Args[2]
	checksum, err := c.archiver().Checksum(archivePath)
	if err != nil {
		fmt.Fprintf(c.Err, "Verification failed: %v\n", err)
		c.Exit(1)
		return
	}

	entry := manifest.LookupArchive(archivePath)
	if entry == nil {
		fmt.Fprintf(c.Out, "Checksum %s (no manifest entry to compare)\n",
			c.cyan(fmt.Sprintf("%08x", checksum)))
		return
	}

	if entry.CRC32 != checksum {
		fmt.Fprintf(c.Err, "Checksum mismatch: manifest has %08x, archive yields %08x\n",
			entry.CRC32, checksum)
		c.Exit(1)
		return
	}

	fmt.Fprintf(c.Out, "%s Checksum verified for %s\n", c.green("*"), archivePath)
}

// ShowStatus shows the current configuration.
func (c *CLI) ShowStatus() {
	svc := c.configSvc()

	cfg, err := svc.Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintln(c.Out, "zipsum status:")
	fmt.Fprintf(c.Out, "  Vault:   %s\n", cfg.ArchiveDir)
	fmt.Fprintf(c.Out, "  Config:  %s\n", svc.ConfigPath())
	if cfg.VerifyOnUnpack {
		fmt.Fprintf(c.Out, "  Verify:  %s\n", c.green("on unpack"))
	} else {
		fmt.Fprintf(c.Out, "  Verify:  %s\n", c.gray("disabled"))
	}
	fmt.Fprintf(c.Out, "  Keep:    %d archives per source\n", cfg.Retention.KeepLast)
}
