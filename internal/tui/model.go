package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mkessler/zipsum/internal/config"
	"github.com/mkessler/zipsum/internal/manifest"
	"github.com/mkessler/zipsum/internal/ports"
	"github.com/mkessler/zipsum/internal/vault"
	"github.com/mkessler/zipsum/internal/zippack"
)

// View represents the current view state
type View int

const (
	ArchivesView View = iota
	EntriesView
)

// ArchiveItem represents one archive in the vault
type ArchiveItem struct {
	Source    string
	File      string
	Path      string
	Size      int64
	FileCount int
	CRC32     uint32
	CreatedAt time.Time
}

// Model is the main TUI model
type Model struct {
	config   *config.Config
	archiver ports.Archiver
	view     View
	width    int
	height   int
	quitting bool

	// Archives view
	archives      []ArchiveItem
	archiveCursor int
	selected      ArchiveItem

	// Entries view
	entries     []ports.EntryInfo
	entryScroll int

	// Status message
	statusMsg string
	statusErr bool
}

// Key bindings
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Back   key.Binding
	Verify key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Verify: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "verify"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// NewModel creates a new TUI model over the configured vault.
func NewModel(cfg *config.Config, archiver ports.Archiver) (*Model, error) {
	m := &Model{
		config:   cfg,
		archiver: archiver,
		view:     ArchivesView,
	}

	if err := m.loadArchives(); err != nil {
		return nil, err
	}

	return m, nil
}

// loadArchives loads every archive in the vault, newest first per source
func (m *Model) loadArchives() error {
	vaultDir := config.ExpandPath(m.config.ArchiveDir)

	sources, err := vault.ListSources(vaultDir)
	if err != nil {
		return err
	}

	m.archives = nil
	for _, name := range sources {
		mf, err := manifest.Load(vaultDir, name)
		if err != nil {
			continue
		}
		for i := len(mf.Entries) - 1; i >= 0; i-- {
			e := mf.Entries[i]
			m.archives = append(m.archives, ArchiveItem{
				Source:    name,
				File:      e.File,
				Path:      filepath.Join(vaultDir, name, e.File),
				Size:      e.SizeBytes,
				FileCount: e.FileCount,
				CRC32:     e.CRC32,
				CreatedAt: e.CreatedAt,
			})
		}
	}

	return nil
}

// loadEntries loads the entry listing of the selected archive
func (m *Model) loadEntries() error {
	entries, err := m.archiver.List(m.selected.Path)
	if err != nil {
		return err
	}
	m.entries = entries
	m.entryScroll = 0
	return nil
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.statusMsg = msg.msg
		m.statusErr = msg.err
		return m, nil

	case tea.KeyMsg:
		// Clear status on any key
		m.statusMsg = ""
		m.statusErr = false

		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)

		case key.Matches(msg, keys.Down):
			m.moveCursor(1)

		case key.Matches(msg, keys.Enter):
			if m.view == ArchivesView && len(m.archives) > 0 {
				m.selected = m.archives[m.archiveCursor]
				if err := m.loadEntries(); err != nil {
					m.statusMsg = fmt.Sprintf("Error: %v", err)
					m.statusErr = true
				} else {
					m.view = EntriesView
				}
			}

		case key.Matches(msg, keys.Back):
			if m.view == EntriesView {
				m.view = ArchivesView
				m.entries = nil
				m.entryScroll = 0
			}

		case key.Matches(msg, keys.Verify):
			return m, m.runVerify()
		}
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	switch m.view {
	case ArchivesView:
		m.archiveCursor += delta
		if m.archiveCursor < 0 {
			m.archiveCursor = 0
		}
		if m.archiveCursor >= len(m.archives) {
			m.archiveCursor = len(m.archives) - 1
		}
	case EntriesView:
		m.entryScroll += delta
		if m.entryScroll < 0 {
			m.entryScroll = 0
		}
		maxScroll := len(m.entries) - (m.height - 10)
		if maxScroll < 0 {
			maxScroll = 0
		}
		if m.entryScroll > maxScroll {
			m.entryScroll = maxScroll
		}
	}
}

func (m *Model) runVerify() tea.Cmd {
	var item ArchiveItem
	if m.view == ArchivesView && len(m.archives) > 0 {
		item = m.archives[m.archiveCursor]
	} else if m.view == EntriesView {
		item = m.selected
	} else {
		return nil
	}

	return func() tea.Msg {
		checksum, err := m.archiver.Checksum(item.Path)
		if err != nil {
			return statusMsg{err: true, msg: fmt.Sprintf("Verify failed: %v", err)}
		}
		if checksum != item.CRC32 {
			return statusMsg{err: true, msg: fmt.Sprintf("✗ Checksum mismatch: manifest %08x, archive %08x", item.CRC32, checksum)}
		}
		return statusMsg{msg: fmt.Sprintf("✓ %s verified (%08x)", item.File, checksum)}
	}
}

type statusMsg struct {
	msg string
	err bool
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.view {
	case ArchivesView:
		content = m.renderArchivesView()
	case EntriesView:
		content = m.renderEntriesView()
	}

	return appStyle.Render(content)
}

func (m *Model) renderArchivesView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" zipsum "))
	b.WriteString("\n\n")

	header := fmt.Sprintf("  %-20s %-20s %10s %8s %s",
		"SOURCE", "ARCHIVE", "SIZE", "FILES", "CREATED")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 76)))
	b.WriteString("\n")

	if len(m.archives) == 0 {
		b.WriteString(dimStyle.Render("  (vault is empty, run 'zipsum pack <src>' first)"))
		b.WriteString("\n")
	}

	visibleHeight := m.height - 10
	if visibleHeight < 5 {
		visibleHeight = 5
	}
	start := 0
	if m.archiveCursor >= visibleHeight {
		start = m.archiveCursor - visibleHeight + 1
	}

	for i := start; i < len(m.archives) && i < start+visibleHeight; i++ {
		a := m.archives[i]
		line := fmt.Sprintf("%-20s %-20s %10s %8d %s",
			truncate(a.Source, 20),
			truncate(a.File, 20),
			vault.FormatSize(a.Size),
			a.FileCount,
			a.CreatedAt.Format("2006-01-02 15:04"))
		if i == m.archiveCursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(normalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString(helpStyle.Render("↑/↓ move · enter open · v verify · q quit"))

	return b.String()
}

func (m *Model) renderEntriesView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf(" %s/%s ", m.selected.Source, m.selected.File)))
	b.WriteString("\n\n")

	header := fmt.Sprintf("  %10s %-16s %s", "SIZE", "MODIFIED", "NAME")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 76)))
	b.WriteString("\n")

	visibleHeight := m.height - 10
	if visibleHeight < 5 {
		visibleHeight = 5
	}

	for i := m.entryScroll; i < len(m.entries) && i < m.entryScroll+visibleHeight; i++ {
		e := m.entries[i]
		size := vault.FormatSize(e.Size)
		if e.Dir {
			size = "-"
		}
		line := fmt.Sprintf("  %10s %-16s %s",
			size,
			e.Modified.Format("2006-01-02 15:04"),
			e.Name)
		if e.Dir {
			b.WriteString(dimStyle.Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString(helpStyle.Render("↑/↓ scroll · v verify · esc back · q quit"))

	return b.String()
}

func (m *Model) renderStatus() string {
	if m.statusMsg == "" {
		return "\n"
	}
	if m.statusErr {
		return "\n" + errorBadge.Render(m.statusMsg) + "\n"
	}
	return "\n" + successBadge.Render(m.statusMsg) + "\n"
}

// Run starts the interactive vault browser.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	m, err := NewModel(cfg, zippack.NewDefaultService())
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
