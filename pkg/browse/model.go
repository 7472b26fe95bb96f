// Package browse is the terminal catalog browser: a filterable list of
// discovered skill packages with a detail pane showing validation state,
// package stats, and the manifest body.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skillet-ai/skillet/pkg/catalog"
)

// sideBreakpoint is the terminal width above which the detail pane sits
// beside the list instead of below it.
const sideBreakpoint = 90

// bodyPreviewLines caps how much of the manifest body the detail pane shows.
const bodyPreviewLines = 10

// item wraps a catalog entry for the list display.
type item struct {
	entry catalog.Entry
}

func (i item) Title() string {
	if i.entry.Valid {
		return i.entry.Name
	}
	return i.entry.Name + " (invalid)"
}

func (i item) Description() string { return i.entry.Description }
func (i item) FilterValue() string { return i.entry.Name }

type catalogLoadedMsg struct {
	entries []catalog.Entry
	details map[string]*catalog.Detail
}

type loadFailedMsg struct {
	err error
}

// Model is the Bubbletea model for the catalog browser.
type Model struct {
	catalog *catalog.Catalog

	list    list.Model
	details map[string]*catalog.Detail

	width     int
	height    int
	listWidth int
	showSide  bool

	status string
	err    error
}

// New creates a catalog browser model.
func New(cat *catalog.Catalog) *Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Skill Catalog"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return &Model{
		catalog: cat,
		list:    l,
		details: map[string]*catalog.Detail{},
		status:  "Loading catalog...",
	}
}

// Init starts the initial catalog load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCatalog(),
		tea.SetWindowTitle("skillet browse"),
	)
}

// loadCatalog lists the catalog and resolves every entry's detail so
// selection changes never block on disk reads.
func (m *Model) loadCatalog() tea.Cmd {
	cat := m.catalog
	return func() tea.Msg {
		entries, err := cat.List()
		if err != nil {
			return loadFailedMsg{err: err}
		}
		details := make(map[string]*catalog.Detail, len(entries))
		for _, entry := range entries {
			detail, err := cat.Get(entry.Name)
			if err != nil {
				continue
			}
			details[entry.Name] = detail
		}
		return catalogLoadedMsg{entries: entries, details: details}
	}
}

// Update handles messages for the browser.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "r":
				m.status = "Reloading..."
				return m, m.loadCatalog()
			}
		}

	case catalogLoadedMsg:
		m.err = nil
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = item{entry: entry}
		}
		m.details = msg.details
		m.list.SetItems(items)
		m.status = fmt.Sprintf("%d skills", len(msg.entries))
		return m, nil

	case loadFailedMsg:
		m.err = msg.err
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list, the detail pane, and the footer.
func (m *Model) View() string {
	content := m.list.View()
	if detail := m.renderDetail(); detail != "" {
		if m.showSide {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, detail)
		} else {
			content = content + "\n" + detail
		}
	}
	if m.err != nil {
		content += "\n" + errorStyle.Render("cannot load catalog: "+m.err.Error())
	}
	return content + "\n" + footerStyle.Render(m.footerText())
}

func (m *Model) footerText() string {
	help := "/ filter • r reload • q quit"
	if m.status != "" {
		return m.status + " • " + help
	}
	return help
}

func (m *Model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	available := msg.Width - 4
	if available < 20 {
		available = msg.Width
	}
	m.showSide = msg.Width >= sideBreakpoint
	if m.showSide {
		m.listWidth = int(float64(available) * 0.4)
		if m.listWidth < 32 {
			m.listWidth = 32
		}
	} else {
		m.listWidth = available
	}

	listHeight := msg.Height - 6
	if listHeight < 5 {
		listHeight = msg.Height - 2
	}
	m.list.SetSize(m.listWidth, listHeight)
}

func (m *Model) renderDetail() string {
	selected, ok := m.list.SelectedItem().(item)
	if !ok {
		return ""
	}

	width := m.width - m.listWidth - 6
	if !m.showSide {
		width = m.width - 4
	}
	if width < 32 {
		width = 32
	}

	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(selected.entry.Name))
	b.WriteString("\n")
	b.WriteString(m.renderValidation(selected.entry))
	b.WriteString("\n\n")

	detail := m.details[selected.entry.Name]
	if detail == nil {
		b.WriteString(detailLabelStyle.Render("detail unavailable"))
		return detailBorderStyle.Width(width).Render(b.String())
	}

	if detail.Description != "" {
		b.WriteString(detail.Description)
		b.WriteString("\n\n")
	}
	b.WriteString(detailLabelStyle.Render("files   "))
	b.WriteString(fmt.Sprintf("%d (%.1f KB)", detail.FileCount, float64(detail.TotalSize)/1024))
	b.WriteString("\n")
	if detail.License != "" {
		b.WriteString(detailLabelStyle.Render("license "))
		b.WriteString(detail.License)
		b.WriteString("\n")
	}
	if len(detail.AllowedTools) > 0 {
		b.WriteString(detailLabelStyle.Render("tools   "))
		b.WriteString(strings.Join(detail.AllowedTools, ", "))
		b.WriteString("\n")
	}

	for _, e := range detail.ErrorList {
		b.WriteString(invalidStyle.Render("✗ " + e))
		b.WriteString("\n")
	}
	for _, w := range detail.WarningList {
		b.WriteString(warningStyle.Render("! " + w))
		b.WriteString("\n")
	}

	if body := previewBody(detail.Body); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}

	return detailBorderStyle.Width(width).Render(b.String())
}

func (m *Model) renderValidation(entry catalog.Entry) string {
	if entry.Valid {
		return validStyle.Render("valid")
	}
	return invalidStyle.Render(fmt.Sprintf("%d errors, %d warnings", entry.Errors, entry.Warnings))
}

func previewBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	lines := strings.Split(body, "\n")
	if len(lines) > bodyPreviewLines {
		trimmed := make([]string, bodyPreviewLines, bodyPreviewLines+1)
		copy(trimmed, lines[:bodyPreviewLines])
		lines = append(trimmed, "...")
	}
	return strings.Join(lines, "\n")
}
