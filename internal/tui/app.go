// Package tui is the terminal presentation layer over the retrieval
// service. It renders the filtered history list, forwards navigation and
// commit actions, and refreshes whenever the history changes underneath it.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ykotov/clipvault/internal/history"
	"github.com/ykotov/clipvault/internal/retrieval"
)

// UIMode represents the current modal state of the application.
type UIMode int

const (
	NormalMode UIMode = iota
	SearchMode
	ConfirmClearMode
)

// historyChangedMsg signals that the store mutated and the view is stale.
type historyChangedMsg struct{}

// timestampLayout matches the display format of the original tool.
const timestampLayout = "02.01.2006 15:04:05"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	searchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	imageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	flashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// AppModel is the Bubble Tea model for the history browser.
type AppModel struct {
	service *retrieval.Service

	width       int
	height      int
	currentMode UIMode
	searchInput string
	view        []history.Entry
	flash       string
}

// NewAppModel creates the browser model and opens the retrieval view.
func NewAppModel(service *retrieval.Service) AppModel {
	return AppModel{
		service: service,
		width:   80,
		height:  24,
		view:    service.Open(),
	}
}

// Init starts listening for history mutations.
func (a AppModel) Init() tea.Cmd {
	return a.waitForChange()
}

// waitForChange blocks on the store's change notification, then reports it
// as a message on the program's update loop. Hotkey and watcher activity
// thus reaches view state only through the foreground context.
func (a AppModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-a.service.Changes()
		return historyChangedMsg{}
	}
}

// Update handles messages and routes keys by mode.
func (a AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		return a, nil
	case historyChangedMsg:
		a.view = a.service.Filter(a.searchInput)
		return a, a.waitForChange()
	case tea.KeyMsg:
		return a.handleKey(m.String())
	}
	return a, nil
}

func (a AppModel) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		a.service.Close()
		return a, tea.Quit
	}

	switch a.currentMode {
	case SearchMode:
		return a.handleSearchKey(key)
	case ConfirmClearMode:
		return a.handleConfirmKey(key)
	default:
		return a.handleNormalKey(key)
	}
}

func (a AppModel) handleNormalKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		a.service.Close()
		return a, tea.Quit
	case "up", "k":
		a.service.Navigate(-1)
		return a, nil
	case "down", "j":
		a.service.Navigate(1)
		return a, nil
	case "enter":
		committed, err := a.service.Commit(a.service.Cursor())
		if err != nil {
			a.flash = fmt.Sprintf("commit failed: %v", err)
			return a, nil
		}
		if !committed {
			a.flash = "commit suppressed, try again"
			return a, nil
		}
		return a, tea.Quit
	case "d", "delete":
		if err := a.service.DeleteSelected(a.service.Cursor()); err == nil {
			a.view = a.service.View()
		}
		return a, nil
	case "/":
		a.currentMode = SearchMode
		a.flash = ""
		return a, nil
	case "ctrl+x":
		a.currentMode = ConfirmClearMode
		return a, nil
	}
	return a, nil
}

func (a AppModel) handleSearchKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		a.currentMode = NormalMode
		a.searchInput = ""
		a.view = a.service.Filter("")
		return a, nil
	case "enter":
		a.currentMode = NormalMode
		return a, nil
	case "up":
		a.service.Navigate(-1)
		return a, nil
	case "down":
		a.service.Navigate(1)
		return a, nil
	case "backspace", "ctrl+h":
		if len(a.searchInput) > 0 {
			a.searchInput = a.searchInput[:len(a.searchInput)-1]
			a.view = a.service.Filter(a.searchInput)
		}
		return a, nil
	default:
		if len(key) == 1 && key[0] >= 32 && key[0] <= 126 {
			a.searchInput += key
			a.view = a.service.Filter(a.searchInput)
		}
		return a, nil
	}
}

func (a AppModel) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		a.service.ClearAll()
		a.view = a.service.View()
		a.currentMode = NormalMode
		a.flash = "history cleared"
	case "n", "N", "esc":
		a.currentMode = NormalMode
	}
	return a, nil
}

// View renders the browser.
func (a AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("clipvault — clipboard history"))
	b.WriteString("\n")

	switch a.currentMode {
	case SearchMode:
		b.WriteString(searchStyle.Render("search: " + a.searchInput + "█"))
	case ConfirmClearMode:
		b.WriteString(flashStyle.Render("clear all history? (y/n)"))
	default:
		if a.searchInput != "" {
			b.WriteString(searchStyle.Render("filter: " + a.searchInput))
		} else {
			b.WriteString(helpStyle.Render(fmt.Sprintf("%d entries", len(a.view))))
		}
	}
	b.WriteString("\n\n")

	b.WriteString(a.renderList())
	b.WriteString("\n")

	if a.flash != "" {
		b.WriteString(flashStyle.Render(a.flash))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter paste · / search · d delete · ctrl+x clear · q quit"))
	return b.String()
}

func (a AppModel) renderList() string {
	if len(a.view) == 0 {
		return helpStyle.Render("  (history is empty)")
	}

	cursor := a.service.Cursor()
	visible := a.height - 7 // header, status, blank lines, flash, help
	if visible < 1 {
		visible = 1
	}

	// Keep the cursor inside the visible window.
	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}
	end := offset + visible
	if end > len(a.view) {
		end = len(a.view)
	}

	var lines []string
	for i := offset; i < end; i++ {
		lines = append(lines, a.renderItem(a.view[i], i == cursor))
	}
	return strings.Join(lines, "\n")
}

func (a AppModel) renderItem(e history.Entry, selected bool) string {
	stamp := "[" + e.Time.Format(timestampLayout) + "]"

	preview := strings.ReplaceAll(e.Preview, "\n", " ")
	if max := a.width - 24; max > 0 {
		// Width-aware: wide runes count double and are never split.
		preview = runewidth.Truncate(preview, max, "...")
	}

	if selected {
		return selectedStyle.Render("> " + stamp + " " + preview)
	}
	if e.Kind == history.KindImage {
		preview = imageStyle.Render(preview)
	}
	return "  " + timeStyle.Render(stamp) + " " + preview
}

// Run opens the browser and blocks until the user quits or commits.
func Run(service *retrieval.Service) error {
	p := tea.NewProgram(NewAppModel(service), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
