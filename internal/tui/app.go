// internal/tui/app.go
//
// A small pager for reading a snapshot report without leaving the terminal.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the report text and the scroll position
// 2. Update: key presses and window resizes move the viewport
// 3. View: header + visible slice of the report + footer

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// App is the pager model.
type App struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

// NewApp returns a pager showing content under title.
func NewApp(title, content string) *App {
	return &App{title: title, content: content}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		chrome := lipgloss.Height(a.headerView()) + lipgloss.Height(a.footerView())
		if !a.ready {
			a.viewport = viewport.New(msg.Width, max(1, msg.Height-chrome))
			a.viewport.SetContent(a.content)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = max(1, msg.Height-chrome)
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return a, tea.Quit
		case "g", "home":
			a.viewport.GotoTop()
			return a, nil
		case "G", "end":
			a.viewport.GotoBottom()
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

// View renders the current screen.
func (a *App) View() string {
	if !a.ready {
		return "Loading report..."
	}
	return strings.Join([]string{a.headerView(), a.viewport.View(), a.footerView()}, "\n")
}

func (a *App) headerView() string {
	return titleStyle.Render(a.title)
}

func (a *App) footerView() string {
	percent := 100.0
	if a.ready {
		percent = a.viewport.ScrollPercent() * 100
	}
	return footerStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll · g/G top/bottom · q quit", percent))
}

// Run opens the pager on the alternate screen and blocks until the user quits.
func Run(title, content string) error {
	p := tea.NewProgram(NewApp(title, content), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: run pager: %w", err)
	}
	return nil
}
