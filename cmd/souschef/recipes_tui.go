// This file implements the interactive recipe browser using bubbletea.
package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"souschef/cmd/souschef/ui"
	"souschef/internal/recipes"
)

// UI bounds for rescaling. The store itself only enforces servings >= 1.
const (
	minServings = 1
	maxServings = 20
)

// browserModel is the model for the recipe browser. The list pane selects a
// recipe; the detail pane shows it and rescales with +/-.
type browserModel struct {
	styles ui.Styles
	store  *recipes.Store

	list    []recipes.Recipe
	cursor  int
	showing bool // detail pane open
	err     error
	width   int
	height  int
}

func initBrowser(a *app) browserModel {
	return browserModel{
		styles: ui.StylesFor(a.cfg.Theme),
		store:  a.recipes,
		list:   a.recipes.All(),
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "esc":
			if m.showing {
				m.showing = false
				m.err = nil
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			if !m.showing && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if !m.showing && m.cursor < len(m.list)-1 {
				m.cursor++
			}

		case "enter":
			if !m.showing && len(m.list) > 0 {
				m.showing = true
				m.err = nil
			}

		case "+", "=":
			if m.showing {
				m.rescaleSelected(1)
			}

		case "-", "_":
			if m.showing {
				m.rescaleSelected(-1)
			}
		}
	}

	return m, nil
}

// rescaleSelected bumps the selected recipe's servings by delta and persists.
func (m *browserModel) rescaleSelected(delta int) {
	r := m.list[m.cursor]
	target := r.Servings + delta
	if target < minServings || target > maxServings {
		return
	}

	updated, err := m.store.Rescale(r.ID, target)
	if err != nil {
		m.err = err
		return
	}
	m.list[m.cursor] = updated
	m.err = nil
}

func (m browserModel) View() string {
	header := m.styles.Header.Render(" 🍳 souschef recipes ")

	var body string
	if m.showing {
		body = m.viewDetail()
	} else {
		body = m.viewList()
	}

	var errLine string
	if m.err != nil {
		errLine = m.styles.Error.Render("Error: " + m.err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.styles.Content.Render(body),
		errLine,
		m.viewFooter(),
	)
}

func (m browserModel) viewList() string {
	if len(m.list) == 0 {
		return m.styles.Muted.Render("No recipes yet.")
	}

	var sb strings.Builder
	for i, r := range m.list {
		line := fmt.Sprintf("%-24s %d servings", r.Name, r.Servings)
		if i == m.cursor {
			sb.WriteString(m.styles.Prompt.Render("> " + line))
		} else {
			sb.WriteString(m.styles.Body.Render("  " + line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m browserModel) viewDetail() string {
	r := m.list[m.cursor]

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(r.Name))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Badge.Render(fmt.Sprintf(" %d servings ", r.Servings)))
	sb.WriteString("\n\n")

	for _, ing := range r.Ingredients {
		sb.WriteString(m.styles.Body.Render("  • " + formatIngredient(ing)))
		sb.WriteString("\n")
	}

	if r.Instructions != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render(r.Instructions))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m browserModel) viewFooter() string {
	var help string
	if m.showing {
		help = "+/-: adjust servings • Esc: back • q: quit"
	} else {
		help = "↑/↓: select • Enter: open • q: quit"
	}
	return m.styles.Footer.Render(help)
}

// runRecipeBrowser wires the application and starts the browser TUI.
func runRecipeBrowser() error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(initBrowser(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("recipe browser failed: %w", err)
	}
	return nil
}
