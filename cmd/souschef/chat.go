// This file implements the interactive chat interface using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"souschef/cmd/souschef/ui"
	"souschef/internal/chat"
)

const inputPlaceholder = "Ask about cooking... (Enter to send, Ctrl+C to exit)"

// chatModel is the main model for the interactive chat interface
type chatModel struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer

	// State
	isLoading   bool
	awaitingKey bool
	pending     string // user text echoed while a reply is generating
	err         error
	width       int
	height      int
	ready       bool

	// Backend
	app *app
}

// Messages for tea updates
type (
	responseMsg chat.Message
	errorMsg    error
	keySavedMsg struct{}
	skippedMsg  struct{}
)

// initChat initializes the interactive chat model
func initChat(a *app) chatModel {
	styles := ui.StylesFor(a.cfg.Theme)

	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	m := chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		app:       a,
	}

	// Without a credential the chat cannot answer; ask for the key first.
	if !a.hasAPIKey() {
		m.awaitingKey = true
		m.textinput.Placeholder = "Paste your Gemini API key and press Enter..."
		m.textinput.EchoMode = textinput.EchoPassword
	}

	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.isLoading {
				if m.awaitingKey {
					return m.handleKeyEntry()
				}
				return m.handleSubmit()
			}
		}

		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 3
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}

		m.textinput.Width = msg.Width - 4

		if m.renderer != nil {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(msg.Width-8),
			)
		}

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case responseMsg:
		m.isLoading = false
		m.pending = ""
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case skippedMsg:
		m.isLoading = false
		m.pending = ""
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case keySavedMsg:
		m.awaitingKey = false
		m.textinput.EchoMode = textinput.EchoNormal
		m.textinput.Placeholder = inputPlaceholder
		m.textinput.Reset()

	case errorMsg:
		m.isLoading = false
		m.pending = ""
		m.err = msg
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// handleKeyEntry stores the pasted credential and unlocks the chat.
func (m chatModel) handleKeyEntry() (tea.Model, tea.Cmd) {
	key := strings.TrimSpace(m.textinput.Value())
	if key == "" {
		return m, nil
	}
	if err := m.app.saveAPIKey(key); err != nil {
		m.err = err
		m.textinput.Reset()
		return m, nil
	}
	return m, func() tea.Msg { return keySavedMsg{} }
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	// Check for special commands
	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.pending = input
	m.err = nil
	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.isLoading = true

	return m, tea.Batch(
		m.spinner.Tick,
		m.sendMessage(input),
	)
}

// sendMessage runs one conversation turn in the background. The sender
// appends both the user turn and the reply to the persisted conversation.
func (m chatModel) sendMessage(input string) tea.Cmd {
	sender := m.app.sender
	return func() tea.Msg {
		reply, ok := sender.Send(context.Background(), input)
		if !ok {
			return skippedMsg{}
		}
		return responseMsg(reply)
	}
}

func (m chatModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	m.textinput.Reset()

	switch cmd {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/clear":
		m.app.conversation.Clear()
		m.viewport.SetContent("")
		m.err = nil
		return m, nil

	case "/help":
		m.viewport.SetContent(m.safeRenderMarkdown(helpText))
		m.viewport.GotoTop()
		return m, nil

	case "/recipes":
		m.viewport.SetContent(m.safeRenderMarkdown(m.renderRecipeList()))
		m.viewport.GotoTop()
		return m, nil

	case "/key":
		m.awaitingKey = true
		m.textinput.Placeholder = "Paste your Gemini API key and press Enter..."
		m.textinput.EchoMode = textinput.EchoPassword
		return m, nil

	case "/error":
		diag := m.app.sender.LastDiagnostic()
		if diag == nil {
			m.viewport.SetContent(m.safeRenderMarkdown("No errors recorded in this session."))
		} else {
			detail := fmt.Sprintf("## Last Error\n\n- **ID**: `%s`\n- **Time**: %s\n- **Detail**: %s\n",
				diag.ID, diag.When.Format("15:04:05"), diag.Summary)
			m.viewport.SetContent(m.safeRenderMarkdown(detail))
		}
		m.viewport.GotoTop()
		return m, nil

	default:
		m.err = fmt.Errorf("unknown command %s, type /help for commands", cmd)
		return m, nil
	}
}

const helpText = `## Commands

| Command | Description |
|---------|-------------|
| /help | Show this help message |
| /clear | Clear the conversation |
| /recipes | List the recipe collection |
| /key | Enter a new Gemini API key |
| /error | Show details of the last failure |
| /quit, /exit, /q | Exit |

## Tips
- **Enter** sends a message
- **Ctrl+C** or **Esc** exits
- Recipes can be rescaled with ` + "`souschef recipes scale <id> <servings>`" + `
`

func (m chatModel) renderRecipeList() string {
	var sb strings.Builder
	sb.WriteString("## Recipes\n\n")
	sb.WriteString("| ID | Name | Servings |\n")
	sb.WriteString("|----|------|----------|\n")
	for _, r := range m.app.recipes.All() {
		sb.WriteString(fmt.Sprintf("| %d | %s | %d |\n", r.ID, r.Name, r.Servings))
	}
	sb.WriteString("\nUse `souschef recipes show <id>` for details.\n")
	return sb.String()
}

func (m chatModel) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.app.conversation.All() {
		if msg.IsUser {
			sb.WriteString(m.renderUserTurn(msg.Text))
		} else {
			sb.WriteString(m.renderReplyTurn(msg.Text))
		}
	}

	if m.pending != "" {
		sb.WriteString(m.renderUserTurn(m.pending))
	}

	return sb.String()
}

func (m chatModel) renderUserTurn(text string) string {
	userStyle := m.styles.Bold.
		Foreground(m.styles.Theme.Primary).
		MarginTop(1)
	return userStyle.Render("You") + "\n" + m.styles.UserInput.Render(text) + "\n\n"
}

func (m chatModel) renderReplyTurn(text string) string {
	replyStyle := m.styles.Bold.
		Foreground(m.styles.Theme.Accent).
		MarginTop(1)
	return replyStyle.Render("🍳 souschef") + "\n" + m.safeRenderMarkdown(text) + "\n"
}

// safeRenderMarkdown renders markdown with panic recovery
func (m chatModel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())

	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Cooking up a reply..."
	}

	if m.err != nil {
		chatView += "\n" + m.styles.Error.Render("Error: "+m.err.Error())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)

	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m chatModel) renderHeader() string {
	title := m.styles.Header.Render(" 🍳 souschef ")
	model := m.styles.Badge.Render(m.app.client.Model())

	var status string
	switch {
	case m.awaitingKey:
		status = m.styles.Warning.Render("● API key required")
	case m.isLoading:
		status = m.styles.Warning.Render("● Thinking")
	default:
		status = m.styles.Success.Render("● Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		model,
		"  ",
		status,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m chatModel) renderFooter() string {
	help := m.styles.Muted.Render("Enter: send • /help: commands • /clear: reset conversation • Ctrl+C: exit")
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(help)
}

// runInteractiveChat wires the application and starts the chat TUI.
func runInteractiveChat() error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(initChat(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}
