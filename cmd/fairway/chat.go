// This file implements the interactive chat interface using bubbletea.
package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"fairway/internal/engine"
	"fairway/internal/nav"
	"fairway/internal/normalize"
	"fairway/internal/types"
)

// chatStyles collects the lipgloss styles for the chat surface.
type chatStyles struct {
	Title     lipgloss.Style
	Prompt    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Screen    lipgloss.Style
	Warning   lipgloss.Style
	Option    lipgloss.Style
	Selected  lipgloss.Style
	Spinner   lipgloss.Style
	Help      lipgloss.Style
}

func defaultChatStyles() chatStyles {
	return chatStyles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Screen:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Option:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Spinner:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// inputMode says what the Enter key currently means.
type inputMode int

const (
	modeFreeText inputMode = iota
	modePickSuggestion
	modeConfirm
)

// chatModel is the main model for the interactive chat interface.
type chatModel struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    chatStyles
	renderer  *glamour.TermRenderer

	// State
	history   []chatLine
	isLoading bool
	width     int
	height    int
	ready     bool

	mode        inputMode
	suggestions []types.IntentSuggestion
	selected    int

	eng *engine.Engine
}

type chatLine struct {
	role    string // "user", "assistant", "screen"
	content string
	time    time.Time
}

// Messages for tea updates.
type (
	turnMsg  engine.TurnResult
	errorMsg error
)

// initChat initializes the interactive chat model.
func initChat(eng *engine.Engine) chatModel {
	styles := defaultChatStyles()

	ti := textinput.New()
	ti.Placeholder = "Tell me what you need... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 1024
	ti.Width = 80
	ti.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return chatModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		renderer:  renderer,
		history:   []chatLine{},
		mode:      modeFreeText,
		eng:       eng,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
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
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			if m.mode != modeFreeText {
				m.mode = modeFreeText
				m.suggestions = nil
				m.selected = 0
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyUp:
			if m.mode == modePickSuggestion && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case tea.KeyDown:
			if m.mode == modePickSuggestion && m.selected < len(m.suggestions)-1 {
				m.selected++
				return m, nil
			}

		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			switch m.mode {
			case modePickSuggestion:
				return m.pickSuggestion()
			case modeConfirm:
				return m.answerConfirmation(m.textinput.Value())
			default:
				return m.submitInput()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		m.textinput.Width = msg.Width - 4
		m.ready = true
		m.refreshViewport()

	case turnMsg:
		m.isLoading = false
		m = m.applyTurn(engine.TurnResult(msg))
		m.refreshViewport()
		return m, nil

	case errorMsg:
		m.isLoading = false
		m.history = append(m.history, chatLine{role: "assistant", content: "Error: " + msg.Error(), time: time.Now()})
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd
	}

	m.textinput, tiCmd = m.textinput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m chatModel) submitInput() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.history = append(m.history, chatLine{role: "user", content: input, time: time.Now()})
	if !normalize.IsEnglish(input) {
		m.history = append(m.history, chatLine{
			role:    "assistant",
			content: "Heads up: I understand English best, but I'll give it a try.",
			time:    time.Now(),
		})
	}
	m.isLoading = true
	m.refreshViewport()

	eng := m.eng
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return turnMsg(eng.HandleInput(ctx, input))
	})
}

func (m chatModel) pickSuggestion() (tea.Model, tea.Cmd) {
	if m.selected >= len(m.suggestions) {
		m.mode = modeFreeText
		return m, nil
	}
	choice := m.suggestions[m.selected]
	m.history = append(m.history, chatLine{role: "user", content: choice.Label, time: time.Now()})
	m.mode = modeFreeText
	m.suggestions = nil
	m.selected = 0
	m.isLoading = true
	m.refreshViewport()

	eng := m.eng
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return turnMsg(eng.SelectSuggestion(ctx, choice.Intent))
	})
}

func (m chatModel) answerConfirmation(raw string) (tea.Model, tea.Cmd) {
	answer := strings.ToLower(strings.TrimSpace(raw))
	m.textinput.Reset()
	accepted := answer == "y" || answer == "yes"
	m.history = append(m.history, chatLine{role: "user", content: answer, time: time.Now()})
	m.mode = modeFreeText
	m.isLoading = true
	m.refreshViewport()

	eng := m.eng
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return turnMsg(eng.ResolveConfirmation(ctx, accepted))
	})
}

// applyTurn folds an engine result into the transcript and input mode.
func (m chatModel) applyTurn(result engine.TurnResult) chatModel {
	switch result.Action.Kind {
	case nav.ActionNavigated:
		dest := result.Action.Destination
		line := fmt.Sprintf("→ %s", dest.Title)
		if len(dest.Params) > 0 {
			line += " " + formatParams(dest.Params)
		}
		m.history = append(m.history, chatLine{role: "screen", content: line, time: time.Now()})

	case nav.ActionShowResponse:
		m.history = append(m.history, chatLine{role: "assistant", content: result.Action.Response, time: time.Now()})
		if c := result.Classification.Clarification; c != nil && len(c.Suggestions) > 0 {
			m.mode = modePickSuggestion
			m.suggestions = c.Suggestions
			m.selected = 0
		}

	case nav.ActionRequestConfirmation:
		m.history = append(m.history, chatLine{role: "assistant", content: result.Action.Message + " (y/n)", time: time.Now()})
		m.mode = modeConfirm

	case nav.ActionPrerequisitePrompt:
		m.history = append(m.history, chatLine{role: "assistant", content: result.Action.Message, time: time.Now()})

	case nav.ActionShowError:
		content := result.Action.Response
		if result.Recovery != nil && len(result.Recovery.Suggestions) > 0 {
			content += "\n\nYou could try:"
			for _, s := range result.Recovery.Suggestions {
				content += "\n  - " + s
			}
		}
		m.history = append(m.history, chatLine{role: "assistant", content: content, time: time.Now()})
	}
	return m
}

func (m *chatModel) refreshViewport() {
	var b strings.Builder
	for _, line := range m.history {
		switch line.role {
		case "user":
			b.WriteString(m.styles.User.Render("You: ") + line.content + "\n")
		case "screen":
			b.WriteString(m.styles.Screen.Render(line.content) + "\n")
		default:
			content := line.content
			if m.renderer != nil {
				if rendered, err := m.renderer.Render(content); err == nil {
					content = strings.TrimSpace(rendered)
				}
			}
			b.WriteString(m.styles.Assistant.Render(content) + "\n")
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("⛳ fairway") + "\n\n")
	b.WriteString(m.viewport.View() + "\n")

	if m.isLoading {
		b.WriteString(m.spinner.View() + " thinking...\n")
	} else if m.mode == modePickSuggestion {
		for i, s := range m.suggestions {
			cursor := "  "
			style := m.styles.Option
			if i == m.selected {
				cursor = "> "
				style = m.styles.Selected
			}
			b.WriteString(style.Render(cursor+s.Label) + "\n")
		}
		b.WriteString(m.styles.Help.Render("↑/↓ to choose · Enter to select · Esc to type instead") + "\n")
	} else {
		b.WriteString(m.textinput.View() + "\n")
		b.WriteString(m.styles.Help.Render("Enter to send · Ctrl+C to quit") + "\n")
	}
	return b.String()
}

func formatParams(params map[string]string) string {
	// Order keys for a stable line.
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// runChat starts the interactive session.
func runChat() error {
	ctx := context.Background()
	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(initChat(eng), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
