// Package tui is the interactive play surface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/chronicle/internal/engine"
	"github.com/tatianab/chronicle/internal/models"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateBusy
	stateError
)

type model struct {
	state     sessionState
	engine    *engine.Engine
	game      *models.GameState
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	width     int
	height    int
}

var (
	orderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	narrativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func NewModel(eng *engine.Engine, game *models.GameState) model {
	ti := textinput.New()
	ti.Placeholder = "What is your decree?"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	return model{
		state:     stateIdle,
		engine:    eng,
		game:      game,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type turnMsg struct {
	action string
	result *engine.TurnResult
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state != stateIdle {
				return m, nil
			}
			action := strings.TrimSpace(m.textInput.Value())
			if action == "" {
				return m, nil
			}
			m.textInput.Reset()

			switch action {
			case "/quit":
				return m, tea.Quit
			case "/reset":
				if err := m.game.ResetToDefaults(); err != nil {
					m.err = err
					m.state = stateError
					return m, nil
				}
				m.gameLog = noticeStyle.Render("A new civilization rises.") + "\n\n"
				m.viewport.SetContent(m.gameLog)
				return m, nil
			case "/timeskip":
				m.state = stateBusy
				m.appendLog(orderStyle.Render("> five hundred years pass..."))
				return m, m.runTimeskip()
			}

			m.state = stateBusy
			m.appendLog(orderStyle.Width(m.logWidth()).Render("> " + action))
			return m, m.runTurn(action)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(m.logWidth(), msg.Height-6)
		} else {
			m.viewport.Width = m.logWidth()
			m.viewport.Height = msg.Height - 6
		}
		m.viewport.SetContent(m.gameLog)

	case turnMsg:
		m.state = stateIdle
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.appendLog(narrativeStyle.Width(m.logWidth()).Render(msg.result.Narrative))
		if n := len(msg.result.Validation.Rejections); n > 0 {
			m.appendLog(noticeStyle.Render(fmt.Sprintf("(%d proposed changes were rejected by the chronicler)", n)))
		}
		return m, nil
	}

	if m.state == stateIdle {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) appendLog(s string) {
	m.gameLog += s + "\n\n"
	m.viewport.SetContent(m.gameLog)
	m.viewport.GotoBottom()
}

func (m model) logWidth() int {
	w := int(float64(m.width) * 0.75)
	if w < 20 {
		return 20
	}
	return w
}

func (m model) View() string {
	switch m.state {
	case stateError:
		return fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.\n", m.err)
	case stateBusy:
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderPanel()),
			"\n  The chronicler is writing...",
		) + "\n"
	default:
		help := helpStyle.Render("Commands: /timeskip, /reset, /quit, or issue a decree.")
		return "\n" + lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderPanel()),
			"\n"+m.textInput.View(),
			"\n"+help,
		) + "\n"
	}
}

func (m model) renderPanel() string {
	civ := m.game.Civilization

	var b strings.Builder
	b.WriteString(titleStyle.Render(models.StringAt(civ, "meta", "name")) + "\n")
	fmt.Fprintf(&b, "%s, year %d\n\n", models.StringAt(civ, "meta", "era"), models.IntAt(civ, "meta", "year"))

	b.WriteString(titleStyle.Render("PEOPLE") + "\n")
	fmt.Fprintf(&b, "Population: %d\n", models.IntAt(civ, "population"))
	fmt.Fprintf(&b, "Happiness: %d/100\n", m.game.Meta.PopulationHappiness)
	fmt.Fprintf(&b, "Food: %d\n", models.IntAt(civ, "resources", "food"))
	fmt.Fprintf(&b, "Wealth: %d\n\n", models.IntAt(civ, "resources", "wealth"))

	b.WriteString(titleStyle.Render("LEADER") + "\n")
	fmt.Fprintf(&b, "%s, age %d\n", models.StringAt(civ, "leader", "name"), models.IntAt(civ, "leader", "age"))
	fmt.Fprintf(&b, "Ruling %d years\n\n", models.IntAt(civ, "leader", "years_ruled"))

	b.WriteString(titleStyle.Render("DISCOVERIES") + "\n")
	discoveries := models.StringsAt(m.game.Technology, "discoveries")
	if len(discoveries) == 0 {
		b.WriteString("(none)\n")
	}
	start := 0
	if len(discoveries) > 5 {
		start = len(discoveries) - 5
	}
	for _, d := range discoveries[start:] {
		b.WriteString("- " + d + "\n")
	}

	panelWidth := int(float64(m.width) * 0.23)
	return panelStyle.Width(panelWidth).Height(m.viewport.Height).Render(b.String())
}

func (m model) runTurn(action string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.ProcessTurn(context.Background(), m.game, action)
		return turnMsg{action: action, result: result, err: err}
	}
}

func (m model) runTimeskip() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Timeskip(context.Background(), m.game)
		return turnMsg{action: "timeskip", result: result, err: err}
	}
}

func Run(eng *engine.Engine, game *models.GameState) error {
	p := tea.NewProgram(NewModel(eng, game), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
