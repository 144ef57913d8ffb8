package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-go-golems/dipole/pkg/progress"
	"github.com/go-go-golems/dipole/pkg/tui"
	"github.com/go-go-golems/dipole/pkg/tui/styles"
	"github.com/go-go-golems/dipole/pkg/tui/widgets"
)

// DeployModel is the live view of one running invocation: a stepper for
// the deploy phases, a scrolling log viewport and a result footer.
type DeployModel struct {
	op    string
	state progress.State

	lines []string
	max   int
	total int

	ended      bool
	exitCode   int
	endErr     string
	previewURL string

	searching bool
	search    textinput.Model
	filter    string

	width  int
	height int
	vp     viewport.Model
}

func NewDeployModel() DeployModel {
	search := textinput.New()
	search.Placeholder = "filter…"
	search.Prompt = "/ "
	search.CharLimit = 200

	m := DeployModel{max: 2000, search: search}
	m.vp = viewport.New(0, 0)
	return m
}

func (m DeployModel) Init() tea.Cmd {
	return nil
}

func (m DeployModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := v.Width, v.Height
		if w <= 0 {
			w = 80
		}
		if h <= 0 {
			h = 24
		}
		m.width, m.height = w, h
		m = m.resizeViewport()
		return m, nil

	case tui.InvocationStartedMsg:
		m.op = v.Started.Op
		m.lines = nil
		m.total = 0
		m.ended = false
		m.endErr = ""
		m = m.refreshViewportContent(true)
		return m, nil

	case tui.LogBatchMsg:
		m.lines = append(m.lines, v.Batch.Lines...)
		if m.max > 0 && len(m.lines) > m.max {
			m.lines = append([]string{}, m.lines[len(m.lines)-m.max:]...)
		}
		m.total = v.Batch.Total
		m = m.refreshViewportContent(true)
		return m, nil

	case tui.ProgressMsg:
		m.state = v.Progress.State
		return m, nil

	case tui.InvocationEndedMsg:
		m.ended = true
		m.exitCode = v.Ended.ExitCode
		m.endErr = v.Ended.Error
		if len(v.Ended.Record) > 0 {
			var rec struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(v.Ended.Record, &rec); err == nil && rec.URL != "" {
				m.previewURL = rec.URL
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			switch v.String() {
			case "esc":
				m.searching = false
				m.search.Blur()
				return m, nil
			case "enter":
				m.filter = strings.TrimSpace(m.search.Value())
				m.searching = false
				m.search.Blur()
				m = m.refreshViewportContent(true)
				return m, nil
			}

			var cmd tea.Cmd
			m.search, cmd = m.search.Update(v)
			return m, cmd
		}

		switch v.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.searching = true
			m.search.SetValue(m.filter)
			m.search.CursorEnd()
			m.search.Focus()
			return m, nil
		case "ctrl+l":
			m.filter = ""
			m.search.SetValue("")
			m = m.refreshViewportContent(true)
			return m, nil
		}

		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(v)
		return m, cmd
	}
	return m, nil
}

func (m DeployModel) View() string {
	theme := styles.DefaultTheme()

	var sections []string
	sections = append(sections, widgets.NewStepper(m.state).Render())

	if m.searching {
		sections = append(sections, m.search.View())
	}

	title := "Output"
	if m.op != "" {
		title = fmt.Sprintf("Output · %s", m.op)
	}
	titleRight := "[/] filter  [q] quit  [↑/↓] scroll"
	if m.filter != "" {
		titleRight = fmt.Sprintf("filter=%q  %s", m.filter, titleRight)
	}

	content := m.vp.View()
	if len(m.lines) == 0 {
		content = theme.TitleMuted.Render("(waiting for output)")
	}
	sections = append(sections, widgets.NewBox(fmt.Sprintf("%s (%d)", title, m.total)).
		WithTitleRight(titleRight).
		WithContent(content).
		WithWidth(m.width).
		Render())

	if footer := m.footer(theme); footer != "" {
		sections = append(sections, footer)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DeployModel) footer(theme styles.Theme) string {
	if !m.ended {
		return ""
	}
	switch {
	case m.endErr != "":
		return theme.StepFailed.Render("✗ " + m.endErr)
	case m.exitCode != 0:
		return theme.StepFailed.Render(fmt.Sprintf("✗ exited with code %d", m.exitCode))
	case m.previewURL != "":
		return theme.StepCompleted.Render("✓ done  ") + theme.URL.Render(m.previewURL)
	default:
		return theme.StepCompleted.Render("✓ done")
	}
}

func (m DeployModel) resizeViewport() DeployModel {
	usableHeight := m.height - 6
	if usableHeight < 3 {
		usableHeight = 3
	}
	m.vp.Width = maxInt(0, m.width-2)
	m.vp.Height = usableHeight
	m = m.refreshViewportContent(false)
	return m
}

func (m DeployModel) refreshViewportContent(gotoBottom bool) DeployModel {
	theme := styles.DefaultTheme()

	if len(m.lines) == 0 {
		m.vp.SetContent("")
		return m
	}

	out := make([]string, 0, len(m.lines))
	for _, line := range m.lines {
		if m.filter != "" && !strings.Contains(line, m.filter) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "[ERROR]"):
			out = append(out, theme.StepFailed.Render(line))
		case strings.HasPrefix(line, "[WARN]"):
			out = append(out, lipgloss.NewStyle().Foreground(theme.Warning).Render(line))
		default:
			out = append(out, line)
		}
	}
	m.vp.SetContent(strings.Join(out, "\n") + "\n")
	if gotoBottom {
		m.vp.GotoBottom()
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
