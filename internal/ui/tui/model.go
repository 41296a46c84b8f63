// Package tui is an interactive recognizer: type a sentence, press enter,
// and see whether the loaded grammar accepts it.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grammarfsa/internal/core/app"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	acceptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type Recognizer interface {
	Recognize(ctx context.Context, input string) (app.Outcome, error)
}

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type resultMsg struct {
	outcome app.Outcome
	err     error
}

type reloadMsg struct {
	event app.ReloadEvent
}

type model struct {
	recognizer Recognizer
	input      textinput.Model
	results    list.Model
	accepted   int
	rejected   int
	failed     int
	status     string
	lastUpdate time.Time
}

func initialModel(r Recognizer) model {
	ti := textinput.New()
	ti.Placeholder = "type a sentence and press enter"
	ti.Prompt = "> "
	ti.Focus()

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Results"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return model{
		recognizer: r,
		input:      ti,
		results:    l,
		status:     "ready",
		lastUpdate: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.status = fmt.Sprintf("recognizing %q", text)
			return m, recognizeCmd(m.recognizer, text)
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.results, cmd = m.results.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.results.SetSize(msg.Width-h, msg.Height-v-6)
		m.input.Width = msg.Width - h - 4
		return m, nil
	case resultMsg:
		m.lastUpdate = time.Now()
		m.status = "ready"
		cmd := m.results.InsertItem(0, resultItem(msg))
		switch {
		case msg.err != nil:
			m.failed++
		case msg.outcome.Accepted:
			m.accepted++
		default:
			m.rejected++
		}
		return m, cmd
	case reloadMsg:
		m.lastUpdate = msg.event.At
		if msg.event.Err != nil {
			m.status = "reload failed: " + msg.event.Err.Error()
		} else {
			m.status = fmt.Sprintf("grammar reloaded: %d states, %d edges", msg.event.States, msg.event.Edges)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	counts := fmt.Sprintf("%s | %s | %s",
		acceptStyle.Render(fmt.Sprintf("%d accepted", m.accepted)),
		rejectStyle.Render(fmt.Sprintf("%d rejected", m.rejected)),
		errorStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	status := statusStyle.Render(fmt.Sprintf("%s | %s", m.lastUpdate.Format("15:04:05"), m.status))

	header := fmt.Sprintf("%s\n%s\n%s\n", titleStyle("Grammar Recognizer"), counts, status)
	return docStyle.Render(header + "\n" + m.input.View() + "\n\n" + m.results.View())
}

func recognizeCmd(r Recognizer, text string) tea.Cmd {
	return func() tea.Msg {
		if r == nil {
			return resultMsg{outcome: app.Outcome{Input: text}, err: fmt.Errorf("no recognizer configured")}
		}
		out, err := r.Recognize(context.Background(), text)
		return resultMsg{outcome: out, err: err}
	}
}

func resultItem(msg resultMsg) item {
	out := msg.outcome
	if msg.err != nil {
		return item{
			title: errorStyle.Render("error") + "  " + out.Input,
			desc:  msg.err.Error(),
		}
	}
	verdict := rejectStyle.Render("reject")
	if out.Accepted {
		verdict = acceptStyle.Render("accept")
	}
	return item{
		title: verdict + "  " + out.Input,
		desc:  fmt.Sprintf("%d tokens, %d steps, %s", out.Tokens, out.Steps, out.Duration.Round(time.Microsecond)),
	}
}
