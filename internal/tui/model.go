package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragqa/internal/domain"
	"ragqa/internal/summarizer"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	Ask(ctx context.Context, question string, k int) (domain.Answer, error)
	Summary() string
}

type answerMsg struct {
	question string
	answer   domain.Answer
	err      error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  RAGPort
	topK     int
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	answer   domain.Answer
	status   string
	cursor   int
	ready    bool
	busy     bool
	question string
}

// New creates a new TUI model instance.
func New(service RAGPort, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		service:  service,
		topK:     topK,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Index loaded. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		ans, err := m.service.Ask(context.Background(), q, m.topK)
		return answerMsg{question: q, answer: ans, err: err}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer = domain.Answer{}
		} else {
			m.status = fmt.Sprintf("Answered %q from %d source(s)", msg.question, len(msg.answer.Sources))
			m.answer = msg.answer
		}
		m.question = msg.question
		m.cursor = 0
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Thinking..."
				m.input.SetValue("")
				return m, tea.Batch(m.spinner.Tick, m.ask(q))
			}
		case "down":
			if n := len(m.answer.Sources); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if n := len(m.answer.Sources); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RAG Question Answering")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.service.Summary())
	input := queryBoxStyle.Render(m.input.View())
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	status = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.question == "" {
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(answerStyle.Render(m.answer.Text))
	b.WriteString("\n\n")
	if len(m.answer.Sources) == 0 {
		b.WriteString("No sources.")
		return b.String()
	}
	b.WriteString("Sources:\n")
	for i, s := range m.answer.Sources {
		line := fmt.Sprintf("%d. %s", i+1, Provenance(s))
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	r := m.answer.Sources[m.cursor]
	b.WriteString(fmt.Sprintf("\nSource %d/%d  score=%.3f\n\n", m.cursor+1, len(m.answer.Sources), r.Score))
	b.WriteString(highlightBestSentence(r.Text, m.question))
	return b.String()
}

// Provenance formats where a chunk came from.
func Provenance(r domain.SearchResult) string {
	return fmt.Sprintf("%s (chars %d-%d)", r.DocumentID, r.Start, r.End)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

func highlightBestSentence(text, query string) string {
	sentences, best := summarizer.BestSentence(text, query)
	if len(sentences) == 0 {
		return text
	}
	if best >= 0 {
		sentences[best] = highlightStyle.Render(sentences[best])
	}
	return strings.Join(sentences, " ")
}
