package filter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/jackzampolin/pdfsplit/internal/toc"
)

// ErrPromptCancelled is returned when the user aborts the prompt.
var ErrPromptCancelled = errors.New("selection cancelled")

// PromptText is shown above the input line.
const PromptText = "Enter section ids to exclude (comma-separated, ranges like 2-4), or press Enter to keep all:"

var (
	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("81")).
		Bold(true)

	pagesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	questionStyle = lipgloss.NewStyle().
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// Prompter asks the user which sections to exclude.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// Ask lists sections and reads one line of ids to exclude. When In is a
// terminal the list is shown in an interactive editor; otherwise a single
// line is read from In. End of input counts as an empty answer.
func (p Prompter) Ask(ctx context.Context, sections []toc.Section) (string, error) {
	if f, ok := p.In.(*os.File); ok && isTerminal(f) {
		return p.askTTY(ctx, sections)
	}
	return p.askLine(sections)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// askLine writes the plain section list and reads one line.
func (p Prompter) askLine(sections []toc.Section) (string, error) {
	for _, s := range sections {
		fmt.Fprintln(p.Out, Line(s))
	}
	fmt.Fprintln(p.Out, PromptText)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p Prompter) askTTY(ctx context.Context, sections []toc.Section) (string, error) {
	prog := tea.NewProgram(newModel(sections),
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)
	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	m := final.(model)
	if m.cancelled {
		return "", ErrPromptCancelled
	}
	return strings.TrimSpace(m.input.Value()), nil
}

// model is the bubbletea state for the exclusion prompt.
type model struct {
	sections  []toc.Section
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newModel(sections []toc.Section) model {
	ti := textinput.New()
	ti.Placeholder = "e.g. 1,3,5-7"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Focus()

	return model{sections: sections, input: ti}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var sb strings.Builder
	for _, s := range m.sections {
		sb.WriteString(idStyle.Render(fmt.Sprintf("%3d:", s.ID)))
		sb.WriteString(" ")
		sb.WriteString(s.Title)
		sb.WriteString(" ")
		sb.WriteString(pagesStyle.Render(fmt.Sprintf("(pages %d-%d)", s.StartPage+1, s.EndPage+1)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(questionStyle.Render(PromptText))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter: confirm  esc: cancel"))
	sb.WriteString("\n")
	return sb.String()
}
