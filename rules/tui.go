package rules

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bomsplit/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("152")).Bold(true)
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	choiceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type keyMap struct {
	Submit key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "выбрать / пропустить"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("Esc", "закончить разметку"),
		),
	}
}

// questionModel один вопрос: номер категории в поле ввода, пустой Enter пропускает запись
type questionModel struct {
	req     Request
	choices []model.Category
	input   textinput.Model
	keys    keyMap

	chosen   model.Category
	answered bool
	stopped  bool
	errMsg   string
}

func newQuestionModel(req Request, choices []model.Category) questionModel {
	in := textinput.New()
	in.Placeholder = "номер"
	in.CharLimit = 3
	in.Width = 6
	in.Prompt = "> "
	in.Focus()

	return questionModel{req: req, choices: choices, input: in, keys: defaultKeyMap()}
}

func (m questionModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m questionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.stopped = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m questionModel) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		m.answered = true
		return m, tea.Quit
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > len(m.choices) {
		m.errMsg = fmt.Sprintf("Неверный выбор: %s", value)
		m.input.SetValue("")
		return m, nil
	}

	m.chosen = m.choices[n-1]
	m.answered = true
	return m, tea.Quit
}

func (m questionModel) View() string {
	if m.answered || m.stopped {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("[%d/%d] Нераспределенная позиция", m.req.Index, m.req.Total)))
	b.WriteString("\n")
	b.WriteString(textStyle.Render(m.req.Text))
	b.WriteString("\n")
	if m.req.Record.SourceFile != "" {
		b.WriteString(hintStyle.Render("Источник: " + m.req.Record.SourceFile))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, c := range m.choices {
		b.WriteString(choiceStyle.Render(fmt.Sprintf("  %2d. %s", i+1, c.SheetName())))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(fmt.Sprintf("%s %s • %s %s",
		m.keys.Submit.Help().Key, m.keys.Submit.Help().Desc,
		m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc)))
	b.WriteString("\n")
	return b.String()
}

// TUIResolver спрашивает категорию в терминале
type TUIResolver struct {
	In      io.Reader
	Out     io.Writer
	Choices []model.Category
}

// NewTUIResolver резолвер на stdin/stdout
func NewTUIResolver() *TUIResolver {
	return &TUIResolver{In: os.Stdin, Out: os.Stdout, Choices: Choices}
}

func (r *TUIResolver) Resolve(ctx context.Context, req Request) (model.Category, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	choices := r.Choices
	if len(choices) == 0 {
		choices = Choices
	}

	p := tea.NewProgram(
		newQuestionModel(req, choices),
		tea.WithContext(ctx),
		tea.WithInput(r.In),
		tea.WithOutput(r.Out),
	)
	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", false, ctxErr
	}
	if err != nil {
		return "", false, fmt.Errorf("rules.TUIResolver: %w", err)
	}

	m, ok := final.(questionModel)
	if !ok {
		return "", false, fmt.Errorf("rules.TUIResolver: unexpected model %T", final)
	}
	if m.stopped {
		return "", false, ErrStopped
	}
	if m.chosen.IsEmpty() {
		return "", false, nil
	}
	return m.chosen, true, nil
}
