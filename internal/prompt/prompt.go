// Package prompt provides the interactive select and confirm prompts used by
// the workflows, behind an interface so tests can script answers.
package prompt

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	clierr "github.com/stellarquest/sq-cli/internal/errors"
)

type Option struct {
	Label string
	Value string
}

type Prompter interface {
	Select(message string, options []Option, defaultValue string) (string, error)
	Confirm(message string) (bool, error)
}

// Terminal renders prompts with bubbletea on the controlling terminal.
type Terminal struct{}

func NewTerminal() *Terminal { return &Terminal{} }

func (t *Terminal) Select(message string, options []Option, defaultValue string) (string, error) {
	cursor := 0
	for i, opt := range options {
		if opt.Value == defaultValue {
			cursor = i
		}
	}
	model := selectModel{message: message, options: options, cursor: cursor}
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "run prompt", err)
	}
	result, ok := final.(selectModel)
	if !ok || result.choice == "" {
		return "", clierr.New(clierr.CodeInternal, "prompt cancelled")
	}
	return result.choice, nil
}

func (t *Terminal) Confirm(message string) (bool, error) {
	choice, err := t.Select(message, []Option{
		{Label: "Yes", Value: "yes"},
		{Label: "No", Value: "no"},
	}, "yes")
	if err != nil {
		return false, err
	}
	return choice == "yes", nil
}

type selectModel struct {
	message string
	options []Option
	cursor  int
	choice  string
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.choice = m.options[m.cursor].Value
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.message)
	for i, opt := range m.options {
		marker := " "
		if i == m.cursor {
			marker = "❯"
		}
		fmt.Fprintf(&b, " %s %s\n", marker, opt.Label)
	}
	return b.String()
}

// Script replays canned answers, recording the messages it was asked.
type Script struct {
	Answers  []string
	Messages []string
}

func (s *Script) next() string {
	if len(s.Answers) == 0 {
		return ""
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}

func (s *Script) Select(message string, _ []Option, _ string) (string, error) {
	s.Messages = append(s.Messages, message)
	return s.next(), nil
}

func (s *Script) Confirm(message string) (bool, error) {
	s.Messages = append(s.Messages, message)
	return s.next() == "yes", nil
}
