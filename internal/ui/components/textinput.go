package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/linuxstory/internal/ui/theme"
)

// CommandInput wraps bubbles/textinput as a shell prompt with command
// history on the up and down keys.
type CommandInput struct {
	Model   textinput.Model
	history []string
	// cursor indexes history while browsing; len(history) means the
	// live line.
	cursor int
	draft  string
}

// NewCommandInput creates a focused prompt.
func NewCommandInput(placeholder string) CommandInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Focus()

	return CommandInput{Model: ti}
}

// Init returns the initial command.
func (c CommandInput) Init() tea.Cmd {
	return c.Model.Focus()
}

// SetPrompt sets the text shown before the cursor, e.g. "~/town $ ".
func (c *CommandInput) SetPrompt(p string) {
	c.Model.Prompt = theme.ShellPrompt.Render(p)
}

// SetWidth sets the visible width of the input.
func (c *CommandInput) SetWidth(w int) {
	c.Model.SetWidth(w)
}

// Update handles messages.
func (c CommandInput) Update(msg tea.Msg) (CommandInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up":
			c.browse(-1)
			return c, nil
		case "down":
			c.browse(1)
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

// View renders the prompt line.
func (c CommandInput) View() string {
	return c.Model.View()
}

// Value returns the current line.
func (c CommandInput) Value() string {
	return c.Model.Value()
}

// Take returns the current line, records it in history when non-empty,
// and clears the input.
func (c *CommandInput) Take() string {
	line := c.Model.Value()
	if line != "" && (len(c.history) == 0 || c.history[len(c.history)-1] != line) {
		c.history = append(c.history, line)
	}
	c.cursor = len(c.history)
	c.draft = ""
	c.Model.Reset()
	return line
}

// History returns the recorded lines, oldest first.
func (c CommandInput) History() []string {
	return c.history
}

func (c *CommandInput) browse(delta int) {
	if len(c.history) == 0 {
		return
	}
	if c.cursor == len(c.history) {
		c.draft = c.Model.Value()
	}
	next := c.cursor + delta
	if next < 0 || next > len(c.history) {
		return
	}
	c.cursor = next
	if next == len(c.history) {
		c.Model.SetValue(c.draft)
	} else {
		c.Model.SetValue(c.history[next])
	}
	c.Model.CursorEnd()
}
