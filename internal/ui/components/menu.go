package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/linuxstory/internal/ui/theme"
)

// ItemState decorates a menu item.
type ItemState int

const (
	ItemOpen ItemState = iota
	ItemDone
	ItemCurrent
	ItemLocked
)

// MenuItem represents a single item in a navigation menu. Locked items
// are shown but cannot be selected.
type MenuItem struct {
	Label  string
	State  ItemState
	Action func() tea.Cmd
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the cursor on the current item, or the
// first selectable one.
func NewMenu(items []MenuItem) Menu {
	selected := -1
	for i, item := range items {
		if item.State == ItemCurrent {
			selected = i
			break
		}
		if selected < 0 && item.State != ItemLocked {
			selected = i
		}
	}
	return Menu{
		Items:    items,
		Selected: max(selected, 0),
	}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if m.Items[i].State != ItemLocked {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if m.Items[i].State != ItemLocked {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && item.State != ItemLocked {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var s string
	for i, item := range m.Items {
		marker := "  "
		switch item.State {
		case ItemDone:
			marker = theme.Done.Render("✓ ")
		case ItemCurrent:
			marker = theme.Hint.Render("● ")
		case ItemLocked:
			marker = theme.Locked.Render("· ")
		}

		style := theme.Unselected
		prefix := "    "
		switch {
		case item.State == ItemLocked:
			style = theme.Locked
		case i == m.Selected:
			style = theme.Selected
			prefix = "  ▸ "
		}
		s += style.Render(prefix) + marker + style.Render(item.Label) + "\n"
	}
	return s
}
