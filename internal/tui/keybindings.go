package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the reader keybindings. It implements help.KeyMap.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Toggle        key.Binding
	Delete        key.Binding
	Compose       key.Binding
	RefreshFeed   key.Binding
	RefreshThread key.Binding
	Logout        key.Binding
	Dismiss       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "comments"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Compose: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		RefreshFeed: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		RefreshThread: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh comments"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Delete, k.Compose, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Delete, k.Compose, k.RefreshThread},
		{k.RefreshFeed, k.Logout, k.Dismiss},
		{k.Help, k.Quit},
	}
}

// applyState enables only the bindings the current row and session allow.
// A disabled binding neither matches nor shows up in help.
func (k *KeyMap) applyState(r row, ok bool, canDelete, canComment, authenticated bool) {
	k.Delete.SetEnabled(ok && r.kind == rowComment && canDelete && r.comment.Deletable)
	k.Compose.SetEnabled(ok && canComment)
	k.RefreshThread.SetEnabled(ok && r.open)
	k.Logout.SetEnabled(authenticated)
	k.Toggle.SetEnabled(ok)
}
