// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the help view.
	Help key.Binding

	// Up and Down move the chunk cursor.
	Up   key.Binding
	Down key.Binding

	// Select selects the chunk under the cursor, jumping to its reference.
	Select key.Binding

	// Cancel leaves the current mode or clears the selection.
	Cancel key.Binding

	// NewQuery focuses the query input.
	NewQuery key.Binding

	// ToggleKind switches the query between text and image.
	ToggleKind key.Binding

	// Submit sends the query.
	Submit key.Binding

	// Grow and Shrink resize the chunk under the cursor.
	Grow   key.Binding
	Shrink key.Binding

	// FontUp and FontDown change its font size.
	FontUp   key.Binding
	FontDown key.Binding

	// Recolor moves it to the next palette colour.
	Recolor key.Binding

	// Link starts connect mode from the chunk under the cursor.
	Link key.Binding

	// Delete asks to delete the chunk under the cursor.
	Delete key.Binding

	// Confirm and Deny answer the delete prompt.
	Confirm key.Binding
	Deny    key.Binding

	// PrevPage and NextPage move through the document.
	PrevPage key.Binding
	NextPage key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NewQuery: key.NewBinding(
			key.WithKeys("/", "a"),
			key.WithHelp("/", "ask"),
		),
		ToggleKind: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "text/image"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Grow: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "resize"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "shrink"),
		),
		FontUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("[/]", "font"),
		),
		FontDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "smaller font"),
		),
		Recolor: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "colour"),
		),
		Link: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "link"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "delete"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "keep"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewQuery, k.Select, k.Delete, k.Help, k.Quit}
}

// InputHelp returns keybindings for the query input.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleKind, k.Cancel}
}

// LinkHelp returns keybindings for connect mode.
func (k *KeyMap) LinkHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Cancel}
}

// ConfirmHelp returns keybindings for the delete prompt.
func (k *KeyMap) ConfirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Deny}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Cancel},
		{k.NewQuery, k.ToggleKind, k.Submit},
		{k.Grow, k.FontUp, k.Recolor, k.Link, k.Delete},
		{k.PrevPage, k.NextPage},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
