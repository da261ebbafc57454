package editor

import (
	"fmt"
	"strings"
)

// HelpCategory groups related key bindings.
type HelpCategory struct {
	Name     string
	Commands []HelpCommand
}

// HelpCommand is one line of the help screen.
type HelpCommand struct {
	Key         string
	Description string
}

// HelpCategories returns the key bindings shown on the help screen.
func HelpCategories() []HelpCategory {
	return []HelpCategory{
		{
			Name: "Key Commands",
			Commands: []HelpCommand{
				{"C", "Create connection between two selected nodes"},
				{"D", "Delete connection between two selected nodes"},
				{"A", "Add new node"},
				{"Ctrl+A", "Select all nodes"},
				{"X", "Delete selected nodes"},
				{"E/Enter", "Edit the selected node"},
				{"Ctrl+E", "Export to image"},
				{"Ctrl+S", "Export to JSON"},
				{"Ctrl+Shift+S", "Export to JSON under a new name"},
				{"Ctrl+O", "Open a JSON file"},
				{"H", "Open help"},
				{"Q", "Quit"},
			},
		},
		{
			Name: "General Help",
			Commands: []HelpCommand{
				{"Click", "Select a node, Shift+Click adds to the selection"},
				{"Drag", "Move a node, or the canvas when dragging empty space"},
				{"Double click", "Edit a node's properties"},
				{"Click message", "Dismiss a notification"},
			},
		},
	}
}

// HelpText returns the help screen as plain text.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Help:\n")
	for i, cat := range HelpCategories() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(cat.Name + ":\n")
		for _, cmd := range cat.Commands {
			fmt.Fprintf(&b, "  %-14s %s\n", "["+cmd.Key+"]", cmd.Description)
		}
	}
	return b.String()
}
