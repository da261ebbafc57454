package editor

import (
	"unicode"

	"go.uber.org/zap"

	"branch/diagram"
)

// Command is a discrete editor action, independent of how it was
// triggered.
type Command int

const (
	CommandNone Command = iota
	CommandConnect
	CommandDisconnect
	CommandAddNode
	CommandSelectAll
	CommandDelete
	CommandExportJSON
	CommandSaveAs
	CommandExportImage
	CommandOpenJSON
	CommandHelp
	CommandEditNode
	CommandQuit
)

// String returns the command name used in logs and the help screen.
func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandConnect:
		return "connect"
	case CommandDisconnect:
		return "disconnect"
	case CommandAddNode:
		return "add-node"
	case CommandSelectAll:
		return "select-all"
	case CommandDelete:
		return "delete"
	case CommandExportJSON:
		return "export-json"
	case CommandSaveAs:
		return "save-as"
	case CommandExportImage:
		return "export-image"
	case CommandOpenJSON:
		return "open-json"
	case CommandHelp:
		return "help"
	case CommandEditNode:
		return "edit-node"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Modifier is the set of modifier keys held with a key press.
type Modifier uint8

const ModNone Modifier = 0

const (
	ModShift Modifier = 1 << iota
	// ModPrimary is Ctrl, or Cmd where the front-end maps it.
	ModPrimary
)

// ResultKind tells the front-end what a command still needs from it.
type ResultKind int

const (
	ResultNone ResultKind = iota
	// ResultNeedSavePath asks for a target, then SaveFile.
	ResultNeedSavePath
	// ResultNeedImagePath asks for a target, then ExportImage.
	ResultNeedImagePath
	// ResultNeedOpenPath asks for a file, then OpenFile.
	ResultNeedOpenPath
	// ResultShowHelp asks for HelpText to be shown.
	ResultShowHelp
	// ResultEditNode asks for the node's fields, then EditNode.
	ResultEditNode
	ResultQuit
)

// Result is what a command or gesture asks of the front-end.
type Result struct {
	Kind ResultKind
	// Node is the node to edit for ResultEditNode.
	Node diagram.Handle
	// Err is set when the command itself failed, such as a save to the
	// current path. The user has already been notified.
	Err error
}

// KeyCommand maps a key press to a command. Letters are case insensitive.
// Single keys act only without the primary modifier; shift is ignored
// except for save-as.
func KeyCommand(key rune, mod Modifier) Command {
	key = unicode.ToLower(key)

	if mod&ModPrimary != 0 {
		switch key {
		case 'a':
			return CommandSelectAll
		case 'e':
			return CommandExportImage
		case 's':
			if mod&ModShift != 0 {
				return CommandSaveAs
			}
			return CommandExportJSON
		case 'o':
			return CommandOpenJSON
		case 'q':
			return CommandQuit
		}
		return CommandNone
	}

	switch key {
	case 'a':
		return CommandAddNode
	case 'x':
		return CommandDelete
	case 'c':
		return CommandConnect
	case 'd':
		return CommandDisconnect
	case 'h', '?':
		return CommandHelp
	case 'e', '\r', '\n':
		return CommandEditNode
	case 'q':
		return CommandQuit
	}
	return CommandNone
}

// HandleKey dispatches a key press.
func (e *Editor) HandleKey(key rune, mod Modifier) Result {
	cmd := KeyCommand(key, mod)
	if cmd == CommandNone {
		return Result{}
	}
	return e.Execute(cmd)
}

// Execute runs cmd against the current graph.
func (e *Editor) Execute(cmd Command) Result {
	e.log.Debug("execute command", zap.Stringer("command", cmd))

	switch cmd {
	case CommandConnect:
		if sel := e.graph.Selection(); len(sel) == 2 {
			e.graph.Connect(sel[0], sel[1])
		}

	case CommandDisconnect:
		if sel := e.graph.Selection(); len(sel) == 2 {
			e.graph.Disconnect(sel[0], sel[1])
		}

	case CommandAddNode:
		at := e.pointer.Sub(e.offset)
		h := e.graph.Insert(diagram.Node{
			ID:       e.graph.IDs().NextID(),
			X:        at.X,
			Y:        at.Y,
			Width:    e.size.X,
			Height:   e.size.Y,
			Prompt:   diagram.DefaultPrompt,
			Response: diagram.DefaultResponse,
		})
		e.graph.Select(h, false)

	case CommandSelectAll:
		e.graph.SelectAll()

	case CommandDelete:
		e.graph.DeleteSelected()

	case CommandExportJSON:
		if e.path == "" {
			return Result{Kind: ResultNeedSavePath}
		}
		if err := e.SaveFile(e.path); err != nil {
			return Result{Err: err}
		}

	case CommandSaveAs:
		return Result{Kind: ResultNeedSavePath}

	case CommandExportImage:
		if e.graph.Len() == 0 {
			e.notes.Error("Nothing to export", "Add a node before exporting an image.")
			return Result{}
		}
		return Result{Kind: ResultNeedImagePath}

	case CommandOpenJSON:
		return Result{Kind: ResultNeedOpenPath}

	case CommandHelp:
		return Result{Kind: ResultShowHelp}

	case CommandEditNode:
		if sel := e.graph.Selection(); len(sel) == 1 {
			return Result{Kind: ResultEditNode, Node: sel[0]}
		}

	case CommandQuit:
		return Result{Kind: ResultQuit}
	}
	return Result{}
}
