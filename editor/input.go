package editor

import "strings"

// TextInput is a rune buffer with a cursor, used for path prompts and the
// node edit form. Newlines are allowed when Multiline is set.
type TextInput struct {
	buffer    []rune
	cursor    int
	Multiline bool
}

// NewTextInput returns an input holding text with the cursor at its end.
func NewTextInput(text string, multiline bool) *TextInput {
	buf := []rune(text)
	return &TextInput{buffer: buf, cursor: len(buf), Multiline: multiline}
}

// String returns the current text.
func (t *TextInput) String() string {
	return string(t.buffer)
}

// Cursor returns the cursor position in runes.
func (t *TextInput) Cursor() int {
	return t.cursor
}

// SetText replaces the buffer and moves the cursor to the end.
func (t *TextInput) SetText(text string) {
	t.buffer = []rune(text)
	t.cursor = len(t.buffer)
}

// Insert types r at the cursor. Newlines are dropped on single line inputs.
func (t *TextInput) Insert(r rune) {
	if r == '\n' && !t.Multiline {
		return
	}
	t.buffer = append(t.buffer[:t.cursor], append([]rune{r}, t.buffer[t.cursor:]...)...)
	t.cursor++
}

// Backspace deletes the rune before the cursor.
func (t *TextInput) Backspace() {
	if t.cursor == 0 {
		return
	}
	t.buffer = append(t.buffer[:t.cursor-1], t.buffer[t.cursor:]...)
	t.cursor--
}

// Delete removes the rune under the cursor.
func (t *TextInput) Delete() {
	if t.cursor >= len(t.buffer) {
		return
	}
	t.buffer = append(t.buffer[:t.cursor], t.buffer[t.cursor+1:]...)
}

// DeleteWordBackward deletes the previous word (Ctrl+W).
func (t *TextInput) DeleteWordBackward() {
	if t.cursor == 0 {
		return
	}

	start := t.cursor - 1
	for start >= 0 && t.buffer[start] == ' ' {
		start--
	}
	for start >= 0 && t.buffer[start] != ' ' && t.buffer[start] != '\n' {
		start--
	}
	start++

	if start < t.cursor {
		t.buffer = append(t.buffer[:start], t.buffer[t.cursor:]...)
		t.cursor = start
	}
}

// DeleteToLineStart deletes from the start of the current line to the
// cursor (Ctrl+U).
func (t *TextInput) DeleteToLineStart() {
	start := t.lineStart()
	if start < t.cursor {
		t.buffer = append(t.buffer[:start], t.buffer[t.cursor:]...)
		t.cursor = start
	}
}

// DeleteToLineEnd deletes from the cursor to the end of the current line
// (Ctrl+K).
func (t *TextInput) DeleteToLineEnd() {
	end := t.lineEnd()
	if end > t.cursor {
		t.buffer = append(t.buffer[:t.cursor], t.buffer[end:]...)
	}
}

// Home moves the cursor to the beginning of the current line.
func (t *TextInput) Home() {
	t.cursor = t.lineStart()
}

// End moves the cursor to the end of the current line.
func (t *TextInput) End() {
	t.cursor = t.lineEnd()
}

// Left moves the cursor back one rune.
func (t *TextInput) Left() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// Right moves the cursor forward one rune.
func (t *TextInput) Right() {
	if t.cursor < len(t.buffer) {
		t.cursor++
	}
}

// WordLeft moves the cursor to the beginning of the previous word.
func (t *TextInput) WordLeft() {
	if t.cursor == 0 {
		return
	}
	t.cursor--
	for t.cursor > 0 && t.buffer[t.cursor] == ' ' {
		t.cursor--
	}
	for t.cursor > 0 && t.buffer[t.cursor-1] != ' ' && t.buffer[t.cursor-1] != '\n' {
		t.cursor--
	}
}

// WordRight moves the cursor to the beginning of the next word.
func (t *TextInput) WordRight() {
	for t.cursor < len(t.buffer) && t.buffer[t.cursor] != ' ' && t.buffer[t.cursor] != '\n' {
		t.cursor++
	}
	for t.cursor < len(t.buffer) && t.buffer[t.cursor] == ' ' {
		t.cursor++
	}
}

// Lines splits the text at newlines.
func (t *TextInput) Lines() []string {
	return strings.Split(string(t.buffer), "\n")
}

// Position returns the cursor as a zero based line and column.
func (t *TextInput) Position() (line, col int) {
	for i := 0; i < t.cursor; i++ {
		if t.buffer[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return line, col
}

func (t *TextInput) lineStart() int {
	pos := t.cursor
	for pos > 0 && t.buffer[pos-1] != '\n' {
		pos--
	}
	return pos
}

func (t *TextInput) lineEnd() int {
	pos := t.cursor
	for pos < len(t.buffer) && t.buffer[pos] != '\n' {
		pos++
	}
	return pos
}
