// Package markdown finds fenced diagram blocks in Markdown documents so a
// graph can be read from one or written back into one.
package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrNoBlock is returned when a document has no block of the wanted kind.
var ErrNoBlock = errors.New("no diagram block")

// Block is one fenced diagram block. Start and End are the zero based
// lines of the opening and closing fences.
type Block struct {
	Lang    string // mermaid, dot or graphviz
	Content string // lines between the fences, indentation removed
	Start   int
	End     int
	Indent  string // indentation before the opening fence
	Hash    string // SHA-256 of Content when scanned
}

// Scanner finds diagram blocks in a Markdown document.
type Scanner struct {
	lines []string
}

// NewScanner creates a scanner over content.
func NewScanner(content string) *Scanner {
	return &Scanner{lines: strings.Split(content, "\n")}
}

// Content returns the document.
func (s *Scanner) Content() string {
	return strings.Join(s.lines, "\n")
}

// Blocks returns every closed diagram block in document order. A fence left
// open at the end of the document is ignored.
func (s *Scanner) Blocks() []Block {
	var blocks []Block
	var current *Block
	var body []string

	for i, line := range s.lines {
		trimmed := strings.TrimLeft(line, " \t")
		if current == nil {
			if !strings.HasPrefix(trimmed, "```") {
				continue
			}
			lang := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
			if IsDiagramLanguage(lang) {
				current = &Block{Lang: lang, Start: i, Indent: line[:len(line)-len(trimmed)]}
				body = body[:0]
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			current.End = i
			current.Content = strings.Join(body, "\n")
			current.Hash = hash(current.Content)
			blocks = append(blocks, *current)
			current = nil
			continue
		}
		body = append(body, strings.TrimPrefix(line, current.Indent))
	}
	return blocks
}

// Find returns the n-th block, counting from 1. With n = 0 it returns the
// first block.
func (s *Scanner) Find(n int) (Block, error) {
	blocks := s.Blocks()
	if len(blocks) == 0 {
		return Block{}, ErrNoBlock
	}
	if n == 0 {
		n = 1
	}
	if n < 1 || n > len(blocks) {
		return Block{}, fmt.Errorf("block %d of %d: %w", n, len(blocks), ErrNoBlock)
	}
	return blocks[n-1], nil
}

// Replace swaps the content of b for content, keeping the fences and the
// block's indentation. It fails if the block moved or was edited since it
// was scanned.
func (s *Scanner) Replace(b Block, content string) error {
	if b.Start < 0 || b.End >= len(s.lines) || b.Start >= b.End {
		return fmt.Errorf("invalid block boundaries: start=%d, end=%d, total lines=%d",
			b.Start, b.End, len(s.lines))
	}
	if open := strings.TrimLeft(s.lines[b.Start], " \t"); !strings.HasPrefix(strings.ToLower(open), "```"+b.Lang) {
		return fmt.Errorf("block start marker has changed at line %d", b.Start+1)
	}
	if !strings.HasPrefix(strings.TrimLeft(s.lines[b.End], " \t"), "```") {
		return fmt.Errorf("block end marker has changed at line %d", b.End+1)
	}

	current := make([]string, 0, b.End-b.Start-1)
	for _, line := range s.lines[b.Start+1 : b.End] {
		current = append(current, strings.TrimPrefix(line, b.Indent))
	}
	if hash(strings.Join(current, "\n")) != b.Hash {
		return fmt.Errorf("block at line %d was modified (hash mismatch)", b.Start+1)
	}

	body := strings.Split(strings.TrimRight(content, "\n"), "\n")
	lines := make([]string, 0, len(s.lines)-len(current)+len(body))
	lines = append(lines, s.lines[:b.Start+1]...)
	for _, line := range body {
		lines = append(lines, b.Indent+line)
	}
	lines = append(lines, s.lines[b.End:]...)
	s.lines = lines
	return nil
}

// Append adds a new block at the end of the document.
func (s *Scanner) Append(lang, content string) {
	if last := len(s.lines) - 1; last >= 0 && s.lines[last] == "" {
		s.lines = s.lines[:last]
	}
	if len(s.lines) > 0 {
		s.lines = append(s.lines, "")
	}
	s.lines = append(s.lines, "```"+lang)
	s.lines = append(s.lines, strings.Split(strings.TrimRight(content, "\n"), "\n")...)
	s.lines = append(s.lines, "```", "")
}

// IsDiagramLanguage reports whether lang names a fence holding a graph.
func IsDiagramLanguage(lang string) bool {
	switch strings.ToLower(lang) {
	case "mermaid", "dot", "graphviz":
		return true
	default:
		return false
	}
}

// Describe returns a one line summary of the n-th block, counting from 1.
func Describe(b Block, n int) string {
	preview := ""
	for _, line := range strings.Split(b.Content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			preview = trimmed
			break
		}
	}
	if len(preview) > 50 {
		preview = preview[:47] + "..."
	}
	return fmt.Sprintf("%d. %s (line %d): %s", n, b.Lang, b.Start+1, preview)
}

func hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
