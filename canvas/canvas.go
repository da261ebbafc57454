// Package canvas provides the text layout helpers shared by every renderer
// and a styled character grid used by the terminal and text exports.
package canvas

import "branch/diagram"

// Canvas represents a 2D grid for drawing.
type Canvas interface {
	// Set places a character at the given position.
	Set(p diagram.Point, char rune) error
	// Get returns the character at the given position.
	Get(p diagram.Point) rune
	// Size returns the canvas dimensions.
	Size() (width, height int)
}

// Style tags a cell so front-ends can colour it.
type Style uint8

const (
	StyleDefault Style = iota
	StyleBorder
	StyleSelected
	StyleHeader
	StyleConnection
	StyleNotice
	StyleError
	StyleMuted
)

// BoxStyle defines the characters used to draw a box.
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
}

// Predefined box styles
var (
	// RoundedBoxStyle matches the rounded node outline.
	RoundedBoxStyle = BoxStyle{
		TopLeft:     '╭',
		TopRight:    '╮',
		BottomLeft:  '╰',
		BottomRight: '╯',
		Horizontal:  '─',
		Vertical:    '│',
	}

	// SimpleBoxStyle uses ASCII characters
	SimpleBoxStyle = BoxStyle{
		TopLeft:     '+',
		TopRight:    '+',
		BottomLeft:  '+',
		BottomRight: '+',
		Horizontal:  '-',
		Vertical:    '|',
	}

	// DoubleBoxStyle marks selected nodes.
	DoubleBoxStyle = BoxStyle{
		TopLeft:     '╔',
		TopRight:    '╗',
		BottomLeft:  '╚',
		BottomRight: '╝',
		Horizontal:  '═',
		Vertical:    '║',
	}
)
