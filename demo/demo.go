// Package demo plays scripted keystrokes and clicks into the terminal
// editor, for recordings and walkthroughs.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"
)

// Default pacing in milliseconds.
const (
	DefaultDelay    = 300
	DefaultVariance = 100
	minDelay        = 50
)

// Cell is a screen position in character cells.
type Cell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Step is one scripted action. Exactly one of the action fields is set.
type Step struct {
	Key         string `yaml:"key,omitempty"`  // "a", "ctrl+s", "enter", ...
	Text        string `yaml:"text,omitempty"` // typed rune by rune
	Click       *Cell  `yaml:"click,omitempty"`
	DoubleClick *Cell  `yaml:"double_click,omitempty"`
	Drag        []Cell `yaml:"drag,omitempty"` // pressed at the first cell, released at the last
	Pause       bool   `yaml:"pause,omitempty"`
	Shift       bool   `yaml:"shift,omitempty"` // held during mouse steps

	Delay    int `yaml:"delay,omitempty"`    // wait after the step
	Variance int `yaml:"variance,omitempty"` // random ± added to Delay
}

// Script is a named list of steps.
type Script struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	BaseDelay    int    `yaml:"base_delay"`
	BaseVariance int    `yaml:"base_variance"`
	Steps        []Step `yaml:"steps"`
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read demo script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML script and checks every step.
func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse demo script: %w", err)
	}
	if script.BaseDelay == 0 {
		script.BaseDelay = DefaultDelay
	}
	if script.BaseVariance == 0 {
		script.BaseVariance = DefaultVariance
	}
	for i, step := range script.Steps {
		if _, err := Events(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &script, nil
}

// Player posts a script's events to a screen.
type Player struct {
	script *Script
	post   func(tcell.Event) error
	rng    *rand.Rand
	// Sleep waits between steps. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPlayer creates a player that hands events to post, usually a
// screen's PostEvent.
func NewPlayer(script *Script, post func(tcell.Event) error) *Player {
	return &Player{
		script: script,
		post:   post,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Sleep:  sleep,
	}
}

// Play runs the script to the end or until ctx is done.
func (p *Player) Play(ctx context.Context) error {
	for _, step := range p.script.Steps {
		events, err := Events(step)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.post(ev); err != nil {
				return fmt.Errorf("post event: %w", err)
			}
		}
		if err := p.Sleep(ctx, p.delay(step)); err != nil {
			return err
		}
	}
	return nil
}

// delay returns the wait after step, with its random variance applied.
func (p *Player) delay(step Step) time.Duration {
	delay := step.Delay
	if delay == 0 {
		delay = p.script.BaseDelay
	}
	variance := step.Variance
	if variance == 0 {
		variance = p.script.BaseVariance
	}
	if variance > 0 {
		delay += p.rng.Intn(variance*2) - variance
	}
	return time.Duration(max(delay, minDelay)) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Events converts a step into the tcell events it stands for.
func Events(step Step) ([]tcell.Event, error) {
	switch {
	case step.Key != "":
		ev, err := ParseKey(step.Key)
		if err != nil {
			return nil, err
		}
		return []tcell.Event{ev}, nil

	case step.Text != "":
		events := make([]tcell.Event, 0, len(step.Text))
		for _, r := range step.Text {
			if r == '\n' {
				events = append(events, tcell.NewEventKey(tcell.KeyEnter, '\r', tcell.ModNone))
				continue
			}
			events = append(events, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
		}
		return events, nil

	case step.Click != nil:
		return click(*step.Click, mouseMod(step)), nil

	case step.DoubleClick != nil:
		mod := mouseMod(step)
		return append(click(*step.DoubleClick, mod), click(*step.DoubleClick, mod)...), nil

	case len(step.Drag) >= 2:
		mod := mouseMod(step)
		events := make([]tcell.Event, 0, len(step.Drag)+1)
		for _, c := range step.Drag {
			events = append(events, tcell.NewEventMouse(c.X, c.Y, tcell.Button1, mod))
		}
		last := step.Drag[len(step.Drag)-1]
		return append(events, tcell.NewEventMouse(last.X, last.Y, tcell.ButtonNone, mod)), nil

	case len(step.Drag) == 1:
		return nil, fmt.Errorf("drag needs at least two cells")

	case step.Pause:
		return nil, nil
	}
	return nil, fmt.Errorf("empty step")
}

func mouseMod(step Step) tcell.ModMask {
	if step.Shift {
		return tcell.ModShift
	}
	return tcell.ModNone
}

func click(c Cell, mod tcell.ModMask) []tcell.Event {
	return []tcell.Event{
		tcell.NewEventMouse(c.X, c.Y, tcell.Button1, mod),
		tcell.NewEventMouse(c.X, c.Y, tcell.ButtonNone, mod),
	}
}

var namedKeys = map[string]tcell.Key{
	"enter":     tcell.KeyEnter,
	"esc":       tcell.KeyEsc,
	"tab":       tcell.KeyTab,
	"backtab":   tcell.KeyBacktab,
	"delete":    tcell.KeyDelete,
	"backspace": tcell.KeyBackspace2,
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"home":      tcell.KeyHome,
	"end":       tcell.KeyEnd,
}

// ParseKey reads a key name such as "a", "enter", "ctrl+s",
// "ctrl+shift+s" or "alt+b".
func ParseKey(name string) (*tcell.EventKey, error) {
	parts := strings.Split(name, "+")
	base := parts[len(parts)-1]
	mod := tcell.ModNone
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToLower(m) {
		case "ctrl":
			mod |= tcell.ModCtrl
		case "alt":
			mod |= tcell.ModAlt
		case "shift":
			mod |= tcell.ModShift
		case "meta", "cmd":
			mod |= tcell.ModMeta
		default:
			return nil, fmt.Errorf("unknown modifier %q in %q", m, name)
		}
	}

	if k, ok := namedKeys[strings.ToLower(base)]; ok {
		return tcell.NewEventKey(k, 0, mod), nil
	}
	runes := []rune(base)
	if len(runes) != 1 {
		return nil, fmt.Errorf("unknown key %q", name)
	}
	r := runes[0]
	if mod&tcell.ModCtrl != 0 && r >= 'a' && r <= 'z' {
		return tcell.NewEventKey(tcell.KeyCtrlA+tcell.Key(r-'a'), 0, mod), nil
	}
	return tcell.NewEventKey(tcell.KeyRune, r, mod), nil
}
