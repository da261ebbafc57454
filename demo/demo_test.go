package demo

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
	}{
		{"a", tcell.KeyRune, 'a', tcell.ModNone},
		{"enter", tcell.KeyEnter, 0, tcell.ModNone},
		{"Esc", tcell.KeyEsc, 0, tcell.ModNone},
		{"ctrl+s", tcell.KeyCtrlS, 0, tcell.ModCtrl},
		{"ctrl+shift+s", tcell.KeyCtrlS, 0, tcell.ModCtrl | tcell.ModShift},
		{"alt+b", tcell.KeyRune, 'b', tcell.ModAlt},
		{"shift+left", tcell.KeyLeft, 0, tcell.ModShift},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseKey(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.key, ev.Key())
			if tt.key == tcell.KeyRune {
				assert.Equal(t, tt.r, ev.Rune())
			}
			assert.Equal(t, tt.mod, ev.Modifiers())
		})
	}

	for _, bad := range []string{"hyper+a", "pageup", "ab"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestEvents(t *testing.T) {
	events, err := Events(Step{Text: "hi\n"})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 'h', events[0].(*tcell.EventKey).Rune())
	assert.Equal(t, tcell.KeyEnter, events[2].(*tcell.EventKey).Key())

	events, err = Events(Step{DoubleClick: &Cell{X: 3, Y: 4}})
	require.NoError(t, err)
	require.Len(t, events, 4)
	for i, ev := range events {
		m := ev.(*tcell.EventMouse)
		x, y := m.Position()
		assert.Equal(t, 3, x)
		assert.Equal(t, 4, y)
		if i%2 == 0 {
			assert.Equal(t, tcell.Button1, m.Buttons())
		} else {
			assert.Equal(t, tcell.ButtonNone, m.Buttons())
		}
	}

	events, err = Events(Step{Drag: []Cell{{1, 1}, {2, 2}, {5, 3}}})
	require.NoError(t, err)
	require.Len(t, events, 4)
	last := events[3].(*tcell.EventMouse)
	x, y := last.Position()
	assert.Equal(t, []int{5, 3}, []int{x, y})
	assert.Equal(t, tcell.ButtonNone, last.Buttons())

	events, err = Events(Step{Pause: true})
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = Events(Step{Drag: []Cell{{1, 1}}})
	assert.Error(t, err)
	_, err = Events(Step{})
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	script, err := LoadScript("testdata/walkthrough.yaml")
	require.NoError(t, err)
	assert.Equal(t, "walkthrough", script.Name)
	assert.Equal(t, 400, script.BaseDelay)
	assert.Len(t, script.Steps, 13)
	assert.Equal(t, 1000, script.Steps[9].Delay)
}

func TestParseScriptDefaultsAndErrors(t *testing.T) {
	script, err := ParseScript([]byte("name: x\nsteps:\n  - key: a\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDelay, script.BaseDelay)
	assert.Equal(t, DefaultVariance, script.BaseVariance)

	_, err = ParseScript([]byte("steps:\n  - key: a\n  - key: nope\n"))
	assert.ErrorContains(t, err, "step 2")

	_, err = ParseScript([]byte("steps: [\n"))
	assert.Error(t, err)
}

func TestPlay(t *testing.T) {
	script, err := ParseScript([]byte("steps:\n  - text: ab\n  - key: ctrl+s\n    delay: 10\n    variance: -1\n"))
	require.NoError(t, err)

	var posted []tcell.Event
	var waits []time.Duration
	p := NewPlayer(script, func(ev tcell.Event) error {
		posted = append(posted, ev)
		return nil
	})
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	require.NoError(t, p.Play(context.Background()))
	assert.Len(t, posted, 3)
	require.Len(t, waits, 2)
	assert.Equal(t, time.Duration(minDelay)*time.Millisecond, waits[1])
	assert.GreaterOrEqual(t, waits[0], time.Duration(DefaultDelay-DefaultVariance)*time.Millisecond)
	assert.Less(t, waits[0], time.Duration(DefaultDelay+DefaultVariance)*time.Millisecond)
}

func TestPlayStopsOnCancel(t *testing.T) {
	script, err := ParseScript([]byte("steps:\n  - key: a\n  - key: b\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var posted int
	p := NewPlayer(script, func(tcell.Event) error {
		posted++
		return nil
	})
	p.Sleep = func(context.Context, time.Duration) error {
		cancel()
		return nil
	}

	assert.ErrorIs(t, p.Play(ctx), context.Canceled)
	assert.Equal(t, 1, posted)
}
