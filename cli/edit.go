package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"branch/demo"
	"branch/diagram"
	"branch/editor"
	"branch/export"
	"branch/importer"
	"branch/notify"
	"branch/render"
	"branch/storage"
	"branch/terminal"
)

// runEditor opens the terminal editor on path. A path that does not exist
// yet becomes the save target of the welcome graph. A non-empty script is
// played into the editor once it is running.
func runEditor(s *settings, path, script string) error {
	s, err := ensure(s)
	if err != nil {
		return err
	}
	var sc *demo.Script
	if script != "" {
		if sc, err = demo.LoadScript(script); err != nil {
			return err
		}
	}
	cfg := s.cfg
	cw, ch := cfg.View.CellWidth, cfg.View.CellHeight

	layout := notify.CellLayout(cw, ch)
	layout.Width = cfg.View.NotificationWidth * cw

	ed := editor.New(diagram.Welcome(s.ids), editor.Options{
		Store:         storage.New(importer.Options{IDs: s.ids, Logger: s.logger}),
		Image:         export.NewPNGExporter(cfg.Export.FontSize),
		Notifications: notify.NewQueue(layout),
		Logger:        s.logger,
		NodeSize:      diagram.Point{X: cfg.Nodes.Width, Y: cfg.Nodes.Height},
	})

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			ed.SetPath(path)
		} else {
			_ = ed.OpenFile(path)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	scene := render.NewScene()
	scene.CellWidth, scene.CellHeight = cw, ch
	scene.ASCII = cfg.View.ASCII

	app := terminal.New(screen, ed, terminal.Options{
		Scene:    scene,
		Logger:   s.logger,
		Watch:    cfg.Watch.Enabled,
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
	})
	s.logger.Info("editor started", zap.String("path", path))

	if sc != nil {
		player := demo.NewPlayer(sc, screen.PostEvent)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := player.Play(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("demo stopped", zap.String("script", script), zap.Error(err))
			}
		}()
	}
	return app.Run()
}

func ensure(s *settings) (*settings, error) {
	if s != nil {
		return s, nil
	}
	return requireSettings()
}
