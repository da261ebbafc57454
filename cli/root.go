// Package cli holds the branch command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"branch/config"
	"branch/diagram"
	"branch/importer"
	"branch/logging"
	"branch/storage"
)

var version = "0.3.0"

// EnvFile is loaded into the environment before the config is read.
const EnvFile = ".env"

var (
	configPath string
	logFile    string
	debug      bool
	demoScript string
)

// settings are resolved once per invocation, before any command runs.
type settings struct {
	cfg    *config.Config
	logger *zap.Logger
	ids    diagram.IDGenerator
}

var current *settings

var rootCmd = &cobra.Command{
	Use:   "branch [file.json]",
	Short: "branch - design branching dialogue graphs",
	Long: Brand.Sprint("branch") + " - a terminal designer for branching dialogue\n" +
		Subtle.Sprint("Nodes hold a prompt and a response; connections are the choices between them"),
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd.Name() != "branch")
		if err != nil {
			return err
		}
		current = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			_ = current.logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return runEditor(current, path, demoScript)
	},
}

func init() {
	rootCmd.SetVersionTemplate("branch {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write the log to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level")
	rootCmd.Flags().StringVar(&demoScript, "demo", "", "Play a YAML key script into the editor")

	rootCmd.AddCommand(
		exportCmd(),
		NewImportCommand(),
		validateCmd(),
		newCmd(),
		configCmd(),
	)
}

// Execute runs the root command and prints any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		Bad.Fprintf(os.Stderr, "branch: %v\n", err)
	}
	return err
}

// loadSettings resolves the config, builds the logger and the id
// generator. Logging may go to stderr only outside the editor, which owns
// the terminal.
func loadSettings(allowStderr bool) (*settings, error) {
	cfg, err := config.Resolve(configPath, EnvFile)
	if err != nil {
		return nil, err
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	logger, err := logging.New(logging.Options{
		File:        cfg.Log.File,
		Level:       cfg.Log.Level,
		Debug:       debug,
		AllowStderr: allowStderr,
	})
	if err != nil {
		return nil, err
	}

	ids, err := diagram.NewIDGenerator(cfg.Nodes.IDs)
	if err != nil {
		return nil, err
	}
	logger.Debug("settings loaded",
		zap.String("ids", cfg.Nodes.IDs),
		zap.String("log_file", cfg.Log.File),
	)
	return &settings{cfg: cfg, logger: logger, ids: ids}, nil
}

func (s *settings) importOptions() importer.Options {
	return importer.Options{IDs: s.ids, Logger: s.logger}
}

// loadGraph reads a graph from the interchange JSON format or, by
// extension, from one of the diagram text formats.
func (s *settings) loadGraph(path string) (*diagram.Graph, error) {
	if filepath.Ext(path) == storage.Extension {
		return storage.New(s.importOptions()).Load(path)
	}

	imp, err := importer.NewImporterRegistry(s.importOptions()).ForFile(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagram.NewFileError(diagram.ErrIOFailure, "open", path, err)
	}
	g, err := imp.Import(string(data))
	if err != nil {
		return nil, diagram.NewFileError(diagram.ErrInvalidFormat, "open", path, err)
	}
	s.logger.Info("imported graph",
		zap.String("path", path),
		zap.String("format", imp.GetFormatName()),
		zap.Int("nodes", g.Len()),
	)
	return g, nil
}

// requireSettings returns the resolved settings, loading them for commands
// run outside the root command.
func requireSettings() (*settings, error) {
	if current != nil {
		return current, nil
	}
	s, err := loadSettings(true)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	current = s
	return s, nil
}
