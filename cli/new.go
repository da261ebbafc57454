package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"branch/diagram"
	"branch/storage"
)

func newCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new <file.json>",
		Short: "Start a graph file from the welcome nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSettings()
			if err != nil {
				return err
			}
			path := args[0]
			if err := storage.CheckExtension(path); err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			}

			if err := storage.New(s.importOptions()).Save(path, diagram.Welcome(s.ids)); err != nil {
				return err
			}
			Good.Fprintf(cmd.ErrOrStderr(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")
	return cmd
}
