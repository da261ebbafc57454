package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"branch/diagram"
	"branch/export"
	"branch/importer"
	"branch/storage"
)

// NewImportCommand converts diagram text formats to the interchange JSON
// format. The import binary runs it on its own.
func NewImportCommand() *cobra.Command {
	var (
		format string
		output string
		block  int
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert a Mermaid, Graphviz, PlantUML or D2 diagram to branch JSON",
		Long: "Convert a Mermaid, Graphviz, PlantUML or D2 diagram to branch JSON. Markdown\n" +
			"files are read from their first fenced mermaid or dot block, or the one picked\n" +
			"with --block.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSettings()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return diagram.NewFileError(diagram.ErrIOFailure, "import", args[0], err)
			}

			registry := importer.NewImporterRegistry(s.importOptions())
			g, err := importContent(registry, args[0], string(data), format, block)
			if err != nil {
				return err
			}
			s.logger.Info("import finished", zap.String("input", args[0]), zap.Int("nodes", g.Len()))

			if output != "" {
				if err := storage.CheckExtension(output); err != nil {
					return err
				}
				if err := storage.New(s.importOptions()).Save(output, g); err != nil {
					return err
				}
				Good.Fprintf(cmd.ErrOrStderr(), "Imported %d nodes to %s\n", g.Len(), output)
				return nil
			}

			out, err := export.NewJSONExporter().Export(g)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: json, mermaid, graphviz, plantuml, markdown or d2 (default: by extension, then content)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .json file (default stdout)")
	cmd.Flags().IntVar(&block, "block", 0, "Markdown block to read, counting from 1")
	return cmd
}

// importContent uses the named format, the importer for the file's
// extension, or content detection, in that order.
func importContent(r *importer.ImporterRegistry, path, content, format string, block int) (*diagram.Graph, error) {
	if format != "" {
		return r.ImportWithFormat(content, format)
	}
	if imp, err := r.ForFile(path); err == nil {
		if md, ok := imp.(*importer.MarkdownImporter); ok {
			md.Block = block
		}
		return imp.Import(content)
	}
	return r.Import(content)
}
