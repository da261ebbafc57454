package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"branch/diagram"
	"branch/export"
	"branch/markdown"
	"branch/storage"
)

func exportCmd() *cobra.Command {
	var (
		format string
		output string
		ascii  bool
		block  int
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a graph in another format",
		Long: "Write a graph in another format. Without --format the format follows the\n" +
			"extension of --output, or text when writing to stdout. A Markdown --output\n" +
			"gets the Mermaid or DOT source in a fenced block: the block chosen with\n" +
			"--block is replaced, or a new one is appended.\n\nFormats: " + formatList(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSettings()
			if err != nil {
				return err
			}

			toMarkdown := isMarkdown(output)
			if toMarkdown && format == "" {
				format = string(export.FormatMermaid)
			}
			f, err := pickFormat(format, output)
			if err != nil {
				return err
			}
			if toMarkdown && fenceLang(f) == "" {
				return fmt.Errorf("markdown output takes mermaid or dot, not %s", f)
			}
			if f == export.FormatPNG && output == "" {
				return fmt.Errorf("png output needs --output")
			}

			g, err := s.loadGraph(args[0])
			if err != nil {
				return err
			}
			exp, err := export.NewExporter(f, export.Options{
				FontSize: s.cfg.Export.FontSize,
				ASCII:    ascii || s.cfg.View.ASCII,
				Color:    output == "" && !color.NoColor,
			})
			if err != nil {
				return err
			}

			if toMarkdown {
				data, err := exp.Export(g)
				if err != nil {
					return err
				}
				if err := writeMarkdown(output, fenceLang(f), data, block); err != nil {
					return err
				}
				Good.Fprintf(cmd.ErrOrStderr(), "Wrote %s block to %s\n", exp.GetFormatName(), output)
				return nil
			}

			if output != "" {
				if err := storage.New(s.importOptions()).Export(output, g, exp); err != nil {
					return err
				}
				Good.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", exp.GetFormatName(), output)
				return nil
			}

			data, err := exp.Export(g)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "Plain ASCII for text output")
	cmd.Flags().IntVar(&block, "block", 0, "Markdown block to replace, counting from 1 (default: first, or append)")
	return cmd
}

// pickFormat resolves the explicit format, then the output extension.
func pickFormat(format, output string) (export.Format, error) {
	if format != "" {
		return export.ParseFormat(format)
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		return export.ParseFormat(ext)
	}
	return export.FormatText, nil
}

func formatList() string {
	names := make([]string, 0, len(export.GetAvailableFormats()))
	for _, f := range export.GetAvailableFormats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// fenceLang returns the fence language for formats that can live in a
// Markdown block.
func fenceLang(f export.Format) string {
	switch f {
	case export.FormatMermaid:
		return "mermaid"
	case export.FormatGraphviz:
		return "dot"
	}
	return ""
}

// writeMarkdown puts source into the n-th diagram block of the document at
// path, creating the document or appending a block when there is none.
func writeMarkdown(path, lang string, source []byte, n int) error {
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return diagram.NewFileError(diagram.ErrIOFailure, "export", path, err)
	}

	doc := markdown.NewScanner(string(content))
	b, err := doc.Find(n)
	switch {
	case err == nil:
		if (b.Lang == "mermaid") != (lang == "mermaid") {
			return fmt.Errorf("block at line %d holds %s, not %s", b.Start+1, b.Lang, lang)
		}
		if err := doc.Replace(b, string(source)); err != nil {
			return err
		}
	case errors.Is(err, markdown.ErrNoBlock) && n == 0:
		doc.Append(lang, string(source))
	default:
		return err
	}

	if err := storage.WriteFile(path, []byte(doc.Content())); err != nil {
		return diagram.NewFileError(diagram.ErrIOFailure, "export", path, err)
	}
	return nil
}
