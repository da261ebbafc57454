package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"branch/storage"
	"branch/validation"
)

var errValidation = errors.New("validation failed")

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check graph files for problems",
		Long: "Check graph files for duplicate or empty ids, members the loader would\n" +
			"drop and connections to unknown nodes.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := requireSettings()
			if err != nil {
				return err
			}

			failed := false
			for _, path := range args {
				report, err := s.validateFile(path)
				if err != nil {
					Bad.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					failed = true
					continue
				}
				printReport(cmd.OutOrStdout(), path, report)
				failed = failed || report.HasErrors()
			}
			if failed {
				return errValidation
			}
			return nil
		},
	}
}

// validateFile checks the raw document, when it is JSON, and then the
// loaded graph.
func (s *settings) validateFile(path string) (validation.Report, error) {
	var report validation.Report
	if filepath.Ext(path) == storage.Extension {
		data, err := os.ReadFile(path)
		if err != nil {
			return report, err
		}
		doc, err := validation.Document(data)
		if err != nil {
			return report, err
		}
		report.Problems = append(report.Problems, doc.Problems...)
	}

	g, err := s.loadGraph(path)
	if err != nil {
		return report, err
	}
	report.Problems = append(report.Problems, validation.Graph(g).Problems...)
	return report, nil
}

func printReport(w io.Writer, path string, r validation.Report) {
	if len(r.Problems) == 0 {
		Good.Fprintf(w, "%s: ok\n", path)
		return
	}
	for _, p := range r.Problems {
		c := Warn
		if p.Severity == validation.Error {
			c = Bad
		}
		c.Fprintf(w, "%s: %s\n", path, p)
	}
	fmt.Fprintln(w, Subtle.Sprintf("%s: %d errors, %d warnings", path,
		r.Count(validation.Error), r.Count(validation.Warning)))
}
