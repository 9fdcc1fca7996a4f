package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags harnessFlags
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [file...]",
		Short: "Browse harnesses, cables and resolved links",
		Long: `Inspect builds every harness in the given files and opens an interactive
browser. Harnesses that fail are listed with their error. Without a
terminal, or with --plain, a text summary is printed instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.buildResults(cmd.Context(), args, flags)
			if err != nil {
				return err
			}
			if plain || !stdoutIsTerminal() {
				printSummary(cmd.OutOrStdout(), results)
				return nil
			}
			_, err = tea.NewProgram(NewHarnessListModel(results), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a text summary instead of the interactive view")
	addHarnessFlags(cmd, &flags)

	return cmd
}

// buildResults builds every harness without rendering. Failures are kept
// in their Result.
func (c *CLI) buildResults(ctx context.Context, paths []string, flags harnessFlags) ([]*pipeline.Result, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	docs, err := loadDocuments(ctx, paths)
	if err != nil {
		return nil, err
	}

	spinner := newSpinnerWithContext(ctx, os.Stderr, fmt.Sprintf("Building %d harnesses...", len(docs)))
	spinner.Start()
	defer spinner.Stop()

	results := make([]*pipeline.Result, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := pipeline.Build(doc, cfg, flags.overrides())
		if err != nil {
			res = &pipeline.Result{Name: doc.Name, Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

// printSummary writes one block per harness: counts, then its links.
func printSummary(w io.Writer, results []*pipeline.Result) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if res.Err != nil {
			fmt.Fprintf(w, "%s: %s\n", res.Name, errors.UserMessage(res.Err))
			continue
		}
		s := res.Stats
		fmt.Fprintf(w, "%s: %s, %s, %s, %d BOM entries\n", res.Name,
			pluralize(s.Connectors, "connector"), pluralize(s.Cables, "cable"), pluralize(s.Links, "link"), s.BOMEntries)
		for _, l := range res.Harness.Links() {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
}
