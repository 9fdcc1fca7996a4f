package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/pipeline"
)

// BOM output styles.
const (
	bomTable = "table"
	bomTSV   = "tsv"
	bomCSV   = "csv"
	bomJSON  = "json"
)

type bomOpts struct {
	format string
	shared bool
	harnessFlags
}

// bomCommand creates the bom command.
func (c *CLI) bomCommand() *cobra.Command {
	opts := bomOpts{format: bomTable}

	cmd := &cobra.Command{
		Use:   "bom [file...]",
		Short: "Print the bill of materials of each harness",
		Long: `Bom builds every harness in the given files and prints its bill of
materials. With --shared the BOMs are merged into one table whose
designators are prefixed with the harness name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case bomTable, bomTSV, bomCSV, bomJSON:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be table, tsv, csv or json)", opts.format)
			}
			return c.runBOM(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, tsv, csv, json")
	cmd.Flags().BoolVar(&opts.shared, "shared", false, "merge all harnesses into one BOM")
	addHarnessFlags(cmd, &opts.harnessFlags)

	return cmd
}

func (c *CLI) runBOM(ctx context.Context, w io.Writer, paths []string, opts bomOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	docs, err := loadDocuments(ctx, paths)
	if err != nil {
		return err
	}

	var named []bom.Named
	for _, doc := range docs {
		res, err := pipeline.Build(doc, cfg, opts.overrides())
		if err != nil {
			return err
		}
		named = append(named, bom.Named{Name: res.Name, Entries: res.BOM})
	}

	if opts.shared {
		shared := bom.Merge(named...)
		if opts.format == bomJSON {
			return writeJSON(w, shared)
		}
		return writeBOM(w, opts.format, "Shared BOM", bom.Entries(shared))
	}

	if opts.format == bomJSON {
		out := make(map[string][]bom.Entry, len(named))
		for _, n := range named {
			out[n.Name] = n.Entries
		}
		return writeJSON(w, out)
	}
	for i, n := range named {
		if i > 0 && opts.format == bomTable {
			fmt.Fprintln(w)
		}
		if err := writeBOM(w, opts.format, n.Name, n.Entries); err != nil {
			return err
		}
	}
	return nil
}

func writeBOM(w io.Writer, format, title string, entries []bom.Entry) error {
	switch format {
	case bomTSV:
		return bom.WriteTSV(w, entries)
	case bomCSV:
		return bom.WriteCSV(w, entries)
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	fmt.Fprintln(w, renderBOMTable(entries))
	return nil
}

// renderBOMTable lays out entries as a bordered table.
func renderBOMTable(entries []bom.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, bom.Row(e))
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	qtyCol := 2

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(bom.Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == qtyCol:
				return lipgloss.NewStyle().Foreground(colorWhite).Align(lipgloss.Right)
			}
			return lipgloss.NewStyle()
		}).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0 && !strings.EqualFold(os.Getenv("TERM"), "dumb")
}
