package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/service/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Type   string
	Format string
	Lang   string
	Out    string
}

// ExportResult describes a written report file.
type ExportResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a full or low-stock report as CSV or XLSX",
		Long: `Write a full or low-stock inventory report to a directory.

Examples:
  inventoryctl export
  inventoryctl export --type low-stock --file-format xlsx --lang ru --out ./reports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", string(export.ReportFull), "report type (full|low-stock)")
	cmd.Flags().StringVar(&opts.Format, "file-format", string(export.FormatCSV), "file format (csv|xlsx)")
	cmd.Flags().StringVar(&opts.Lang, "lang", "", "report language (en|ru), defaults to DEFAULT_LOCALE")
	cmd.Flags().StringVar(&opts.Out, "out", ".", "output directory")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	reportType, err := export.ParseReportType(opts.Type)
	if err != nil {
		return WrapExitError("invalid --type", err)
	}
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return WrapExitError("invalid --file-format", err)
	}

	return opts.withEnv(cmd.Context(), func(env *Env) error {
		locale := env.DefaultLocale
		if opts.Lang != "" {
			locale = i18n.Parse(opts.Lang)
		}

		file, err := env.Inventory.Export(cmd.Context(), env.Session, reportType, format, locale)
		if err != nil {
			return WrapExitError("export failed", err)
		}

		if err := os.MkdirAll(opts.Out, 0o755); err != nil {
			return WrapExitError("failed to create output directory", err)
		}
		path := filepath.Join(opts.Out, file.Name)
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return WrapExitError("failed to write report", err)
		}

		result := ExportResult{Path: path, Bytes: len(file.Data)}
		return emit(cmd.OutOrStdout(), opts.RootOptions.Format, result, func(w io.Writer) {
			fmt.Fprintln(w, result.Path)
		})
	})
}
