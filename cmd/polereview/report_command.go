package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"polereview/internal/config"
	"polereview/internal/report"
	"polereview/internal/session"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath  string
		title       string
		flaggedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the session as a self-contained HTML report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				target := outputPath
				if target == "" {
					name := fmt.Sprintf("polereview-%s.html", time.Now().Format("20060102-150405"))
					target = filepath.Join(cfg.Paths.ReportDir, name)
				} else {
					expanded, err := config.ExpandPath(target)
					if err != nil {
						return fmt.Errorf("resolve report path: %w", err)
					}
					target = expanded
				}

				exporter, err := report.NewExporter(cfg, cliLogger(cfg))
				if err != nil {
					return err
				}
				opts := report.Options{Title: title, FlaggedOnly: flaggedOnly}
				if err := exporter.Export(cmd.Context(), store, target, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report file path (defaults into report_dir)")
	cmd.Flags().StringVar(&title, "title", "", "Report title")
	cmd.Flags().BoolVar(&flaggedOnly, "flagged-only", false, "Only include flagged poles")
	return cmd
}
