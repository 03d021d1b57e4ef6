package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"polereview/internal/config"
	"polereview/internal/lookup"
	"polereview/internal/photostore"
	"polereview/internal/session"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var mainSheet, pnSheet, drSheet string

	cmd := &cobra.Command{
		Use:   "import <photo-root>",
		Short: "Copy a photo tree into the working directory and build the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve photo root: %w", err)
			}
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				logger := cliLogger(cfg)
				out := cmd.OutOrStdout()

				stats, err := photostore.Import(cmd.Context(), root, cfg.Paths.WorkDir, logger)
				if err != nil {
					return fmt.Errorf("import photo tree: %w", err)
				}
				fmt.Fprintf(out, "Copied %d files into %s", stats.Copied, cfg.Paths.WorkDir)
				if stats.Skipped > 0 {
					fmt.Fprintf(out, " (%d skipped)", stats.Skipped)
				}
				fmt.Fprintln(out)

				folders, err := photostore.Scan(cfg.Paths.WorkDir, cfg.Markup.MarkedPrefix)
				if err != nil {
					return fmt.Errorf("scan working directory: %w", err)
				}
				if err := store.InitFromScan(cmd.Context(), folders, cfg.Checklist.Items); err != nil {
					return err
				}
				fmt.Fprintf(out, "Discovered %d pole folders\n", len(folders))

				sources := lookup.Sources{Main: mainSheet, PN: pnSheet, DR: drSheet}
				if err := store.SetMeta(cmd.Context(), session.Meta{OriginalRoot: root, Sources: sources}); err != nil {
					return err
				}
				if mainSheet == "" {
					return nil
				}

				ids := make([]string, 0, len(folders))
				for _, folder := range folders {
					ids = append(ids, folder.ID)
				}
				return mergeLookup(cmd, store, sources, ids)
			})
		},
	}

	cmd.Flags().StringVar(&mainSheet, "main", "", "Main barcode sheet (.xlsx/.csv)")
	cmd.Flags().StringVar(&pnSheet, "pn", "", "PN sheet (.xlsx, positional columns)")
	cmd.Flags().StringVar(&drSheet, "dr", "", "DR sheet (.xlsx, positional columns)")
	return cmd
}

// mergeLookup joins the three spreadsheets and attaches matching records to
// each listed pole. A bad or missing spreadsheet degrades to a warning, the
// session stays usable without lookup data.
func mergeLookup(cmd *cobra.Command, store *session.Store, sources lookup.Sources, poleIDs []string) error {
	merged, err := lookup.Build(sources)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: lookup data unavailable: %v\n", err)
		return nil
	}
	for _, id := range poleIDs {
		records := lookup.RecordsFor(merged, id)
		if len(records) == 0 {
			continue
		}
		if err := store.SetLookup(cmd.Context(), id, records); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Merged lookup data for %d barcodes\n", len(merged))
	return nil
}
