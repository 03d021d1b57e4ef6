package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"polereview/internal/api"
	"polereview/internal/config"
	"polereview/internal/session"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var flaggedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List poles and their review state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				svc := api.NewSessionService(store)
				summaries, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(summaries))
				reviewed := 0
				for _, summary := range summaries {
					if flaggedOnly && !summary.Flagged {
						continue
					}
					if summary.Reviewed {
						reviewed++
					}
					rows = append(rows, []string{
						summary.ID,
						yesNo(summary.Reviewed),
						yesNo(summary.Flagged),
						strconv.Itoa(summary.PhotoCount),
						yesNo(summary.HasNotes),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Pole", "Reviewed", "Flagged", "Photos", "Notes"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "%d poles, %d reviewed\n", len(rows), reviewed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&flaggedOnly, "flagged-only", false, "Only show flagged poles")
	return cmd
}
