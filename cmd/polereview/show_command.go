package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"polereview/internal/api"
	"polereview/internal/config"
	"polereview/internal/session"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pole>",
		Short: "Show the full review state of one pole",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				svc := api.NewSessionService(store)
				detail, err := svc.Describe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if detail == nil {
					return fmt.Errorf("pole %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Pole %s\n", detail.ID)
				fmt.Fprintf(out, "  Reviewed: %s\n", yesNo(detail.Reviewed))
				fmt.Fprintf(out, "  Flagged:  %s\n", yesNo(detail.Flagged))
				if detail.Notes != "" {
					fmt.Fprintf(out, "  Notes:    %s\n", detail.Notes)
				}

				if len(detail.Checklist) > 0 {
					rows := make([][]string, 0, len(detail.Checklist))
					for _, key := range cfg.Checklist.Items {
						passed, known := detail.Checklist[key]
						if !known {
							continue
						}
						status := "pass"
						if !passed {
							status = "FAIL"
						}
						rows = append(rows, []string{key, status})
					}
					fmt.Fprintln(out, renderTable([]string{"Checklist", "Status"}, rows, nil))
				}

				if len(detail.Lookup) > 0 {
					rows := make([][]string, 0, len(detail.Lookup))
					for _, rec := range detail.Lookup {
						rows = append(rows, []string{rec.Type, rec.ID, rec.Info, rec.Location, rec.Requirement})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Type", "ID", "Info", "Location", "Requirement"}, rows, nil))
				}

				rows := make([][]string, 0, len(detail.Photos))
				for _, photo := range detail.Photos {
					marked := ""
					if photo.MarkedUp != "" {
						marked = filepath.Base(photo.MarkedUp)
					}
					rows = append(rows, []string{
						filepath.Base(photo.Original),
						marked,
						strconv.Itoa(photo.PendingMarkups),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Photo", "Marked", "Pending"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}
}
