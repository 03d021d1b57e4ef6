package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"polereview/internal/config"
	"polereview/internal/extviewer"
	"polereview/internal/session"
)

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var marked bool

	cmd := &cobra.Command{
		Use:   "open <pole> <photo>",
		Short: "Open a photo in the system image viewer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				photo, err := findPhoto(cmd, store, args[0], args[1])
				if err != nil {
					return err
				}
				path := photo.Original
				if marked {
					if photo.MarkedUp == "" {
						return fmt.Errorf("%s has no marked copy", filepath.Base(photo.Original))
					}
					path = photo.MarkedUp
				}
				if err := extviewer.Open(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&marked, "marked", false, "Open the marked copy instead of the original")
	return cmd
}
