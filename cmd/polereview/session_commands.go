package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"polereview/internal/config"
	"polereview/internal/lookup"
	"polereview/internal/session"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Save and load portable session files",
	}

	sessionCmd.AddCommand(newSessionSaveCommand(ctx))
	sessionCmd.AddCommand(newSessionLoadCommand(ctx))

	return sessionCmd
}

func newSessionSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save [path]",
		Short: "Write the session to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				target := filepath.Join(cfg.Paths.WorkDir, "session.json")
				if len(args) == 1 {
					expanded, err := config.ExpandPath(args[0])
					if err != nil {
						return fmt.Errorf("resolve session path: %w", err)
					}
					target = expanded
				}

				file, err := session.Export(cmd.Context(), store)
				if err != nil {
					return err
				}
				if err := file.Write(target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved session (%d poles) to %s\n", len(file.Poles), target)
				return nil
			})
		},
	}
}

func newSessionLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <path>",
		Short: "Overlay a saved session onto the current working tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve session path: %w", err)
			}
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				file, err := session.LoadFile(path)
				if err != nil {
					return err
				}
				if err := session.Apply(cmd.Context(), store, file, cfg.Paths.WorkDir, cliLogger(cfg)); err != nil {
					return err
				}

				// Lookup records are not part of the portable document; they
				// are rebuilt from the saved source paths when those sheets
				// are still readable.
				if file.LookupSources.Main != "" {
					poles, err := store.ListPoles(cmd.Context())
					if err != nil {
						return err
					}
					ids := make([]string, 0, len(poles))
					for _, pole := range poles {
						ids = append(ids, pole.ID)
					}
					sources := lookup.Sources{
						Main: file.LookupSources.Main,
						PN:   file.LookupSources.PN,
						DR:   file.LookupSources.DR,
					}
					if err := mergeLookup(cmd, store, sources, ids); err != nil {
						return err
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Loaded session from %s\n", path)
				return nil
			})
		},
	}
}
