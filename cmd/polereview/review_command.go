package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"polereview/internal/config"
	"polereview/internal/session"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var (
		markReviewed   bool
		markUnreviewed bool
		note           string
		checks         []string
	)

	cmd := &cobra.Command{
		Use:   "review <pole>",
		Short: "Record review results for a pole",
		Long: `Record review results for a pole.

Checklist answers use --check key=pass or --check key=fail and may be
repeated. Keys must match the configured checklist items.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if markReviewed && markUnreviewed {
				return fmt.Errorf("--reviewed and --unreviewed are mutually exclusive")
			}
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				id := args[0]
				if _, err := store.GetPole(cmd.Context(), id); err != nil {
					return err
				}

				for _, check := range checks {
					key, value, ok := strings.Cut(check, "=")
					if !ok {
						return fmt.Errorf("invalid --check %q, expected key=pass|fail", check)
					}
					var passed bool
					switch strings.ToLower(value) {
					case "pass", "true", "yes":
						passed = true
					case "fail", "false", "no":
						passed = false
					default:
						return fmt.Errorf("invalid --check value %q, expected pass or fail", value)
					}
					if !knownChecklistItem(cfg, key) {
						return fmt.Errorf("unknown checklist item %q", key)
					}
					if err := store.SetCheck(cmd.Context(), id, key, passed); err != nil {
						return err
					}
				}

				if cmd.Flags().Changed("note") {
					if err := store.SetNotes(cmd.Context(), id, note); err != nil {
						return err
					}
				}
				if markReviewed || markUnreviewed {
					if err := store.SetReviewed(cmd.Context(), id, markReviewed); err != nil {
						return err
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&markReviewed, "reviewed", false, "Mark the pole as reviewed")
	cmd.Flags().BoolVar(&markUnreviewed, "unreviewed", false, "Mark the pole as not reviewed")
	cmd.Flags().StringVar(&note, "note", "", "Replace the pole's notes text")
	cmd.Flags().StringArrayVar(&checks, "check", nil, "Checklist answer as key=pass|fail (repeatable)")
	return cmd
}

func knownChecklistItem(cfg *config.Config, key string) bool {
	for _, item := range cfg.Checklist.Items {
		if item == key {
			return true
		}
	}
	return false
}
