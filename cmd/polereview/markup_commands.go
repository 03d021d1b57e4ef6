package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"polereview/internal/config"
	"polereview/internal/imagecache"
	"polereview/internal/markup"
	"polereview/internal/session"
)

func newMarkupCommand(ctx *commandContext) *cobra.Command {
	markupCmd := &cobra.Command{
		Use:   "markup",
		Short: "Draw and burn photo annotations",
	}

	markupCmd.AddCommand(newMarkupAddCommand(ctx))
	markupCmd.AddCommand(newMarkupSaveCommand(ctx))
	markupCmd.AddCommand(newMarkupDiscardCommand(ctx))

	return markupCmd
}

func newMarkupAddCommand(ctx *commandContext) *cobra.Command {
	var rectFlag, viewportFlag string

	cmd := &cobra.Command{
		Use:   "add <pole> <photo>",
		Short: "Add a pending ellipse annotation at screen coordinates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := parseRect(rectFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				photo, err := findPhoto(cmd, store, args[0], args[1])
				if err != nil {
					return err
				}
				width, height, err := parseViewport(viewportFlag, cfg)
				if err != nil {
					return err
				}

				// Derive the display geometry the annotation was drawn at.
				images := imagecache.NewService(cfg, cliLogger(cfg))
				_, fit, err := images.RenderLarge(cmd.Context(), photo.Original, width, height)
				if err != nil {
					return fmt.Errorf("load photo: %w", err)
				}

				pending := markup.Pending{
					Rect:  markup.FromScreen(screen.X1, screen.Y1, screen.X2, screen.Y2, fit).Normalize(),
					Ratio: fit.Ratio,
				}
				if err := store.AddPending(cmd.Context(), args[0], photo.Original, pending); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added markup to %s (ratio %.3f)\n", filepath.Base(photo.Original), fit.Ratio)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rectFlag, "rect", "", "Screen-space bounding box as x1,y1,x2,y2")
	cmd.Flags().StringVar(&viewportFlag, "viewport", "", "Viewport size as WxH (defaults to configured viewport)")
	_ = cmd.MarkFlagRequired("rect")
	return cmd
}

func newMarkupSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save <pole> <photo>",
		Short: "Burn pending annotations into a marked copy of the original",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				photo, err := findPhoto(cmd, store, args[0], args[1])
				if err != nil {
					return err
				}
				if len(photo.PendingMarkups) == 0 {
					return fmt.Errorf("no pending markups on %s", filepath.Base(photo.Original))
				}

				// Burn onto the untouched original in the source tree when
				// the session knows where it came from; the working copy
				// always receives the mirrored result.
				meta, err := store.Meta(cmd.Context())
				if err != nil {
					return err
				}
				original := photo.Original
				if meta.OriginalRoot != "" {
					original = filepath.Join(meta.OriginalRoot, args[0], filepath.Base(photo.Original))
				}

				result, err := markup.Burn(markup.BurnRequest{
					OriginalPath: original,
					WorkingDir:   filepath.Dir(photo.Original),
					Markups:      photo.PendingMarkups,
					StrokeWidth:  cfg.Markup.StrokeWidth,
				}, cfg.Markup.MarkedPrefix, cliLogger(cfg))
				if err != nil {
					return err
				}

				marked := result.WorkingMarked
				if marked == "" {
					marked = result.SourceMarked
				}
				if err := store.SetMarked(cmd.Context(), args[0], photo.Original, marked); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Burned %d markups into %s\n", len(photo.PendingMarkups), marked)
				return nil
			})
		},
	}
}

func newMarkupDiscardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <pole> <photo>",
		Short: "Discard pending annotations on a photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *session.Store) error {
				photo, err := findPhoto(cmd, store, args[0], args[1])
				if err != nil {
					return err
				}
				if err := store.ClearPending(cmd.Context(), args[0], photo.Original); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Discarded pending markups on %s\n", filepath.Base(photo.Original))
				return nil
			})
		},
	}
}

// findPhoto resolves a photo argument, given as a base name or full path,
// against the pole's photo list.
func findPhoto(cmd *cobra.Command, store *session.Store, poleID, name string) (session.PhotoEntry, error) {
	pole, err := store.GetPole(cmd.Context(), poleID)
	if err != nil {
		return session.PhotoEntry{}, err
	}
	for _, photo := range pole.Photos {
		if photo.Original == name || filepath.Base(photo.Original) == name {
			return photo, nil
		}
	}
	return session.PhotoEntry{}, fmt.Errorf("photo %s not found under pole %s", name, poleID)
}

func parseRect(value string) (markup.Rect, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return markup.Rect{}, fmt.Errorf("invalid --rect %q, expected x1,y1,x2,y2", value)
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		coord, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return markup.Rect{}, fmt.Errorf("invalid --rect coordinate %q", part)
		}
		coords[i] = coord
	}
	return markup.Rect{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}, nil
}

func parseViewport(value string, cfg *config.Config) (int, int, error) {
	if strings.TrimSpace(value) == "" {
		return cfg.Viewer.ViewportWidth, cfg.Viewer.ViewportHeight, nil
	}
	wStr, hStr, ok := strings.Cut(value, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --viewport %q, expected WxH", value)
	}
	width, err := strconv.Atoi(strings.TrimSpace(wStr))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid viewport width %q", wStr)
	}
	height, err := strconv.Atoi(strings.TrimSpace(hStr))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid viewport height %q", hStr)
	}
	return width, height, nil
}
