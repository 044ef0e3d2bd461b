package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/media"
	"marquee/internal/media/inspect"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the container structure of a media file",
		Long: `Inspect a media file with the strategy a sweep would use for its extension:
the manifest parser for .mpd, mp4info for .mp4/.m4v and ffprobe for
.webm/.mkv/.ogg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("inspect path %q: %w", path, err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", path)
			}

			inspector := inspect.New(cfg)
			if !inspector.Supports(path) {
				return fmt.Errorf("unsupported extension for %s (supported: %s)", path, strings.Join(inspector.Extensions(), ", "))
			}
			descriptor, err := inspector.Inspect(cmd.Context(), path)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, descriptor)
			}
			writeDescriptor(cmd.OutOrStdout(), path, info.Size(), descriptor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the descriptor as JSON")
	return cmd
}

func writeDescriptor(out io.Writer, path string, size int64, d *media.Descriptor) {
	fmt.Fprintf(out, "File:      %s (%s)\n", path, humanize.Bytes(uint64(size)))
	fmt.Fprintf(out, "Container: %s\n", d.ContainerMIME)
	if d.DurationSeconds != nil {
		duration := time.Duration(*d.DurationSeconds * float64(time.Second)).Round(time.Second)
		fmt.Fprintf(out, "Duration:  %s\n", duration)
	}
	if len(d.Tracks) == 0 {
		fmt.Fprintln(out, "No tracks")
		return
	}
	rows := make([][]string, 0, len(d.Tracks))
	for _, track := range d.Tracks {
		bitrate := "-"
		if track.Bitrate > 0 {
			bitrate = humanize.SI(float64(track.Bitrate), "bps")
		}
		lang := track.Language
		if lang == "" {
			lang = "-"
		}
		rows = append(rows, []string{track.ID, track.Type, strings.Join(track.Codecs, ", "), lang, bitrate})
	}
	fmt.Fprintln(out, renderTable([]column{
		{Header: "ID", Align: alignRight},
		{Header: "Type"},
		{Header: "Codecs", MaxWidth: 40},
		{Header: "Language"},
		{Header: "Bitrate", Align: alignRight},
	}, rows))
}
