package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/deps"
	"marquee/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check inspection tools, the library and the metadata sources",
		Long: `Report whether the media inspection tools are installed, the library folders
are accessible and the IMDb dataset opens. With --online the TMDB key (and the
TVDB key, when set) is verified against the live service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := deps.CheckBinaries(deps.InspectionRequirements(cfg))
			writeToolStatuses(out, statuses, colorize)

			results := preflight.RunAll(cmd.Context(), cfg, logger, preflight.Options{Online: online})
			fmt.Fprintln(out)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			missing := deps.Missing(statuses)
			failed := preflight.Failed(results)
			if len(missing) > 0 || len(failed) > 0 {
				return fmt.Errorf("%d required tools missing, %d checks failed", len(missing), len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also verify API keys against the external services")
	return cmd
}

func writeToolStatuses(out io.Writer, statuses []deps.Status, colorize bool) {
	rows := make([][]string, 0, len(statuses))
	var unavailable []string
	for _, status := range statuses {
		detail := status.Detail
		if status.Available {
			detail = "ready"
		} else {
			unavailable = append(unavailable, status.Name)
		}
		rows = append(rows, []string{
			status.Name,
			status.Command,
			yesNo(status.Available),
			yesNo(status.Optional),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{Header: "Tool"},
		{Header: "Command", MaxWidth: 50},
		{Header: "Available"},
		{Header: "Optional"},
		{Header: "Detail"},
	}, rows))

	switch {
	case len(deps.Missing(statuses)) > 0:
		fmt.Fprintln(out, renderStatusLine("Tools", statusError, "missing "+strings.Join(unavailable, ", "), colorize))
	case len(unavailable) > 0:
		fmt.Fprintln(out, renderStatusLine("Tools", statusWarn, strings.Join(unavailable, ", ")+" unavailable; matching files will be skipped", colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Tools", statusOK, "all tools available", colorize))
	}
}
