package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/ingest"
	"marquee/internal/library"
	"marquee/internal/metadata"
	"marquee/internal/ranking"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var show bool
	var details bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "identify <name> <year>",
		Short: "Search the catalog for a title and show the match",
		Long: `Resolve a title name and year to catalog identifiers the same way a sweep
does, without reading or writing any sidecar or store row. Use --details to
also merge metadata and rank artwork for the match.

Examples:
  marquee identify "The Matrix" 1999
  marquee identify "Game of Thrones" 2011 --show --details`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			year, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil || year <= 0 {
				return fmt.Errorf("invalid year %q", args[1])
			}
			kind := library.KindMovie
			if show {
				kind = library.KindShow
			}

			runCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			aggregator, dataset, err := ingest.NewAggregator(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer dataset.Close()

			identity, err := aggregator.Identify(runCtx, name, year, kind)
			if err != nil {
				return fmt.Errorf("identify: %w", err)
			}
			if identity == nil {
				return fmt.Errorf("no %s named %q from %d found", kind, name, year)
			}

			var result *metadata.Result
			var winners []ranking.Candidate
			if details {
				result, err = aggregator.Aggregate(runCtx, *identity)
				if err != nil {
					return fmt.Errorf("aggregate: %w", err)
				}
				ranker := ranking.Ranker{Confidence: cfg.Workflow.ImageConfidence}
				winners = ranker.Select(result.Candidates, result.Title.OriginalLanguage)
			}

			if asJSON {
				payload := map[string]any{"identity": identity}
				if result != nil {
					payload["title"] = result.Title
					payload["artwork"] = winners
				}
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			writeIdentity(out, *identity)
			if result != nil {
				writeTitleDetails(out, result, winners)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Search TV shows instead of movies")
	cmd.Flags().BoolVar(&details, "details", false, "Merge metadata and rank artwork for the match")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the result as JSON")
	return cmd
}

func writeIdentity(out io.Writer, id library.Identity) {
	rows := [][]string{
		{"TMDB", strconv.FormatInt(id.TMDB, 10)},
		{"IMDb", id.IMDb},
	}
	if id.TVDB > 0 {
		rows = append(rows, []string{"TVDB", strconv.FormatInt(id.TVDB, 10)})
	}
	fmt.Fprintln(out, renderTable([]column{{Header: "Service"}, {Header: "ID"}}, rows))
}

func writeTitleDetails(out io.Writer, result *metadata.Result, winners []ranking.Candidate) {
	title := result.Title
	fmt.Fprintf(out, "\n%s (%s)\n", title.PrimaryName(), title.Kind)
	if title.OriginalLanguage != "" {
		fmt.Fprintf(out, "  Original language: %s\n", title.OriginalLanguage)
	}
	if title.YearStart != nil {
		fmt.Fprintf(out, "  Year: %d\n", *title.YearStart)
	}
	if len(title.Genres) > 0 {
		fmt.Fprintf(out, "  Genres: %s\n", strings.Join(title.Genres, ", "))
	}
	fmt.Fprintf(out, "  Names: %d, descriptions: %d, cast: %d, ratings: %d\n",
		len(title.Names), len(title.Descriptions), len(title.Cast), len(title.Ratings))
	if len(result.Episodes) > 0 {
		fmt.Fprintf(out, "  Episodes in dataset: %d\n", len(result.Episodes))
	}

	if len(winners) == 0 {
		fmt.Fprintln(out, "\nNo artwork candidates")
		return
	}
	rows := make([][]string, 0, len(winners))
	for _, w := range winners {
		lang := w.Language
		if lang == "" {
			lang = "-"
		}
		rows = append(rows, []string{
			string(w.Kind),
			lang,
			w.Source,
			fmt.Sprintf("%dx%d", w.Width, w.Height),
			fmt.Sprintf("%.1f/%d", w.VoteAverage, w.VoteCount),
			w.SourceURL,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]column{
		{Header: "Kind"},
		{Header: "Lang"},
		{Header: "Source"},
		{Header: "Size", Align: alignRight},
		{Header: "Votes", Align: alignRight},
		{Header: "URL", MaxWidth: 70},
	}, rows))
}
