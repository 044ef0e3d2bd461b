package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/ingest"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/preflight"
)

// LockFile is created in the library root while a sweep runs.
const LockFile = ".marquee.lock"

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Catalog every movie and show in the library",
		Long: `Walk the Movies and Shows folders of the configured library, identify each
title, merge its metadata, download artwork and store the result.

Titles fail independently; the report lists every folder with its outcome.
Only one sweep may run against a library at a time.`,
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

			lock, err := acquireSweepLock(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release sweep lock", logging.Error(err))
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := ingest.Build(runCtx, cfg, logger)
			if err != nil {
				return fmt.Errorf("build runtime: %w", err)
			}
			defer rt.Close()

			report, runErr := rt.Orchestrator.Run(runCtx)
			if report == nil {
				return runErr
			}

			if asJSON {
				if err := writeJSON(cmd, newSweepView(report)); err != nil {
					return err
				}
			} else {
				writeSweepReport(cmd.OutOrStdout(), report, shouldColorize(cmd.OutOrStdout()))
			}
			if runErr != nil {
				return runErr
			}
			if failed := len(report.Failed()); strict && failed > 0 {
				return fmt.Errorf("%d of %d titles failed", failed, len(report.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the sweep report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any title fails")
	return cmd
}

// acquireSweepLock takes the advisory lock in the library root.
func acquireSweepLock(cfg *config.Config) (*flock.Flock, error) {
	if check := preflight.CheckDirectoryAccess("library directory", cfg.Paths.LibraryDir); !check.Passed {
		return nil, errors.New(check.Name + " " + check.Detail)
	}
	path := filepath.Join(cfg.Paths.LibraryDir, LockFile)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another sweep is already running (lock held at " + path + ")")
	}
	return lock, nil
}

func writeSweepReport(out io.Writer, report *ingest.Report, colorize bool) {
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rows = append(rows, []string{
			string(o.Kind),
			o.Path,
			string(o.Status),
			outcomeDetail(o),
			o.Duration.Round(time.Millisecond).String(),
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{Header: "Kind"},
		{Header: "Folder", MaxWidth: 60},
		{Header: "Status"},
		{Header: "Detail", MaxWidth: 60},
		{Header: "Took", Align: alignRight},
	}, rows))

	counts := report.Counts()
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderStatusLine("Processed", statusOK, fmt.Sprintf("%d", counts[ingest.StatusOK]), colorize))
	skipKind := statusInfo
	if counts[ingest.StatusSkipped] > 0 {
		skipKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Skipped", skipKind, fmt.Sprintf("%d", counts[ingest.StatusSkipped]), colorize))
	failKind := statusInfo
	if counts[ingest.StatusFailed] > 0 {
		failKind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Failed", failKind, fmt.Sprintf("%d", counts[ingest.StatusFailed]), colorize))
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, fmt.Sprintf("%s in %s", report.RunID, report.Finished.Sub(report.Started).Round(time.Millisecond)), colorize))
}

func outcomeDetail(o ingest.Outcome) string {
	switch o.Status {
	case ingest.StatusOK:
		detail := fmt.Sprintf("%d media, %d images", o.Media, o.Images)
		if o.Kind == library.KindShow {
			detail += fmt.Sprintf(", %d episodes", o.Episodes)
			if o.EpisodeFailures > 0 {
				detail += fmt.Sprintf(" (%d failed)", o.EpisodeFailures)
			}
		}
		if o.Identified {
			detail += ", newly identified"
		}
		return detail
	case ingest.StatusSkipped:
		return "no catalog match"
	default:
		if o.Err == nil {
			return o.Category()
		}
		return o.Category() + ": " + truncate(o.Err.Error(), 160)
	}
}

type sweepView struct {
	RunID    string         `json:"run_id"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	Counts   map[string]int `json:"counts"`
	Outcomes []outcomeView  `json:"outcomes"`
}

type outcomeView struct {
	Kind            string `json:"kind"`
	Path            string `json:"path"`
	Status          string `json:"status"`
	LocalKey        string `json:"uuid,omitempty"`
	TMDB            int64  `json:"tmdb,omitempty"`
	IMDb            string `json:"imdb,omitempty"`
	Identified      bool   `json:"identified"`
	Media           int    `json:"media"`
	Images          int    `json:"images"`
	Episodes        int    `json:"episodes,omitempty"`
	EpisodeFailures int    `json:"episode_failures,omitempty"`
	Category        string `json:"category,omitempty"`
	Error           string `json:"error,omitempty"`
	DurationMillis  int64  `json:"duration_ms"`
}

func newSweepView(report *ingest.Report) sweepView {
	view := sweepView{
		RunID:    report.RunID,
		Started:  report.Started,
		Finished: report.Finished,
		Counts:   map[string]int{},
		Outcomes: make([]outcomeView, 0, len(report.Outcomes)),
	}
	for status, n := range report.Counts() {
		view.Counts[string(status)] = n
	}
	for _, o := range report.Outcomes {
		ov := outcomeView{
			Kind:            string(o.Kind),
			Path:            o.Path,
			Status:          string(o.Status),
			LocalKey:        o.Identity.LocalKey,
			TMDB:            o.Identity.TMDB,
			IMDb:            o.Identity.IMDb,
			Identified:      o.Identified,
			Media:           o.Media,
			Images:          o.Images,
			Episodes:        o.Episodes,
			EpisodeFailures: o.EpisodeFailures,
			DurationMillis:  o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			ov.Category = o.Category()
			ov.Error = o.Err.Error()
		}
		view.Outcomes = append(view.Outcomes, ov)
	}
	return view
}
