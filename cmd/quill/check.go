package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quill/internal/diag"
	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/project"
	"quill/internal/ui"
)

var (
	checkJobs     int
	checkNoCache  bool
	checkProgress string
	checkFormat   string
	checkNotes    bool
	checkBasename bool
)

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 0, "number of files checked in parallel (0 = NumCPU)")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "ignore and do not update the diagnostics cache")
	checkCmd.Flags().StringVar(&checkProgress, "progress", "auto", "show a live progress view (auto|on|off)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().BoolVar(&checkNotes, "notes", false, "include diagnostic notes in the output")
	checkCmd.Flags().BoolVar(&checkBasename, "basename", false, "display file basenames instead of full paths")
}

var checkCmd = &cobra.Command{
	Use:   "check [fixtures...]",
	Short: "Check fixture call expectations",
	Long:  `Check resolves every call in the given fixture files and compares results and diagnostics against the fixtures' expectations. With no arguments, fixtures are discovered through the nearest quill.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		manifest, paths, err := resolveFixtures(args)
		if err != nil {
			return err
		}

		maxDiagnostics, _ := cmd.Flags().GetInt("max-diagnostics")
		if manifest != nil && !cmd.Flags().Changed("max-diagnostics") {
			maxDiagnostics = manifest.MaxDiagnostics
		}
		jobs := checkJobs
		if jobs == 0 && manifest != nil {
			jobs = manifest.Jobs
		}

		var cache *driver.DiskCache
		useCache := !checkNoCache && (manifest == nil || manifest.Cache)
		if useCache {
			if cache, err = driver.OpenDiskCache("quill"); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache unavailable: %v\n", err)
				cache = nil
			}
		}

		mode, err := readUIMode(checkProgress)
		if err != nil {
			return err
		}

		var results []*driver.FileResult
		if shouldUseTUI(mode) && checkFormat == "pretty" && len(paths) > 1 {
			results, err = checkWithUI(cmd.Context(), paths, jobs, maxDiagnostics, cache)
		} else {
			results, err = driver.CheckFiles(cmd.Context(), paths, jobs, maxDiagnostics, cache)
		}
		if err != nil {
			return err
		}

		if err := render(cmd, results); err != nil {
			return err
		}

		failed := 0
		for _, res := range results {
			if res.HasErrors() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d fixture files failed", failed, len(results))
		}
		return nil
	},
}

// resolveFixtures turns command arguments into fixture paths, falling back
// to manifest discovery from the working directory.
func resolveFixtures(args []string) (*project.Manifest, []string, error) {
	if len(args) > 0 {
		return nil, args, nil
	}
	manifestPath, ok, err := project.FindQuillToml(".")
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("no fixture files given and no quill.toml found")
	}
	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %s: %w", diag.ProjBadManifest.ID(), manifestPath, err)
	}
	paths, err := manifest.ListFixtures(filepath.Dir(manifestPath))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", diag.ProjNoFixtures.ID(), err)
	}
	return &manifest, paths, nil
}

// checkWithUI runs the checks behind a Bubble Tea progress view, emitting
// one event per file transition.
func checkWithUI(ctx context.Context, paths []string, jobs, maxDiagnostics int, cache *driver.DiskCache) ([]*driver.FileResult, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	events := make(chan ui.Event, 256)
	results := make([]*driver.FileResult, len(paths))
	outcome := make(chan error, 1)

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, max(len(paths), 1)))
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				events <- ui.Event{File: path, Status: ui.StatusChecking}
				res := driver.CheckOne(path, maxDiagnostics, cache)
				results[i] = res
				events <- ui.Event{File: path, Status: resultStatus(res), Errors: res.ErrorCount()}
				return nil
			})
		}
		outcome <- g.Wait()
		close(events)
	}()

	model := ui.NewProgressModel("checking fixtures", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	err := <-outcome
	if uiErr != nil {
		return results, uiErr
	}
	if err != nil {
		return results, err
	}
	return results, nil
}

func resultStatus(res *driver.FileResult) ui.Status {
	switch {
	case res.HasErrors():
		return ui.StatusFailed
	case res.FromCache:
		return ui.StatusCached
	default:
		return ui.StatusDone
	}
}

func render(cmd *cobra.Command, results []*driver.FileResult) error {
	pathMode := diagfmt.PathModeAuto
	if checkBasename {
		pathMode = diagfmt.PathModeBasename
	}
	switch checkFormat {
	case "json":
		return diagfmt.JSON(cmd.OutOrStdout(), results, diagfmt.JSONOpts{
			PathMode:     pathMode,
			IncludeNotes: checkNotes,
		})
	case "short":
		diagfmt.Short(cmd.OutOrStdout(), results, diagfmt.ShortOpts{
			PathMode:     pathMode,
			IncludeNotes: checkNotes,
		})
		return nil
	case "pretty":
		colorMode, _ := cmd.Flags().GetString("color")
		quiet, _ := cmd.Flags().GetBool("quiet")
		width := 0
		if isTerminal(os.Stdout) {
			if w, _, err := termSize(os.Stdout); err == nil {
				width = w
			}
		}
		diagfmt.Pretty(cmd.OutOrStdout(), results, diagfmt.PrettyOpts{
			Color:     useColor(colorMode),
			PathMode:  pathMode,
			Width:     width,
			ShowNotes: checkNotes,
			Quiet:     quiet,
		})
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, short, or json)", checkFormat)
	}
}
