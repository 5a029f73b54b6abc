package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bidsmeta/internal/catalog"
	"bidsmeta/internal/openminds"
)

const defaultRunListLimit = 20

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded conversion runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsDeleteCommand(ctx))

	return runsCmd
}

// withStore opens the run catalog for the duration of fn.
func (c *commandContext) withStore(fn func(*catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.CatalogPath == "" {
		return errors.New("no catalog configured (set paths.catalog_path)")
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()
	return fn(store)
}

type runView struct {
	ID           string `json:"id"`
	Dataset      string `json:"dataset"`
	Root         string `json:"root"`
	Status       string `json:"status"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
	FilesSeen    int    `json:"files_seen"`
	Scanners     int    `json:"scanners"`
	Usages       int    `json:"usages"`
	Acquisitions int    `json:"acquisitions"`
	Warnings     int    `json:"warnings"`
	Skipped      int    `json:"skipped"`
	Output       string `json:"output,omitempty"`
	Error        string `json:"error,omitempty"`
}

func newRunView(run *catalog.Run) runView {
	view := runView{
		ID:           run.ID,
		Dataset:      run.DatasetName,
		Root:         run.DatasetRoot,
		Status:       string(run.Status),
		StartedAt:    run.StartedAt.Local().Format(time.RFC3339),
		FilesSeen:    run.FilesSeen,
		Scanners:     run.Scanners,
		Usages:       run.Usages,
		Acquisitions: run.Acquisitions,
		Warnings:     run.Warnings,
		Skipped:      run.Skipped,
		Output:       run.OutputPath,
		Error:        run.ErrorMessage,
	}
	if !run.FinishedAt.IsZero() {
		view.FinishedAt = run.FinishedAt.Local().Format(time.RFC3339)
	}
	return view
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent conversion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), views)
				}
				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{
						v.ID, v.Dataset, v.Status, v.StartedAt,
						strconv.Itoa(v.FilesSeen), strconv.Itoa(v.Scanners), strconv.Itoa(v.Usages), strconv.Itoa(v.Skipped),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Dataset", "Status", "Started", "Files", "Scanners", "Usages", "Skipped"},
					rows, 4, 5, 6, 7,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultRunListLimit, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var entityType string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a conversion run and its entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				entities, err := store.RunEntities(cmd.Context(), run.ID, entityType)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), struct {
						Run      runView                `json:"run"`
						Entities []catalog.StoredEntity `json:"entities"`
					}{newRunView(run), entities})
				}
				printRun(cmd, newRunView(run), entities)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&entityType, "type", "t", "", "Only count entities of this type (e.g. MRIScanner)")
	return cmd
}

func printRun(cmd *cobra.Command, view runView, entities []catalog.StoredEntity) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Run "+view.ID, colorize) {
		fmt.Fprintln(out, line)
	}
	status := statusOK
	if view.Status != string(catalog.RunCompleted) {
		status = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Status", status, view.Status, colorize))
	fmt.Fprintln(out, renderStatusLine("Dataset", statusInfo, fmt.Sprintf("%s (%s)", view.Dataset, view.Root), colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, view.StartedAt, colorize))
	if view.FinishedAt != "" {
		fmt.Fprintln(out, renderStatusLine("Finished", statusInfo, view.FinishedAt, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Warnings", countKind(view.Warnings), strconv.Itoa(view.Warnings), colorize))
	fmt.Fprintln(out, renderStatusLine("Skipped", countKind(view.Skipped), strconv.Itoa(view.Skipped), colorize))
	if view.Output != "" {
		fmt.Fprintln(out, renderStatusLine("Output", statusInfo, view.Output, colorize))
	}
	if view.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, view.Error, colorize))
	}

	counts := make(map[string]int)
	for _, e := range entities {
		counts[openminds.ShortType(e.Type)]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{t, strconv.Itoa(counts[t])})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Entity type", "Count"}, rows, 1))
	}
}

func newRunsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a recorded run and its entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				removed, err := store.DeleteRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("run %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
				return nil
			})
		},
	}
}
