package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bidsmeta/internal/catalog"
	"bidsmeta/internal/config"
	"bidsmeta/internal/convert"
	"bidsmeta/internal/dataset"
	"bidsmeta/internal/fileutil"
	"bidsmeta/internal/preflight"
	"bidsmeta/internal/runctx"
)

const outputExtension = ".jsonld"

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var noStore bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "convert <dataset>",
		Short: "Convert a BIDS dataset into an openMINDS JSON-LD graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			root, err := resolveDatasetRoot(args[0])
			if err != nil {
				return err
			}
			target, err := resolveOutputPath(cfg, root, outputPath)
			if err != nil {
				return err
			}
			if err := preflight.Failed(preflight.RunAll(cfg, root, filepath.Dir(target))); err != nil {
				return err
			}

			ds, err := dataset.Open(root,
				dataset.WithSkipDirs(cfg.Conversion.SkipDirs...),
				dataset.WithHashing(cfg.Conversion.HashFiles),
				dataset.WithLogger(logger),
			)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			coll := catalog.NewCollection()
			if err := ds.RegisterFiles(coll); err != nil {
				return fmt.Errorf("register files: %w", err)
			}

			opts, err := convert.OptionsFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			opts.Strict = opts.Strict || strict

			runID := uuid.NewString()
			runCtx := runctx.WithRunID(cmd.Context(), runID)
			record := &catalog.Run{
				ID:          runID,
				DatasetName: ds.DisplayName(),
				DatasetRoot: root,
				Status:      catalog.RunRunning,
				StartedAt:   time.Now().UTC(),
			}

			var store *catalog.Store
			if cfg.Conversion.StoreRuns && !noStore {
				store, err = catalog.Open(cfg)
				if err != nil {
					return fmt.Errorf("open catalog: %w", err)
				}
				defer store.Close()
				if err := store.BeginRun(runCtx, record); err != nil {
					return fmt.Errorf("record run: %w", err)
				}
			}

			report, convErr := convert.New(opts).Run(runCtx, ds, coll)
			if convErr == nil {
				convErr = writeGraph(target, coll)
			}
			if convErr == nil {
				record.OutputPath = target
			}

			if store != nil {
				finishRecord(record, report, convErr)
				// Record the outcome even when the run context was cancelled.
				if err := store.FinishRun(context.WithoutCancel(runCtx), record, storedEntities(coll, convErr)); err != nil {
					return fmt.Errorf("record run: %w", err)
				}
			}
			if convErr != nil {
				return convErr
			}

			printReport(cmd.OutOrStdout(), report, target, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination JSON-LD file (default: <output_dir>/<dataset>.jsonld)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record the run in the catalog")
	cmd.Flags().BoolVar(&strict, "strict", false, "Abort on the first file that cannot be converted")
	return cmd
}

func resolveDatasetRoot(arg string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return "", fmt.Errorf("resolve dataset path: %w", err)
	}
	root, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve dataset path: %w", err)
	}
	return root, nil
}

func resolveOutputPath(cfg *config.Config, root, flagValue string) (string, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		return filepath.Abs(expanded)
	}
	return filepath.Join(cfg.Paths.OutputDir, filepath.Base(root)+outputExtension), nil
}

func writeGraph(target string, coll *catalog.Collection) error {
	var buf bytes.Buffer
	if err := catalog.WriteJSONLD(&buf, coll); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := fileutil.WriteFileAtomic(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

func finishRecord(record *catalog.Run, report convert.Report, err error) {
	record.FinishedAt = time.Now().UTC()
	record.FilesSeen = report.FilesSeen
	record.Scanners = report.Scanners
	record.Usages = report.Usages
	record.Acquisitions = report.Acquisitions
	record.Warnings = report.Warnings
	record.Skipped = len(report.Skipped)
	record.Status = catalog.RunCompleted
	if err != nil {
		record.Status = catalog.RunFailed
		record.ErrorMessage = err.Error()
	}
}

// storedEntities archives the graph only for completed runs.
func storedEntities(coll *catalog.Collection, err error) *catalog.Collection {
	if err != nil {
		return nil
	}
	return coll
}

func printReport(out io.Writer, report convert.Report, target string, colorize bool) {
	for _, line := range renderSectionHeader("Conversion "+report.RunID, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Dataset", statusInfo, report.Dataset, colorize))
	fmt.Fprintln(out, renderStatusLine("Files", statusOK, fmt.Sprintf("%d seen, %d converted", report.FilesSeen, report.Converted()), colorize))
	fmt.Fprintln(out, renderStatusLine("Entities", statusOK,
		fmt.Sprintf("%d scanners, %d usages, %d acquisitions", report.Scanners, report.Usages, report.Acquisitions), colorize))

	fmt.Fprintln(out, renderStatusLine("Warnings", countKind(report.Warnings), fmt.Sprintf("%d", report.Warnings), colorize))
	fmt.Fprintln(out, renderStatusLine("Skipped", countKind(len(report.Skipped)), fmt.Sprintf("%d", len(report.Skipped)), colorize))
	if len(report.Skipped) > 0 {
		rows := make([][]string, 0, len(report.Skipped))
		for _, s := range report.Skipped {
			rows = append(rows, []string{s.Path, s.Stage, s.Reason})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Stage", "Reason"}, rows))
	}
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, target, colorize))
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, report.Duration.Round(time.Millisecond).String(), colorize))
}
