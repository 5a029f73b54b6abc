package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bidsmeta/internal/fileutil"
	"bidsmeta/internal/media/nifti"
)

type sniffResult struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Format      string `json:"format"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

func newSniffCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "sniff <file>...",
		Short:       "Detect the NIfTI version of image files from their headers",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]sniffResult, 0, len(args))
			for _, path := range args {
				results = append(results, sniff(path))
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				detail := r.ContentType
				if r.Error != "" {
					detail = r.Error
				}
				rows = append(rows, []string{r.Path, strconv.FormatInt(r.Size, 10), r.Format, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Bytes", "Format", "Content type"}, rows, 1))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// sniff never fails; unreadable files report as undetermined.
func sniff(path string) sniffResult {
	result := sniffResult{Path: path, Format: nifti.Undetermined.String()}
	size, err := fileutil.Size(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Size = size
	format := nifti.Detect(path, nifti.ExtensionOf(path), size)
	result.Format = format.String()
	result.ContentType = format.ContentType()
	return result
}
