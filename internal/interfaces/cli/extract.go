package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openipdata/grantfeed/internal/extraction"
)

// newExtractCommand builds "grantfeed extract": run one extraction pass over
// a local decompressed archive entry and print the records as JSON lines.
// Useful for verifying extraction behavior without any infrastructure.
func newExtractCommand() *cobra.Command {
	var dialectFlag string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract records from a local archive entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			blob, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			fileName := filepath.Base(path)
			var dialect extraction.Dialect
			if dialectFlag != "" {
				dialect, err = parseDialect(dialectFlag)
			} else {
				dialect, err = extraction.DialectForFileName(fileName)
			}
			if err != nil {
				return err
			}

			records, stats, err := extraction.ExtractWithStats(dialect, blob, fileName)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, rec := range records {
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d sections, %d records, %d discarded\n",
				fileName, stats.Sections, len(records), stats.Discarded)
			return nil
		},
	}

	cmd.Flags().StringVar(&dialectFlag, "dialect", "",
		"force a dialect (ice|pg25|aps) instead of inferring from the file name")
	return cmd
}

func parseDialect(name string) (extraction.Dialect, error) {
	switch name {
	case "ice":
		return extraction.DialectICE, nil
	case "pg25":
		return extraction.DialectPG25, nil
	case "aps":
		return extraction.DialectAPS, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q; expected ice|pg25|aps", name)
	}
}
