package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/courseshelf/courseshelf/internal/storage"
)

// RunStatus prints database contents and run history for a course.
func RunStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath, _ = cmd.Flags().GetString("db")
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	count, err := db.FileCount(ctx)
	if err != nil {
		return err
	}
	runs, err := db.ListRuns(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s\n", cfg.DBPath)
	fmt.Fprintf(out, "Indexed files: %d\n", count)

	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs recorded for %s\n", args[0])
		return nil
	}
	fmt.Fprintf(out, "Runs for %s:\n", args[0])
	for _, r := range runs {
		fmt.Fprintf(out, "  %s  %s/%s  threshold=%.2f  mappings=%d (folder=%d, file=%d)  skipped=%d\n",
			r.CreatedAt.Format(time.RFC3339), r.Provider, r.Model, r.Threshold,
			r.TotalMappings, r.FilesViaFolder, r.FilesIndividual, r.SkippedFolders)
	}
	return nil
}
