// Package cli wires the courseshelf commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courseshelf/courseshelf/internal/storage"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "courseshelf",
		Short: "Plan study/practice/support reorganizations of course directories",
		Long: `CourseShelf walks a downloaded course directory top-down and asks an
LLM classifier where each folder belongs: study, practice, support, or
skip. Confident folder answers map whole subtrees at once; uncertain
ones descend to classify files individually.

The output is a plan: a Markdown report, a JSON mapping file, and run
history in a SQLite database. No files are moved.`,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./courseshelf.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")

	planCmd := &cobra.Command{
		Use:   "plan <source-dir>",
		Short: "Plan the reorganization of a course directory",
		Args:  cobra.ExactArgs(1),
		RunE:  RunPlan,
	}
	planCmd.Flags().String("db", "", "Course database path")
	planCmd.Flags().String("provider", "", "Classifier provider: openai|gemini|heuristic (default: auto-detect)")
	planCmd.Flags().String("model", "", "Model name (default: provider default)")
	planCmd.Flags().Float64("threshold", 0.75, "Confidence threshold for folder-level assignment")
	planCmd.Flags().Int("max-depth", 0, "Maximum directory depth to scan (0 = unlimited)")
	planCmd.Flags().String("report", "", "Markdown report output path")
	planCmd.Flags().String("json-out", "", "Plan JSON output path")
	planCmd.Flags().String("debug-log", "", "Classifier call log output path")
	planCmd.Flags().Bool("offline", false, "Use the offline heuristic classifier, no API calls")

	statusCmd := &cobra.Command{
		Use:   "status <source-dir>",
		Short: "Show database contents and past runs for a course",
		Args:  cobra.ExactArgs(1),
		RunE:  RunStatus,
	}
	statusCmd.Flags().String("db", "", "Course database path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE:  RunServe,
	}
	serveCmd.Flags().String("db", "", "Course database path")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "courseshelf %s (%s, %s)\n",
				version, storage.BuildMode, storage.DriverName)
		},
	}

	rootCmd.AddCommand(
		planCmd,
		statusCmd,
		serveCmd,
		versionCmd,
	)

	return rootCmd
}
