package cli

import (
	"fmt"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/courseshelf/courseshelf/internal/classifier"
	"github.com/courseshelf/courseshelf/internal/config"
	"github.com/courseshelf/courseshelf/internal/engine"
	"github.com/courseshelf/courseshelf/internal/organizer"
	"github.com/courseshelf/courseshelf/internal/report"
	"github.com/courseshelf/courseshelf/internal/slogutil"
	"github.com/courseshelf/courseshelf/internal/storage"
)

// RunPlan plans the reorganization of the course directory given as
// the single positional argument.
func RunPlan(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("provider") {
		cfg.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	if flags.Changed("threshold") {
		cfg.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("report") {
		cfg.ReportPath, _ = flags.GetString("report")
	}
	if flags.Changed("json-out") {
		cfg.PlanPath, _ = flags.GetString("json-out")
	}
	if flags.Changed("debug-log") {
		cfg.DebugLogPath, _ = flags.GetString("debug-log")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slogutil.NewLogger(cmd.ErrOrStderr(), slogutil.LevelFromString(cfg.LogLevel))

	provider := cfg.Provider
	if offline, _ := flags.GetBool("offline"); offline {
		provider = classifier.ProviderHeuristic
	}
	if provider == "" {
		provider = classifier.DetectProvider()
	}
	callLog := classifier.NewCallLog()
	oracle, err := classifier.New(cmd.Context(), classifier.Config{
		Provider:  provider,
		Model:     cfg.Model,
		CacheSize: cfg.CacheSize,
		CallLog:   callLog,
	})
	if err != nil {
		return err
	}
	defer func() { _ = oracle.Close() }()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sourceRoot := args[0]
	logger.Info("planning reorganization",
		"source", sourceRoot, "provider", oracle.Provider(), "model", oracle.Model())

	org := organizer.New(db, oracle, logger, organizer.Options{
		Threshold:   cfg.Threshold,
		MaxDepth:    cfg.MaxDepth,
		ExcludeDirs: cfg.ExcludeDirs,
	})
	result, err := org.Run(cmd.Context(), sourceRoot)
	if err != nil {
		return err
	}

	meta := report.Meta{
		SourceRoot: sourceRoot,
		Provider:   oracle.Provider(),
		Model:      oracle.Model(),
		Threshold:  cfg.Threshold,
	}
	if err := report.WriteMarkdown(cfg.ReportPath, result, callLog.Entries(), meta); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := report.WritePlanJSON(cfg.PlanPath, result); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	if err := callLog.Save(cfg.DebugLogPath); err != nil {
		logger.Warn("failed to save classifier call log", "error", err)
	}

	printSummary(cmd, result)
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport: %s\nPlan: %s\n", cfg.ReportPath, cfg.PlanPath)
	return nil
}

func printSummary(cmd *cobra.Command, result *engine.Result) {
	counts := map[string]int{}
	for _, m := range result.Mappings {
		counts[m.Category]++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Planned %d file mappings (%d via folders, %d individually), %d folders skipped\n",
		len(result.Mappings), result.FilesViaFolder, result.FilesIndividual, len(result.SkippedFolders))

	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %d\n", c, counts[c])
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}
