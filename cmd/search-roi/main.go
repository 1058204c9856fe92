// Package main provides the search-roi binary: benchmark retrieval methods
// for accuracy against simulated cost.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/searchroi/search-roi/internal/backend"
	"github.com/searchroi/search-roi/internal/benchmark"
	"github.com/searchroi/search-roi/internal/bus"
	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/dashboard"
	"github.com/searchroi/search-roi/internal/dataset"
	"github.com/searchroi/search-roi/internal/embed"
	"github.com/searchroi/search-roi/internal/evaluation"
	"github.com/searchroi/search-roi/internal/pkg/logger"
	"github.com/searchroi/search-roi/internal/results"
	"github.com/searchroi/search-roi/internal/scoring"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "search-roi",
		Short: "Search ROI - benchmark retrieval accuracy against cost",
		Long: `Search ROI benchmarks keyword, vector, and hybrid retrieval against the
same corpus and query set, pairing accuracy scores with simulated
infrastructure cost per method.

Run 'search-roi run' to execute a benchmark.
Run 'search-roi dashboard' to serve persisted runs over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		runCmd(),
		datasetCmd(),
		dashboardCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return cfg, logger.New(level, cfg.Log.Format), nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full benchmark",
		Long: `Index the corpus into both backends, benchmark every method
sequentially, persist the run record, and print a comparison summary.`,
		RunE: runBenchmark,
	}

	cmd.Flags().Int("documents", 0, "corpus size (overrides config)")
	cmd.Flags().Int("queries", 0, "query set size (overrides config)")

	return cmd
}

func runBenchmark(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if n, _ := cmd.Flags().GetInt("documents"); n > 0 {
		cfg.Benchmark.NumDocuments = n
	}
	if n, _ := cmd.Flags().GetInt("queries"); n > 0 {
		cfg.Benchmark.NumQueries = n
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder, err := embed.NewClient(cfg.Embedding)
	if err != nil {
		return err
	}

	lexical, err := backend.NewElastic(cfg.Elasticsearch, log)
	if err != nil {
		return err
	}
	vector, err := backend.NewQdrant(cfg.Qdrant, embedder, log)
	if err != nil {
		return err
	}

	faithfulness, relevancy, err := buildMetrics(cfg)
	if err != nil {
		return err
	}
	evaluator := evaluation.New(faithfulness, relevancy, log)

	store, err := results.NewStore(cfg.Results)
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := bus.New(cfg.Bus)
	if err != nil {
		return err
	}
	defer events.Close()

	docs := dataset.GenerateDocuments(cfg.Benchmark.NumDocuments)
	queries := dataset.GenerateQueries(cfg.Benchmark.NumQueries)

	orchestrator := benchmark.New(cfg, lexical, vector, evaluator, store, events, log)

	record, err := orchestrator.Run(ctx, docs, queries)
	if err != nil {
		return err
	}

	printComparison(cmd.OutOrStdout(), dashboard.BuildComparison(record))
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun %s saved.\n", record.ID)
	return nil
}

func buildMetrics(cfg *config.Config) (scoring.Metric, scoring.Metric, error) {
	switch cfg.Scoring.Provider {
	case "llm":
		llmCfg := scoring.LLMConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Scoring.Model,
		}
		faithfulness, err := scoring.NewLLMFaithfulness(llmCfg)
		if err != nil {
			return nil, nil, err
		}
		relevancy, err := scoring.NewLLMRelevancy(llmCfg)
		if err != nil {
			return nil, nil, err
		}
		return faithfulness, relevancy, nil
	default:
		return scoring.NewOverlapFaithfulness(), scoring.NewOverlapRelevancy(), nil
	}
}

func printComparison(w io.Writer, cmp dashboard.Comparison) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tFAITHFULNESS\tRELEVANCY\tACCURACY\tCOST ($)\tACCURACY/$")
	for _, m := range cmp.Methods {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.6f\t%.1f\n",
			m.MethodName, m.AvgFaithfulness, m.AvgRelevancy, m.AvgAccuracy,
			m.TotalCost, m.AccuracyPerDollar)
	}
	tw.Flush()

	for _, name := range cmp.Skipped {
		fmt.Fprintf(w, "skipped: %s\n", name)
	}
	if cmp.BestAccuracy != "" {
		fmt.Fprintf(w, "\nBest accuracy:  %s\n", cmp.BestAccuracy)
	}
	if cmp.BestValue != "" {
		fmt.Fprintf(w, "Best value:     %s\n", cmp.BestValue)
	}
}

func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Print the generated corpus or query set as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			kind, _ := cmd.Flags().GetString("kind")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			switch kind {
			case "queries":
				return enc.Encode(dataset.GenerateQueries(cfg.Benchmark.NumQueries))
			default:
				return enc.Encode(dataset.GenerateDocuments(cfg.Benchmark.NumDocuments))
			}
		},
	}

	cmd.Flags().String("kind", "documents", "what to generate (documents, queries)")
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Serve persisted benchmark runs over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := results.NewStore(cfg.Results)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return dashboard.New(cfg.Dashboard, store, log).Run(ctx)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("search-roi %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
