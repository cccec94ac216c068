package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmorandini/comedyclub/internal/config"
	"github.com/dmorandini/comedyclub/internal/corpus"
	"github.com/dmorandini/comedyclub/internal/feedback"
	"github.com/dmorandini/comedyclub/internal/llm"
	"github.com/dmorandini/comedyclub/internal/persona"
	"github.com/dmorandini/comedyclub/internal/rating"
	"github.com/dmorandini/comedyclub/internal/report"
	"github.com/dmorandini/comedyclub/internal/research"
	"github.com/dmorandini/comedyclub/internal/retrieval"
	"github.com/dmorandini/comedyclub/internal/server"
	"github.com/dmorandini/comedyclub/internal/stage"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "comedyclub",
	Short:   "AI comedians performing, scored and learning",
	Long:    "Comedyclub runs AI stand-up comedians: retrieval-backed joke generation, deterministic quality scoring, a simulated audience, and human ratings that feed back into the next set.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(performCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("comedyclub", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/comedyclub/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the corpus, feeds, and LLM provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus, history and provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Corpus:")
		c, err := corpus.Load(cfg.CorpusPath())
		if err != nil {
			fmt.Printf("  Unavailable: %v\n", err)
		} else {
			fmt.Printf("  Jokes: %d in %d categories (dimension %d)\n",
				c.Len(), len(c.Categories()), c.Dimension())
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records := store.Records()
		fmt.Println("\nHistory:")
		fmt.Printf("  Performances: %d (%s backend)\n", len(records), cfg.Feedback.Backend)
		ratings := openRatings()
		fmt.Printf("  Human ratings: %d\n", ratings.Len())

		fmt.Println("\nLLM:")
		provider := llm.CreateProvider(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.OllamaURL,
			cfg.LLM.OrfeoModel, cfg.LLM.OrfeoURL, cfg.LLM.TokenEnv)
		if provider == nil {
			fmt.Println("  No provider available")
		} else {
			fmt.Println("  Provider ready")
		}
		return nil
	},
}

// --- perform command ---

var performTopic string

var performCmd = &cobra.Command{
	Use:   "perform [comedian]",
	Short: "Run a single set for one comedian",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := persona.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown comedian %q (lineup: %s)", args[0], lineupNames())
		}

		s, store, err := buildStage()
		if err != nil {
			return err
		}
		defer store.Close()

		perf, err := s.Perform(context.Background(), p, performTopic)
		if err != nil {
			return err
		}

		printPerformance(perf)
		return nil
	},
}

func init() {
	performCmd.Flags().StringVarP(&performTopic, "topic", "t", "work", "Topic for the set")
}

// --- show command ---

var (
	showRounds int
	showTopics []string
	showOut    string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Run a full show: every comedian performs each round",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, store, err := buildStage()
		if err != nil {
			return err
		}
		defer store.Close()

		topics := showTopics
		if len(topics) == 0 {
			topics = cfg.Show.Topics
		}
		if len(topics) == 0 {
			topics = []string{"work"}
		}

		result := s.RunShow(context.Background(), topics, showRounds)
		for i, step := range result.Steps {
			fmt.Printf("Set %d: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		doc := report.ShowReport(result, time.Now())
		if showOut != "" {
			if err := os.WriteFile(showOut, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("writing show report: %w", err)
			}
			fmt.Printf("\nShow report written to %s\n", showOut)
		} else {
			fmt.Println("\n" + doc)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().IntVarP(&showRounds, "rounds", "r", 1, "Number of rounds")
	showCmd.Flags().StringSliceVarP(&showTopics, "topics", "t", nil, "Topics, one per round (defaults to config)")
	showCmd.Flags().StringVarP(&showOut, "out", "o", "", "Write the markdown report to a file")
}

// --- rate command ---

var rateComment string

var rateCmd = &cobra.Command{
	Use:   "rate [comedian] [verdict]",
	Short: "Rate a comedian's latest joke (hate, dislike, meh, like, love)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := persona.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown comedian %q (lineup: %s)", args[0], lineupNames())
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var latest *feedback.Record
		for _, rec := range store.Records() {
			if rec.Comedian == p.Name {
				r := rec
				latest = &r
			}
		}
		if latest == nil {
			return fmt.Errorf("no recorded performances for %s", p.Name)
		}

		ratings := openRatings()
		r, err := ratings.Add(latest.Text, latest.Comedian, latest.Topic, args[1], rateComment)
		if err != nil {
			return err
		}

		fmt.Printf("Rated %s's joke %q: %s (%+.0f)\n", p.Name, truncate(latest.Text, 50), r.Verdict, r.Score)
		if pattern, ok := ratings.Pattern(p.Name); ok {
			fmt.Printf("%s now averages %+.2f over %d ratings\n",
				p.Name, pattern.AverageRating, pattern.TotalRatings)
		}
		return nil
	},
}

func init() {
	rateCmd.Flags().StringVarP(&rateComment, "comment", "m", "", "Optional comment on the joke")
}

// --- stats and top commands ---

var statsCmd = &cobra.Command{
	Use:   "stats [comedian]",
	Short: "Show one comedian's statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := persona.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown comedian %q (lineup: %s)", args[0], lineupNames())
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, ok := feedback.ComedianStats(store.Records(), p.Name)
		if !ok {
			fmt.Printf("No performances recorded for %s yet.\n", p.Name)
			return nil
		}
		fmt.Println(report.ComedianReport(stats))
		return nil
	},
}

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the club leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Println(report.Leaderboard(feedback.TopPerformers(store.Records(), topLimit)))
		return nil
	},
}

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 3, "Number of comedians to show")
}

// --- corpus command ---

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the joke corpus",
}

var corpusInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show corpus size and categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := corpus.Load(cfg.CorpusPath())
		if err != nil {
			return err
		}

		fmt.Printf("Corpus: %s\n", cfg.CorpusPath())
		fmt.Printf("Jokes: %d, embedding dimension: %d\n\n", c.Len(), c.Dimension())
		for _, cat := range c.Categories() {
			fmt.Printf("  %s: %d\n", cat, len(c.Records(cat)))
		}
		return nil
	},
}

var clusterThreshold float64

var corpusClustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Group corpus jokes by embedding similarity",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := corpus.Load(cfg.CorpusPath())
		if err != nil {
			return err
		}

		clusters := c.Clusters(clusterThreshold)
		fmt.Printf("%d clusters over %d jokes:\n\n", len(clusters), c.Len())
		for i, cl := range clusters {
			fmt.Printf("Cluster %d: %s (%d jokes)\n", i+1, cl.Label, len(cl.Records))
			for _, rec := range cl.Records {
				fmt.Printf("  - %s\n", truncate(rec.Text, 70))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	corpusClustersCmd.Flags().Float64Var(&clusterThreshold, "threshold", corpus.DefaultClusterThreshold,
		"Centroid distance above which clusters stay separate")
	corpusCmd.AddCommand(corpusInfoCmd)
	corpusCmd.AddCommand(corpusClustersCmd)
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(store, openRatings(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (defaults to config)")
}

// --- wiring helpers ---

func openStore() (feedback.Store, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if cfg.Feedback.Backend == "sqlite" {
		return feedback.OpenSQLite(filepath.Join(dataDir, "comedyclub.db"))
	}
	return feedback.OpenJSON(filepath.Join(dataDir, "comedy_feedback.json")), nil
}

func openRatings() *rating.Book {
	return rating.Open(filepath.Join(cfg.GetDataDir(), "human_ratings.json"))
}

func buildStage() (*stage.Stage, feedback.Store, error) {
	provider := llm.CreateProvider(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.OllamaURL,
		cfg.LLM.OrfeoModel, cfg.LLM.OrfeoURL, cfg.LLM.TokenEnv)
	if provider == nil {
		return nil, nil, fmt.Errorf("no LLM provider available")
	}

	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	var retriever *retrieval.Retriever
	c, err := corpus.Load(cfg.CorpusPath())
	if err != nil {
		log.Printf("Warning: corpus unavailable, performing without examples: %v", err)
	} else {
		var scanner *research.Scanner
		if cfg.Retrieval.UseWeb && len(cfg.Research.Feeds) > 0 {
			var feeds []research.Feed
			for _, f := range cfg.Research.Feeds {
				feeds = append(feeds, research.Feed{URL: f.URL, Name: f.Name})
			}
			scanner = research.NewScanner(feeds, false)
		}

		embedder := llm.NewOllamaEmbedder(cfg.LLM.EmbeddingModel, cfg.LLM.OllamaURL)
		if scanner != nil {
			retriever = retrieval.New(c, embedder, scanner, cfg.Retrieval.TopK)
		} else {
			retriever = retrieval.New(c, embedder, nil, cfg.Retrieval.TopK)
		}
	}

	return stage.New(provider, retriever, store, openRatings(), cfg.LLM.MaxTokens), store, nil
}

func printPerformance(perf *stage.Performance) {
	fmt.Printf("%s takes the stage (topic: %s)\n\n", perf.Persona.Name, perf.Topic)
	fmt.Printf("  %q\n\n", perf.Joke)
	fmt.Printf("Quality: %.2f (%s)\n", perf.Analysis.OverallScore, perf.Analysis.HumorType)
	fmt.Printf("  setup %.2f, punchline %.2f, timing %.2f, relatability %.2f, originality %.2f\n",
		perf.Analysis.SetupStrength, perf.Analysis.PunchlineImpact, perf.Analysis.TimingScore,
		perf.Analysis.Relatability, perf.Analysis.Originality)
	fmt.Printf("Audience: %.2f\n", perf.Record.AudienceScore)
	for _, note := range perf.Record.Notes {
		fmt.Printf("  - %s\n", note)
	}
	if len(perf.Tips) > 0 {
		fmt.Println("\nNotes for next time:")
		for _, tip := range perf.Tips {
			fmt.Printf("  - %s\n", tip)
		}
	}
}

func lineupNames() string {
	var names []string
	for _, p := range persona.All() {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
