package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
	"github.com/ReinaldoAssis/multi-language-books/internal/config"
	"github.com/ReinaldoAssis/multi-language-books/internal/difficulty"
	"github.com/ReinaldoAssis/multi-language-books/internal/language"
	"github.com/ReinaldoAssis/multi-language-books/internal/translation"
	"github.com/ReinaldoAssis/multi-language-books/internal/wordfreq"
)

var (
	version = "1.0.0"
	logger  *logrus.Logger
)

func init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "multi-language-books",
	Short: "Graded bilingual book builder for language learners",
	Long: `Multi-Language Books scores each sentence of an extracted book against the
CEFR proficiency scale and translates a selected subset via an LLM backend,
producing a document where translated and original sentences interleave.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <sentences.json>",
	Short: "Score sentence difficulty and mark the translate subset",
	Args:  cobra.ExactArgs(1),
	Run:   runAnalyze,
}

var translateCmd = &cobra.Command{
	Use:   "translate <sentences.json>",
	Short: "Analyze, then translate the marked sentences",
	Args:  cobra.ExactArgs(1),
	Run:   runTranslate,
}

var textCmd = &cobra.Command{
	Use:   "text <sentence>",
	Short: "Translate a single sentence (backend smoke test)",
	Args:  cobra.ExactArgs(1),
	Run:   runText,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Multi-Language Books v%s\n", version)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		showConfig(cmd)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		initConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path (default: config.json beside executable)")
	rootCmd.PersistentFlags().StringP("level", "l", "", "Reader's CEFR level (A1..C2+)")
	rootCmd.PersistentFlags().StringP("mode", "m", "", "Translation mode: below or above")
	rootCmd.PersistentFlags().StringP("source", "s", "", "Source language code (detected when empty)")
	rootCmd.PersistentFlags().StringP("target", "t", "", "Target language code")
	rootCmd.PersistentFlags().StringP("backend", "b", "", "Translation backend: gemini or local")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output document path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	setupLogging(cmd)

	doc, analyzer, _ := mustPrepare(cmd, cfg, args[0])

	userLevel := book.ParseLevel(cfg.Translation.UserLevel)
	mode, err := difficulty.ParseMode(cfg.Translation.Mode)
	if err != nil {
		logger.Fatalf("Invalid mode: %v", err)
	}

	stats := analyzer.AnalyzeAll(doc, userLevel, mode, analysisProgress)
	printAnalysis(stats, userLevel)

	outPath := outputPath(cmd, cfg, args[0], "analyzed")
	if err := doc.Save(outPath); err != nil {
		logger.Fatalf("Failed to save document: %v", err)
	}
	logger.Infof("💾 Annotated document written to %s", outPath)
}

func runTranslate(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	setupLogging(cmd)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	doc, analyzer, sourceLang := mustPrepare(cmd, cfg, args[0])

	userLevel := book.ParseLevel(cfg.Translation.UserLevel)
	mode, err := difficulty.ParseMode(cfg.Translation.Mode)
	if err != nil {
		logger.Fatalf("Invalid mode: %v", err)
	}

	stats := analyzer.AnalyzeAll(doc, userLevel, mode, analysisProgress)
	printAnalysis(stats, userLevel)

	ctx := context.Background()

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize backend: %v", err)
	}

	prompts := translation.NewPromptBuilder(sourceLang, cfg.Translation.TargetLang)
	planner := translation.NewPlanner(
		cfg.Translation.CharBudget,
		cfg.Translation.MaxSentencesPerBatch,
		cfg.Translation.ContextWindow,
		prompts,
		logger,
	)
	engine := translation.NewEngine(backend, planner, translation.EngineConfig{
		MaxRetries:        cfg.Translation.MaxRetries,
		RetryDelay:        cfg.Translation.RetryDelay.Duration,
		RequestTimeout:    cfg.Translation.RequestTimeout.Duration,
		RequestsPerMinute: cfg.Translation.RequestsPerMinute,
	}, logger)

	tstats := engine.TranslateDocument(ctx, doc, func(progress float64, message string) {
		logger.Infof("🌐 [%3.0f%%] %s", progress*100, message)
	})

	outPath := outputPath(cmd, cfg, args[0], "translated")
	if err := doc.Save(outPath); err != nil {
		logger.Fatalf("Failed to save document: %v", err)
	}

	logger.Infof("✅ %d/%d sentences translated in %d batches (%d fell back to original)",
		tstats.TranslatedSentences, tstats.TotalSentences, tstats.TotalBatches, tstats.FailedSentences)
	for _, msg := range tstats.Errors {
		logger.Warnf("  • %s", msg)
	}
	logger.Infof("💾 Translated document written to %s", outPath)
}

func runText(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	setupLogging(cmd)
	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	text := args[0]

	sourceLang := cfg.Translation.SourceLang
	if sourceLang == "" {
		detector := language.NewDetector(logger)
		if detected, ok := detector.Detect(text); ok {
			sourceLang = detected
		} else {
			sourceLang = "en"
		}
	}

	ctx := context.Background()

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize backend: %v", err)
	}

	prompts := translation.NewPromptBuilder(sourceLang, cfg.Translation.TargetLang)
	planner := translation.NewPlanner(
		cfg.Translation.CharBudget,
		cfg.Translation.MaxSentencesPerBatch,
		cfg.Translation.ContextWindow,
		prompts,
		logger,
	)
	engine := translation.NewEngine(backend, planner, translation.EngineConfig{
		MaxRetries:        cfg.Translation.MaxRetries,
		RetryDelay:        cfg.Translation.RetryDelay.Duration,
		RequestTimeout:    cfg.Translation.RequestTimeout.Duration,
		RequestsPerMinute: cfg.Translation.RequestsPerMinute,
	}, logger)

	fmt.Println(engine.TranslateText(ctx, text, prompts))
}

// mustPrepare loads the document, resolves the source language, and builds
// the analyzer over the configured frequency store.
func mustPrepare(cmd *cobra.Command, cfg *config.Config, path string) (*book.Document, *difficulty.Analyzer, string) {
	applyFlagOverrides(cmd, cfg)

	doc, err := book.Load(path)
	if err != nil {
		logger.Fatalf("Failed to load document: %v", err)
	}
	for _, s := range doc.Sentences {
		s.Text = book.CleanText(s.Text)
	}

	hours, minutes := book.ReadingTime(doc.WordCount(), 200)
	logger.Infof("📖 Loaded %q: %d sentences (~%dh%02dm reading time)",
		doc.Title, len(doc.Sentences), hours, minutes)

	sourceLang := cfg.Translation.SourceLang
	if sourceLang == "" {
		sourceLang = doc.Language
	}
	if sourceLang == "" {
		detector := language.NewDetector(logger)
		sourceLang = detector.DetectDocument(doc)
		logger.Infof("🌍 Detected source language: %s", sourceLang)
	}
	doc.Language = sourceLang

	store := wordfreq.NewStore(cfg.Analysis.FrequencyDataDir, logger)
	analyzer := difficulty.NewAnalyzer(sourceLang, store, nil, logger)

	return doc, analyzer, sourceLang
}

func buildBackend(ctx context.Context, cfg *config.Config) (translation.Backend, error) {
	switch cfg.Translation.Backend {
	case "local":
		return translation.NewLocalBackend(cfg.Local.BaseURL, cfg.Local.Model, logger), nil
	default:
		return translation.NewGeminiBackend(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	}
}

func analysisProgress(done, total int) {
	if total > 0 && done > 0 {
		logger.Debugf("Analyzing sentences: %d/%d", done, total)
	}
}

func printAnalysis(stats book.AnalysisStats, userLevel book.CEFRLevel) {
	logger.Infof("📊 Difficulty distribution (reader level %s):", userLevel)
	for _, level := range book.Levels {
		count := stats.Distribution[level]
		pct := 0.0
		if stats.TotalSentences > 0 {
			pct = float64(count) / float64(stats.TotalSentences) * 100
		}
		bar := strings.Repeat("█", int(pct/2))
		logger.Infof("  %-3s %5d (%5.1f%%) %s", level, count, pct, bar)
	}
	logger.Infof("  Average difficulty (Zipf): %.2f", stats.AvgDifficulty)
	logger.Infof("  Marked for translation: %d/%d (%.1f%%)",
		stats.SentencesToTranslate, stats.TotalSentences, stats.TranslationPercentage)
}

func outputPath(cmd *cobra.Command, cfg *config.Config, inPath, suffix string) string {
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		return out
	}

	base := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	if err := os.MkdirAll(cfg.App.OutputDir, 0755); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}
	return filepath.Join(cfg.App.OutputDir, fmt.Sprintf("%s.%s.json", base, suffix))
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if level, _ := cmd.Flags().GetString("level"); level != "" {
		cfg.Translation.UserLevel = level
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Translation.Mode = mode
	}
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		cfg.Translation.SourceLang = source
	}
	if target, _ := cmd.Flags().GetString("target"); target != "" {
		cfg.Translation.TargetLang = target
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Translation.Backend = backend
	}
}

func mustLoadConfig(cmd *cobra.Command) *config.Config {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	logger.Debugf("Loading configuration from: %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

func showConfig(cmd *cobra.Command) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	fmt.Printf("📋 Multi-Language Books Configuration\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("Configuration file: %s\n\n", configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("❌ Configuration file does not exist\n")
		fmt.Printf("💡 Run 'multi-language-books config init' to create one\n")
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		return
	}

	fmt.Printf("Gemini Settings:\n")
	if cfg.Gemini.APIKey != "" {
		maskedKey := cfg.Gemini.APIKey[:min(6, len(cfg.Gemini.APIKey))] + "..."
		fmt.Printf("  API Key: %s\n", maskedKey)
	} else {
		fmt.Printf("  API Key: ❌ Not set\n")
	}
	fmt.Printf("  Model: %s\n", cfg.Gemini.Model)
	fmt.Printf("\n")

	fmt.Printf("Local Backend Settings:\n")
	fmt.Printf("  Base URL: %s\n", cfg.Local.BaseURL)
	fmt.Printf("  Model: %s\n", cfg.Local.Model)
	fmt.Printf("\n")

	fmt.Printf("Translation Settings:\n")
	fmt.Printf("  Backend: %s\n", cfg.Translation.Backend)
	fmt.Printf("  Source → Target: %s → %s\n", orAuto(cfg.Translation.SourceLang), cfg.Translation.TargetLang)
	fmt.Printf("  Reader Level: %s (mode: %s)\n", cfg.Translation.UserLevel, cfg.Translation.Mode)
	fmt.Printf("  Context Window: %d sentences\n", cfg.Translation.ContextWindow)
	fmt.Printf("  Char Budget: %d per batch\n", cfg.Translation.CharBudget)
	fmt.Printf("  Max Sentences: %d per batch\n", cfg.Translation.MaxSentencesPerBatch)
	fmt.Printf("  Max Retries: %d\n", cfg.Translation.MaxRetries)
	fmt.Printf("  Retry Delay: %s\n", cfg.Translation.RetryDelay)
	fmt.Printf("  Request Timeout: %s\n", cfg.Translation.RequestTimeout)
	fmt.Printf("\n")

	fmt.Printf("Analysis Settings:\n")
	fmt.Printf("  Frequency Data: %s\n", cfg.Analysis.FrequencyDataDir)
	fmt.Printf("\n")

	fmt.Printf("Application Settings:\n")
	fmt.Printf("  Output Directory: %s\n", cfg.App.OutputDir)
}

func orAuto(s string) string {
	if s == "" {
		return "auto"
	}
	return s
}

func initConfig(cmd *cobra.Command) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	fmt.Printf("🔧 Initializing Multi-Language Books Configuration\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("Configuration file: %s\n\n", configPath)

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("⚠️  Configuration file already exists\n")
		return
	}

	if _, err := config.Load(configPath); err != nil {
		fmt.Printf("❌ Failed to initialize configuration: %v\n", err)
		return
	}

	fmt.Printf("\n✅ Configuration initialized successfully!\n")
	fmt.Printf("💡 Set GEMINI_API_KEY or edit the file, then run 'multi-language-books translate <sentences.json>'\n")
}
