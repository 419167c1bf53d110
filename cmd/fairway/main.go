package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"fairway/internal/analytics"
	"fairway/internal/config"
	"fairway/internal/engine"
	"fairway/internal/logging"
	"fairway/internal/normalize"
	"fairway/internal/perception"
	"fairway/internal/recovery"
	"fairway/internal/session"
)

var (
	// Global flags
	verbose    bool
	configPath string
	offline    bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fairway",
	Short: "fairway - conversational golf caddy router",
	Long: `fairway is the conversational front door of a golf assistant.

It normalizes what you type, classifies it into a closed intent set, and
routes high-confidence intents onto deterministic app destinations. Anything
the classifier is unsure about becomes a question, never a wrong screen.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// The chat TUI owns the terminal; keep zap quiet there unless asked.
		if cmd.CalledAs() == "fairway" && !verbose {
			return nil
		}

		level := zapcore.InfoLevel
		if parsed, perr := zapcore.ParseLevel(cfg.Logging.Level); perr == nil {
			level = parsed
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		if err := logging.Configure(level, cfg.Logging.Development); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// classifyCmd runs one utterance through the pipeline and prints the result.
var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify a single utterance and print the routing decision",
	Long: `Runs one utterance through the full pipeline without the chat UI:
normalize, classify, gate on prerequisites, resolve the destination.
Prints the resulting decision as JSON. Useful for scripting and debugging.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

// normalizeCmd shows the normalization pipeline's work on one input.
var normalizeCmd = &cobra.Command{
	Use:   "normalize [text]",
	Short: "Show how an utterance is normalized before classification",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNormalize,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use the keyword-rule classifier instead of the LLM")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(normalizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildClient picks the classification backend from flags and config.
func buildClient(ctx context.Context) (perception.LLMClient, error) {
	if offline || cfg.LLM.Provider == "offline" || cfg.LLM.APIKey == "" {
		return perception.NewOfflineClient(), nil
	}
	return perception.NewGeminiClient(ctx, perception.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.GetLLMTimeout(),
	})
}

// buildEngine assembles an engine from config.
func buildEngine(ctx context.Context) (*engine.Engine, error) {
	client, err := buildClient(ctx)
	if err != nil {
		return nil, err
	}

	norm := normalize.New()
	if cfg.Lexicon.Path != "" {
		if err := norm.LoadLexicon(cfg.Lexicon.Path); err != nil {
			logging.Get(logging.CategoryNormalize).Warn("lexicon load failed: %v", err)
		}
		if cfg.Lexicon.Watch {
			if watcher, err := normalize.NewLexiconWatcher(norm, cfg.Lexicon.Path); err == nil {
				if err := watcher.Start(); err != nil {
					logging.Get(logging.CategoryNormalize).Warn("lexicon watch failed: %v", err)
				}
			}
		}
	}

	var store *session.ContextStore
	if cfg.Session.DatabasePath != "" {
		repo, err := session.NewSQLiteRepository(cfg.Session.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		store = session.NewContextStore(uuid.NewString(),
			session.WithCapacity(cfg.Session.HistoryCapacity),
			session.WithRepository(repo))
	}

	// Telemetry lands in the debug log; swap the sink to export elsewhere.
	recorder := analytics.NewRecorder("", analytics.SinkFunc(func(e analytics.Event) {
		logging.Get(logging.CategoryAnalytics).Debug("%s intent=%s decision=%s confidence=%.2f",
			e.Kind, e.Intent, e.Decision, e.Confidence)
	}))

	return engine.New(client, engine.Options{
		Store:    store,
		Recorder: recorder,
		Retries: recovery.NewRetryPolicy(
			recovery.WithBackoff(cfg.GetBackoffBase(), cfg.GetBackoffCap()),
			recovery.WithMaxAttempts(cfg.Recovery.MaxAttempts),
			recovery.WithArenaCapacity(cfg.Recovery.ArenaCapacity),
		),
		Classifier: []perception.ClassifierOption{
			perception.WithThresholds(cfg.Classifier.RouteThreshold, cfg.Classifier.ConfirmThreshold),
			perception.WithNormalizer(norm),
		},
	}), nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	input := strings.Join(args, " ")

	result := eng.HandleInput(ctx, input)
	out := map[string]interface{}{
		"decision": result.Classification.Decision,
		"outcome":  result.Routing.Outcome,
		"action":   result.Action.Kind,
	}
	if result.Classification.Intent != nil {
		out["intent"] = result.Classification.Intent.Intent
		out["confidence"] = result.Classification.Intent.Confidence
	}
	if result.Action.Destination != nil {
		out["destination"] = result.Action.Destination
	}
	if result.Classification.Clarification != nil {
		out["clarification"] = result.Classification.Clarification
	}
	if result.Action.Message != "" {
		out["message"] = result.Action.Message
	}
	if result.Action.Response != "" {
		out["response"] = result.Action.Response
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")

	norm := normalize.New()
	if cfg.Lexicon.Path != "" {
		if err := norm.LoadLexicon(cfg.Lexicon.Path); err != nil {
			return fmt.Errorf("lexicon load failed: %w", err)
		}
	}

	result := norm.Normalize(input)
	fmt.Println(result.Text)
	for _, mod := range result.Modifications {
		fmt.Printf("  %s: %q -> %q\n", mod.Kind, mod.Original, mod.Replacement)
	}
	return nil
}
