package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/aschepis/backscratcher/companion/chain"
	"github.com/aschepis/backscratcher/companion/config"
	"github.com/aschepis/backscratcher/companion/conversations"
	"github.com/aschepis/backscratcher/companion/infer"
	"github.com/aschepis/backscratcher/companion/llm"
	companionlogger "github.com/aschepis/backscratcher/companion/logger"
	"github.com/aschepis/backscratcher/companion/migrations"
	"github.com/aschepis/backscratcher/companion/prompts"
	"github.com/aschepis/backscratcher/companion/reply"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logFile    = flag.String("logfile", "", "Path to log file. If not set, logs to stderr")
		pretty     = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
		configPath = flag.String("config", config.GetConfigPath(), "Path to the config file")
		dbPath     = flag.String("db", "", "Path to the SQLite message log (default: database.path from config)")
		threadID   = flag.String("thread", "", "Thread whose message log is replayed before the prompt")
		history    = flag.Int("history", -1, "Number of thread messages to replay (default: database.history_limit from config)")
		prompt     = flag.String("prompt", "", "Message to send to the companion")
		reasoning  = flag.Bool("reasoning", false, "Ask the model to reason before answering and print the reasoning")
		title      = flag.Bool("title", false, "Generate a title for -thread instead of replying")
	)
	flag.Parse()

	// Validate that --logfile and --pretty are mutually exclusive
	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}
	if *title && *threadID == "" {
		return fmt.Errorf("--title requires --thread")
	}
	if !*title && strings.TrimSpace(*prompt) == "" {
		return fmt.Errorf("--prompt is required")
	}

	logger, closeLog, err := companionlogger.InitWithOptions(companionlogger.Options{LogFile: *logFile, Pretty: *pretty})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closeLog() //nolint:errcheck // No remedy for log close errors

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *history >= 0 {
		cfg.Database.HistoryLimit = *history
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	root := chain.FromMessage(chain.NewClient(), prompts.System(cfg.Persona, prompts.ChatAgent(cfg.Persona)))
	ch := root.Fork()

	if *threadID != "" {
		if err := replayThread(ctx, cfg, *threadID, &ch, logger); err != nil {
			return err
		}
	}

	if *title {
		ch.PushMessage(llm.RoleUser, prompts.ThreadTitle())
		result, err := infer.Drop[string](ctx, engine, ch, false, reply.Text)
		if err != nil {
			return describe(err, cfg)
		}
		fmt.Println(strings.TrimSpace(result.Value))
		return nil
	}

	ch.PushMessage(llm.RoleUser, *prompt)
	result, err := infer.Push[string](ctx, engine, &ch, *reasoning, reply.Text)
	if err != nil {
		return describe(err, cfg)
	}
	logger.Debug().Str("chain_id", ch.ID().String()).Int("messages", ch.MessageCount()).Msg("Conversation updated")

	if result.Reasoning != "" {
		fmt.Println(reply.Think("\n" + result.Reasoning + "\n"))
		fmt.Println()
	}
	fmt.Println(strings.TrimSpace(result.Value))
	return nil
}

func newEngine(cfg *config.Config, logger zerolog.Logger) (*infer.Engine, error) {
	client, err := config.NewWireClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	sender := llm.NewLoggingMiddleware(logger).Wrap(client)

	engine, err := infer.New(sender, config.LoadInferSettings(cfg), cfg.Persona, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference engine: %w", err)
	}

	settings := engine.Settings()
	logger.Info().
		Str("endpoint", client.Endpoint()).
		Str("model", settings.Model).
		Str("reasoning", string(settings.Reasoning)).
		Bool("use_system_prompt", settings.UseSystemPrompt).
		Msg("Inference configured")
	return engine, nil
}

// replayThread appends the recent message log of threadID to ch.
func replayThread(ctx context.Context, cfg *config.Config, threadID string, ch *chain.Chain, logger zerolog.Logger) error {
	path := config.ExpandPath(cfg.Database.Path)
	logger.Debug().Str("path", path).Str("thread", threadID).Msg("Opening message log")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // No remedy for db close errors

	if err := migrations.RunMigrations(db, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := conversations.NewStore(db)
	exists, err := store.ThreadExists(ctx, threadID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("thread %q not found", threadID)
	}

	items, err := store.RecentMessages(ctx, threadID, cfg.Database.HistoryLimit)
	if err != nil {
		return err
	}
	conversations.AppendLog(ch, items, time.Now())
	logger.Info().Str("thread", threadID).Int("messages", len(items)).Msg("Replayed thread history")
	return nil
}

// describe adds a hint for errors the user can act on.
func describe(err error, cfg *config.Config) error {
	switch infer.Classify(err) {
	case infer.KindContextLength:
		return fmt.Errorf("%w\nhint: the conversation does not fit the model's context window; replay fewer messages with --history (currently %d)",
			err, cfg.Database.HistoryLimit)
	case infer.KindParse:
		return fmt.Errorf("the model's reply could not be parsed: %w", err)
	case infer.KindAPI:
		return fmt.Errorf("inference failed: %w", err)
	default:
		return err
	}
}
