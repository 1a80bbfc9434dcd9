package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/config"
	"github.com/daviddao/notionqueue/internal/db"
	"github.com/daviddao/notionqueue/internal/logging"
	"github.com/daviddao/notionqueue/internal/notion"
	"github.com/daviddao/notionqueue/internal/state"
	msync "github.com/daviddao/notionqueue/internal/sync"
)

// Version is set via ldflags at build time.
var Version = "dev"

// now is replaced in tests.
var now = time.Now

var (
	statePath   string
	jsonOutput  bool
	quietFlag   bool
	verboseFlag bool

	cfg    config.Config
	logger *slog.Logger
	store  *state.Store
	cache  *db.DB
	engine *msync.Engine
)

var rootCmd = &cobra.Command{
	Use:           "nq",
	Short:         "nq - Notion ticket queue for coding agents",
	Long:          "notionqueue: sync a Notion ticket database, surface the next ready ticket, record progress back.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "version", "quickstart", "onboard":
			return nil
		}

		var err error
		cfg, err = config.Load(config.Options{})
		if err != nil {
			return err
		}
		if statePath != "" {
			cfg.StatePath = statePath
		}

		level := logging.ParseLevel(cfg.LogLevel)
		if verboseFlag {
			level = slog.LevelDebug
		}
		logger = logging.Setup(cmd.ErrOrStderr(), level)

		store = state.New(state.Config{Path: cfg.StatePath, Logger: logger})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cache != nil {
			cache.Close()
			cache = nil
		}
		engine = nil
	},
}

// openCache opens the ticket cache once per command.
func openCache() (*db.DB, error) {
	if cache != nil {
		return cache, nil
	}
	var err error
	cache, err = db.Open(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open ticket cache: %w", err)
	}
	return cache, nil
}

// getEngine builds the engine for commands that talk to Notion.
func getEngine(ctx context.Context) (*msync.Engine, error) {
	if engine != nil {
		return engine, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := notion.NewClient(ctx, notion.Config{
		Token:   cfg.Token,
		BaseURL: cfg.BaseURL,
		Version: cfg.Version,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	ec := msync.Config{
		Service: notion.NewService(client, notion.ServiceConfig{
			DatabaseID: cfg.DatabaseID,
			Logger:     logger,
		}),
		State:       store,
		TargetApp:   cfg.TargetApp,
		AgentUserID: cfg.AgentUserID,
		Assignees:   cfg,
		Logger:      logger,
	}
	// The cache is optional; a sync still works without it.
	if c, err := openCache(); err != nil {
		logger.Warn("continuing without ticket cache", "err", err)
	} else {
		ec.Cache = c
	}

	engine = msync.New(ec)
	return engine, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nq version %s\n", Version)
	},
}

const configTemplate = `# notionqueue settings. Environment variables override these.
# database_id: ""
# target_app: ""
# agent_user_id: ""
# assignees:
#   alice: "notion-user-id"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .queue/ in the project root",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root := db.FindProjectRoot(cwd)
		if root == "" {
			root = cwd
		}

		queueDir := filepath.Join(root, ".queue")
		s, err := db.Open(filepath.Join(queueDir, "tickets.db"))
		if err != nil {
			return err
		}
		s.Close()

		configPath := filepath.Join(queueDir, "config.yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := os.WriteFile(configPath, []byte(configTemplate), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", configPath, err)
			}
		}

		ensureGitignore(root)

		if !quietFlag {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized notionqueue at %s\n", queueDir)
		}
		return nil
	},
}

// ensureGitignore adds .queue/ to .gitignore if not already present.
func ensureGitignore(root string) {
	gitignorePath := filepath.Join(root, ".gitignore")
	entry := ".queue/"

	data, err := os.ReadFile(gitignorePath)
	if err == nil {
		scanner := bufio.NewScanner(strings.NewReader(string(data)))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == entry || line == ".queue" {
				return // already present
			}
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return // silently skip if can't write
	}
	defer f.Close()

	if len(data) > 0 && data[len(data)-1] != '\n' {
		f.WriteString("\n")
	}
	fmt.Fprintf(f, "\n# notionqueue snapshot and ticket cache\n%s\n", entry)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "Snapshot path (default: .queue/state.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// errorHint suggests a next step for remote failures the user can act on.
func errorHint(err error) string {
	switch {
	case notion.IsRateLimited(err):
		return "Notion is throttling requests, wait a minute and retry"
	case notion.IsNotFound(err):
		return "check the ticket id and that the integration is shared with the database"
	}
	return ""
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}
