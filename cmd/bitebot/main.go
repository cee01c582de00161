package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"bitebot/cmd/bitebot/chat"
	"bitebot/internal/api"
	"bitebot/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

var (
	// Global flags
	verbose   bool
	serverURL string
	timeout   time.Duration

	// Reset flags
	resetYes bool

	// Logger for non-interactive subcommands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bitebot",
	Short: "BiteBot - restaurant reservation chat client",
	Long: `BiteBot is a terminal chat client for the BiteBot reservation
assistant. It keeps a running conversation, tracks confirmed reservations
in a side panel, and talks to the BiteBot server over HTTP.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env can carry BITEBOT_SERVER_URL and friends
		_ = godotenv.Load()

		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "bitebot" && cmd.CalledAs() == "bitebot" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat()
	},
}

// statusCmd probes the server without opening the chat UI
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the BiteBot server is reachable",
	RunE:  showStatus,
}

// resetCmd clears the server-side conversation from the shell
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the server-side conversation state",
	Long: `Asks the BiteBot server to drop the current conversation.

Prompts for confirmation unless --yes is given. Any resolved response
counts as success; only an unreachable server is an error, and in that
case nothing is cleared.`,
	RunE: runReset,
}

// configCmd groups configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the client configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		path, _ := config.ConfigPath()
		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Server URL:  %s\n", cfg.Server.BaseURL)
		fmt.Printf("Timeout:     %s\n", cfg.GetServerTimeout())
		fmt.Printf("Theme:       %s\n", cfg.UI.Theme)
		fmt.Printf("Log level:   %s\n", cfg.Logging.Level)
		fmt.Printf("Debug logs:  %v\n", cfg.Logging.Debug)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		cfg := config.DefaultConfig()
		if serverURL != "" {
			cfg.Server.BaseURL = serverURL
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bitebot %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Server base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout for subcommands")

	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	// Add commands to root
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInteractiveChat() error {
	// The interactive path reads config itself; route the flag through
	// the documented environment override so both paths agree.
	if serverURL != "" {
		os.Setenv("BITEBOT_SERVER_URL", serverURL)
	}

	p := tea.NewProgram(
		chat.InitChat(),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}

// showStatus probes /health and the reservation list concurrently.
func showStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	client := newClient(cfg)

	fmt.Println("BiteBot Client Status")
	fmt.Println("=====================")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Server:  %s\n", cfg.Server.BaseURL)
	fmt.Println()

	logger.Debug("probing server", zap.String("server", cfg.Server.BaseURL))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var (
		health *api.HealthStatus
		count  int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		h, err := client.Health(egCtx)
		if err != nil {
			return fmt.Errorf("health probe: %w", err)
		}
		health = h
		return nil
	})
	eg.Go(func() error {
		list, err := client.FetchReservations(egCtx)
		if err != nil {
			return fmt.Errorf("reservations fetch: %w", err)
		}
		count = len(list)
		return nil
	})

	if err := eg.Wait(); err != nil {
		fmt.Printf("✗ Server unreachable: %v\n", err)
		return err
	}

	if health.AgentInitialized {
		fmt.Println("✓ Server ready, agent initialized")
	} else {
		fmt.Println("! Server up, agent not initialized")
	}
	fmt.Printf("✓ Reservations on file: %d\n", count)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Print("Clear the current conversation? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := loadConfig()
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Debug("sending reset", zap.String("server", cfg.Server.BaseURL))
	if err := client.Reset(ctx); err != nil {
		return fmt.Errorf("reset failed, conversation kept: %w", err)
	}
	fmt.Println("Conversation cleared.")
	return nil
}

// loadConfig resolves the effective config for subcommands. The --server
// flag beats both the file and the environment.
func loadConfig() *config.Config {
	path, _ := config.ConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	return cfg
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClientWithConfig(api.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.GetServerTimeout(),
	})
}
