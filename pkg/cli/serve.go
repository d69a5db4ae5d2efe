package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldlinehq/linemock/pkg/cli/internal/output"
	"github.com/fieldlinehq/linemock/pkg/config"
	"github.com/fieldlinehq/linemock/pkg/logging"
	"github.com/fieldlinehq/linemock/pkg/server"
	"github.com/spf13/cobra"
)

var (
	serveHost       string
	servePort       int
	serveConfigFile string
	serveLogLevel   string
	serveLogFormat  string
	serveTokenTTL   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the emulator in the foreground",
	Long: `Run the emulator in the foreground.

Configuration is resolved in order: flags override environment variables
(LINEMOCK_HOST, LINEMOCK_PORT, ...), which override the config file named by
--config or LINEMOCK_CONFIG, which overrides built-in defaults.`,
	Example: `  # Start with defaults (port 5000, test_user/test_password)
  linemock serve

  # Custom port and verbose logging
  linemock serve -p 8080 --log-level debug

  # Load fixtures and identities from a file
  linemock serve -f linemock.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveServeConfig(cmd)
		if err != nil {
			return err
		}

		log := logging.FromStrings(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		srv := server.New(cfg, server.WithLogger(log))
		if err := srv.Start(); err != nil {
			return err
		}

		printServeBanner(cfg, srv.Addr())

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down...")

		if err := srv.Stop(); err != nil {
			output.Warn("shutdown: %v", err)
		}
		fmt.Println("Emulator stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultHost, "Bind address")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", config.DefaultPort, "Listen port")
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "f", "", "Config file path (YAML or JSON)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "text", "Log format (text, json)")
	serveCmd.Flags().IntVar(&serveTokenTTL, "token-ttl", config.DefaultTokenTTL, "Session lifetime in seconds")
	rootCmd.AddCommand(serveCmd)
}

// resolveServeConfig applies the flags > env > file > defaults order.
func resolveServeConfig(cmd *cobra.Command) (*config.Config, error) {
	path := serveConfigFile
	if path == "" {
		path = config.PathFromEnv()
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	config.ApplyEnv(cfg)

	if cmd.Flags().Changed("host") {
		cfg.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = serveLogFormat
	}
	if cmd.Flags().Changed("token-ttl") {
		cfg.Auth.TokenTTL = serveTokenTTL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printServeBanner(cfg *config.Config, addr string) {
	// The bind address is usually 0.0.0.0; print something clickable.
	display := addr
	if host, port, err := net.SplitHostPort(addr); err == nil && (host == "0.0.0.0" || host == "::" || host == "") {
		display = "localhost:" + port
	}

	fmt.Println("linemock: Fieldline mission API emulator")
	fmt.Printf("  Base URL:    http://%s\n", display)
	fmt.Printf("  Token TTL:   %ds\n", cfg.Auth.TokenTTL)
	fmt.Printf("  Stores:      %d fixture entries\n", len(cfg.Stores))
	fmt.Println("  Credentials:")
	for _, ident := range cfg.Auth.Identities {
		fmt.Printf("    %s / %s (org %s)\n", ident.Username, ident.Password, ident.OrgID)
	}
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  POST   /public/api/auth/login")
	fmt.Println("  GET    /public/api/missions")
	fmt.Println("  POST   /public/api/missions")
	fmt.Println("  POST   /public/api/missions/{id}/validate")
	fmt.Println("  GET    /public/api/stores")
	fmt.Println("  GET    /public/api/tenants")
	fmt.Println("  GET    /health")
	fmt.Println("  POST   /debug/reset")
	fmt.Println("  GET    /debug/missions, /debug/state, /debug/requests, /debug/metrics")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
}
