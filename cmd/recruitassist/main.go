package main

import (
	"os"

	"github.com/boddenberg/recruit-assist-go/internal/config"

	"github.com/spf13/cobra"
)

var (
	flagPort        int
	flagDatabaseURL string
	flagDriver      string
)

var rootCmd = &cobra.Command{
	Use:   "recruitassist",
	Short: "Recruitment assistant API",
	Long: `recruitassist serves the recruitment assistant API: four advisory agents,
user profiles and progress, and AI-derived insights.

Commands:
  serve    - Start the HTTP server (default)
  migrate  - Create or update the database schema
  dbcheck  - Connect to the database and print row counts`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "Database DSN (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Database driver: postgres or sqlite (overrides DATABASE_DRIVER)")

	rootCmd.AddCommand(serveCmd, migrateCmd, dbcheckCmd)
}

// loadConfig reads .env and the environment, then applies CLI flags.
func loadConfig() *config.Config {
	_, _ = config.LoadDotEnv(".env")

	cfg := config.Load()
	if flagPort > 0 {
		cfg.Port = flagPort
	}
	if flagDatabaseURL != "" {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if flagDriver != "" {
		cfg.DatabaseDriver = flagDriver
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
