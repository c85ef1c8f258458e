package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vecspace/config"
	"vecspace/internal/logger"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	logJSON  bool
	log      logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vecspace",
	Short: "Build and query vector indexes over JSON record corpora",
	Long: `vecspace turns a JSON corpus of structured records (movies, books) into
embeddable text, embeds it in batches, merges the batches into one vector index,
persists it and answers nearest-neighbour queries against it.

Example usage:
  vecspace run data/movies.json              # Build, save, reload and smoke-query
  vecspace index data/movies.json --kind movie
  vecspace query -q "The Hobbit" -k 2`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			cfg.Logging.JSON = logJSON
		}
		log = logger.NewLogger(&logger.Config{
			Level:      cfg.Logging.Level,
			Output:     os.Stderr,
			JSON:       cfg.Logging.JSON,
			TimeFormat: "15:04:05",
		})
		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./vecspace.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "working directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetRootDir returns the working directory.
func GetRootDir() string {
	return rootDir
}
