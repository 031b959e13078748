/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/codecoach/client/config"
	"github.com/codecoach/client/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfg config.Config
	log zerolog.Logger

	repositoryURL string
	analyzerURL   string
	logLevel      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codecoach",
	Short: "Practice client for the codecoach problem platform",
	Long: `codecoach browses the problem catalog, submits solutions to the
evaluation engine and asks the complexity analyzer about your code.

Backends are configured through the environment (REPOSITORY_URL,
ANALYZER_URL, ...) or the flags below.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.LoadConfig()
		if repositoryURL != "" {
			if cfg.Evaluation.BaseURL == cfg.Repository.BaseURL {
				cfg.Evaluation.BaseURL = repositoryURL
			}
			cfg.Repository.BaseURL = repositoryURL
		}
		if analyzerURL != "" {
			cfg.Analyzer.BaseURL = analyzerURL
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		log = logger.New(cfg.Logging)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repositoryURL, "repository-url", "", "problem repository base URL (overrides REPOSITORY_URL)")
	rootCmd.PersistentFlags().StringVar(&analyzerURL, "analyzer-url", "", "complexity analyzer base URL (overrides ANALYZER_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}
