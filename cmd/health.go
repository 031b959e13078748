/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the problem repository and the analyzer are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		repoErr := problemsClient().Health(ctx)
		analyzerOK := analyzerClient().CheckHealth(ctx)

		fmt.Printf("repository  %-28s %s\n", cfg.Repository.BaseURL, upDown(repoErr == nil))
		fmt.Printf("analyzer    %-28s %s\n", cfg.Analyzer.BaseURL, upDown(analyzerOK))

		if repoErr != nil || !analyzerOK {
			return errors.New("one or more backends are unavailable")
		}
		return nil
	},
}

func upDown(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
