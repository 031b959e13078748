/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/codecoach/client/internal/journal"
	"github.com/codecoach/client/internal/render"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Read archived evaluation and analysis reports",
}

var reportGetCmd = &cobra.Command{
	Use:   "get <object-key>",
	Short: "Print the full archived report stored under key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd.Context(), func(ctx context.Context, sinks journal.Sinks) error {
			if sinks.Archive == nil {
				return fmt.Errorf("report: %w", journal.ErrSinkDisabled)
			}
			data, err := sinks.Archive.Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, data, "", "  "); err != nil {
				_, err = os.Stdout.Write(data)
				return err
			}
			fmt.Println(out.String())
			return nil
		})
	},
}

var reportProblem string

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd.Context(), func(ctx context.Context, sinks journal.Sinks) error {
			if sinks.Archive == nil {
				return fmt.Errorf("report: %w", journal.ErrSinkDisabled)
			}
			objects, err := sinks.Archive.Reports(ctx, reportProblem)
			if err != nil {
				return err
			}
			fmt.Println(render.Reports(objects))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportGetCmd, reportListCmd)

	reportListCmd.Flags().StringVarP(&reportProblem, "problem", "p", "", "only reports for this problem")
}
