/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/codecoach/client/internal/render"
	"github.com/spf13/cobra"
)

var (
	submitLanguage    string
	submitTimeLimit   int
	submitFailingOnly bool
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <problem-id> <source-file|->",
	Short: "Evaluate a solution against a problem's test cases",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ctrl, closeFn, err := session(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if _, err := ctrl.Select(ctx, args[0]); err != nil {
			printStatus(ctrl)
			return err
		}
		resp, err := ctrl.Submit(ctx, language(), source, timeLimit())
		printStatus(ctrl)
		if err != nil {
			return err
		}
		fmt.Println(render.Evaluation(resp, *ctrl.Snapshot().Summary, submitFailingOnly))
		return nil
	},
}

func language() string {
	if submitLanguage != "" {
		return submitLanguage
	}
	return cfg.Submission.Language
}

func timeLimit() int {
	if submitTimeLimit > 0 {
		return submitTimeLimit
	}
	return cfg.Submission.TimeLimitMs
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVarP(&submitLanguage, "language", "l", "", "language identifier (default DEFAULT_LANGUAGE)")
	submitCmd.Flags().IntVar(&submitTimeLimit, "time-limit", 0, "per-test time limit in ms (default DEFAULT_TIME_LIMIT_MS)")
	submitCmd.Flags().BoolVar(&submitFailingOnly, "failing-only", false, "list only the tests that did not pass")
}
